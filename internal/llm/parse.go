package llm

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/conecta-senac/aprendiz/internal/model"
)

// fencedJSON matches a ```json fenced block anywhere in the raw output.
var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// parseStrategy attempts to turn raw model output into a payload.
// Strategies run in order; the first success wins.
type parseStrategy func(raw string) (model.ResponsePayload, bool)

var parseStrategies = []parseStrategy{
	parseFencedBlock,
	parseBraceSpan,
	parseRawText,
}

// ParsePayload extracts a ResponsePayload from free-form model output.
// The model is asked for strict JSON but may wrap it in prose or code
// fences; parsing therefore never fails — the last strategy always
// produces a payload from the raw text.
func ParsePayload(raw string) model.ResponsePayload {
	raw = strings.TrimSpace(raw)
	for _, strategy := range parseStrategies {
		if p, ok := strategy(raw); ok {
			return p.Normalize()
		}
	}
	// Unreachable: parseRawText always succeeds.
	return model.ResponsePayload{Emotion: model.DefaultEmotion, Content: raw}
}

// parseFencedBlock parses the contents of a ```json fenced block.
func parseFencedBlock(raw string) (model.ResponsePayload, bool) {
	m := fencedJSON.FindStringSubmatch(raw)
	if m == nil {
		return model.ResponsePayload{}, false
	}
	return decodePayload(m[1], raw)
}

// parseBraceSpan parses the substring between the first '{' and the last
// '}' of the raw text.
func parseBraceSpan(raw string) (model.ResponsePayload, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return model.ResponsePayload{}, false
	}
	return decodePayload(raw[start:end+1], raw)
}

// parseRawText treats the whole output as the content field. Always
// succeeds.
func parseRawText(raw string) (model.ResponsePayload, bool) {
	return model.ResponsePayload{Emotion: model.DefaultEmotion, Content: raw}, true
}

// decodePayload unmarshals a candidate JSON object. An object carrying
// neither content nor emotion is rejected so the raw-text fallback can
// take over.
func decodePayload(candidate, raw string) (model.ResponsePayload, bool) {
	var m map[string]any
	if err := json.Unmarshal([]byte(candidate), &m); err != nil {
		return model.ResponsePayload{}, false
	}

	content, hasContent := m["content"].(string)
	emotion, hasEmotion := m["emotion"].(string)
	if !hasContent && !hasEmotion {
		return model.ResponsePayload{}, false
	}

	if content == "" {
		content = raw
	}
	return model.ResponsePayload{
		Emotion: model.Emotion(emotion),
		Content: content,
	}, true
}
