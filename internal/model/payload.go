// Package model defines the shared data types of the assistant core.
package model

// Emotion is the avatar emotion attached to every assistant reply.
type Emotion string

// Emotions the model is allowed to return. Anything else is coerced to
// DefaultEmotion before the payload leaves the core.
const (
	EmotionFeliz  Emotion = "feliz"
	EmotionNeutro Emotion = "neutro"
	EmotionTriste Emotion = "triste"
	EmotionDuvida Emotion = "duvida"
)

// DefaultEmotion is used when the model omits or invents an emotion.
const DefaultEmotion = EmotionFeliz

// Valid reports whether e is one of the allowed emotions.
func (e Emotion) Valid() bool {
	switch e {
	case EmotionFeliz, EmotionNeutro, EmotionTriste, EmotionDuvida:
		return true
	}
	return false
}

// ResponsePayload is the only contract the language model may return and
// the only shape handed to downstream consumers.
type ResponsePayload struct {
	Emotion Emotion `json:"emotion"`
	Content string  `json:"content"`
}

// Normalize coerces an out-of-range emotion to the default and returns the
// payload for chaining.
func (p ResponsePayload) Normalize() ResponsePayload {
	if !p.Emotion.Valid() {
		p.Emotion = DefaultEmotion
	}
	return p
}
