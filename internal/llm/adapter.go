// Package llm formats conversation context for the language model and
// parses its output into the fixed payload schema.
package llm

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/conecta-senac/aprendiz/internal/model"
	"github.com/conecta-senac/aprendiz/pkg/anthropic"
)

// systemPrompt is the persona/constraints/output-schema contract. The
// model must answer in PT-BR, keep absolute focus on Senac, redirect
// off-topic subjects back to it, and return strict JSON.
const systemPrompt = "Você é o Aprendiz, assistente do projeto Conecta Senac. Converse de forma natural, gentil e útil (PT-BR). " +
	"Seu foco ABSOLUTO é no Senac (especialmente Senac RS), seus cursos/serviços, inscrições, EAD/presencial, unidades/endereços/horários, eventos e no próprio Aprendiz/Conecta Senac (small talk permitido). " +
	"NÃO responda perguntas que não tenham ligação com o Senac. Se a pergunta for alheia, você DEVE redirecionar ou conectar o assunto ao Senac na sua resposta. " +
	"Se o usuário demonstrar interesse em se inscrever, a próxima resposta DEVE perguntar se você pode registrar o NOME e E-MAIL dele para que o Senac entre em contato. " +
	"Evite pesquisas desnecessárias. Só use dados da web quando receber do sistema um contexto com links/trechos. " +
	"Para endereços/unidades, NUNCA adivinhe: peça a cidade se faltar; se houver fontes, cite links. " +
	"Formate ESTRITAMENTE como JSON válido (sem texto fora do JSON): " +
	`{"emotion":"feliz|neutro|triste|duvida","content":"<markdown conciso>"}`

// notConfiguredPayload is returned when no API key is available.
var notConfiguredPayload = model.ResponsePayload{
	Emotion: model.EmotionNeutro,
	Content: "⚠️ Para respostas completas, configure a chave da API do modelo de linguagem.",
}

// Adapter calls the language model and guarantees a well-formed payload
// under all failure conditions.
type Adapter struct {
	client    anthropic.Client
	modelID   string
	maxTokens int64
}

// New creates an Adapter. A nil client marks the model as unavailable:
// Complete then returns a fixed configuration payload instead of calling
// out.
func New(client anthropic.Client, modelID string, maxTokens int) *Adapter {
	return &Adapter{
		client:    client,
		modelID:   modelID,
		maxTokens: int64(maxTokens),
	}
}

// Complete sends the persona prompt plus the assembled context to the
// model and parses the reply. It never returns an error: transport
// failures surface as an apologetic payload with a sad emotion.
func (a *Adapter) Complete(ctx context.Context, messages []model.Message, temperature float64) model.ResponsePayload {
	if a.client == nil {
		return notConfiguredPayload
	}

	req := anthropic.MessageRequest{
		Model:       a.modelID,
		MaxTokens:   a.maxTokens,
		System:      a.buildSystem(messages),
		Messages:    toProviderMessages(messages),
		Temperature: &temperature,
	}

	resp, err := a.client.CreateMessage(ctx, req)
	if err != nil {
		zap.L().Warn("llm: completion failed", zap.Error(err))
		return model.ResponsePayload{
			Emotion: model.EmotionTriste,
			Content: "⚠️ Desculpe, ocorreu um problema técnico ao gerar a resposta. Pode tentar de novo?",
		}
	}

	return ParsePayload(resp.Text())
}

// buildSystem appends per-turn system messages (scope hints, search
// context) to the fixed persona prompt. The provider takes a single
// system string, so synthesized system messages are folded in here.
func (a *Adapter) buildSystem(messages []model.Message) string {
	parts := []string{systemPrompt}
	for _, m := range messages {
		if m.Role == model.RoleSystem {
			parts = append(parts, m.Content)
		}
	}
	return strings.Join(parts, "\n\n")
}

func toProviderMessages(messages []model.Message) []anthropic.Message {
	out := make([]anthropic.Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == model.RoleSystem {
			continue
		}
		out = append(out, anthropic.Message{Role: m.Role, Content: m.Content})
	}
	return out
}
