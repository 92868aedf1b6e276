package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/conecta-senac/aprendiz/internal/model"
	"github.com/conecta-senac/aprendiz/internal/scope"
)

// Context-injection budgets: provider snippets are short, extracted
// article text gets a larger slice.
const (
	snippetContextLimit = 600
	articleContextLimit = 1500
)

// newsTokens route a query through the article reader instead of the
// plain search chain: these questions benefit from full page text.
var newsTokens = []string{
	"notícia", "noticia", "notícias", "noticias", "novidade", "novidades",
	"evento", "eventos", "matéria", "materia",
}

// Completer produces a payload from an assembled message list.
type Completer interface {
	Complete(ctx context.Context, messages []model.Message, temperature float64) model.ResponsePayload
}

// Searcher is the web-search surface the orchestrator consumes.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) []model.SearchHit
	ResolveUnitAddresses(ctx context.Context, city string) []model.SearchHit
}

// ArticleReader upgrades search hits with extracted page text.
type ArticleReader interface {
	SearchAndRead(ctx context.Context, query string, maxResults int) []model.SearchHit
}

// LeadStore persists captured contacts. A duplicate email reports
// alreadyExists, not an error.
type LeadStore interface {
	SaveLead(ctx context.Context, lead model.Lead) (alreadyExists bool, err error)
}

// ResponderConfig carries the orchestrator's tuning knobs.
type ResponderConfig struct {
	SearchEnabled bool
	MaxResults    int
	Temperature   float64
	HistoryPairs  int
}

// Responder is the per-turn state machine: it consumes the session's
// sticky flags, runs intent and scope checks, conditionally retrieves web
// context and composes the reply through the language model. It never
// returns an error; every failure path yields a degraded payload.
type Responder struct {
	llm      Completer
	search   Searcher
	articles ArticleReader
	leads    LeadStore
	cfg      ResponderConfig
}

// NewResponder wires the orchestrator. search, articles and leads may be
// nil; the corresponding branches then degrade to empty context or a
// neutral payload.
func NewResponder(llm Completer, search Searcher, articles ArticleReader, leads LeadStore, cfg ResponderConfig) *Responder {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 6
	}
	if cfg.HistoryPairs <= 0 {
		cfg.HistoryPairs = 6
	}
	return &Responder{
		llm:      llm,
		search:   search,
		articles: articles,
		leads:    leads,
		cfg:      cfg,
	}
}

// Respond processes one user turn against the session and returns the
// payload plus whatever sources were gathered. Turns on the same session
// are serialized; the rolling history records both sides of the exchange.
func (r *Responder) Respond(ctx context.Context, s *Session, utterance string) (model.ResponsePayload, []model.SearchHit) {
	s.mu.Lock()
	defer s.mu.Unlock()

	text := strings.TrimSpace(utterance)
	payload, hits := r.respond(ctx, s, text)
	payload = payload.Normalize()
	s.remember(text, payload.Content)
	return payload, hits
}

func (r *Responder) respond(ctx context.Context, s *Session, text string) (model.ResponsePayload, []model.SearchHit) {
	msgs := s.context(r.cfg.HistoryPairs)

	// Contact capture: the flag is consumed before parsing, so a reply
	// without an email gets a single clarification and does not re-arm.
	if s.State.AwaitingContact {
		s.State.AwaitingContact = false
		return r.captureLead(ctx, text), nil
	}

	// Enrollment trigger starts contact capture; no search or model call.
	if scope.WantsEnrollment(text) {
		s.State.AwaitingContact = true
		return model.ResponsePayload{
			Emotion: model.EmotionFeliz,
			Content: "Excelente! Posso te ajudar com o processo. Para agilizar seu atendimento com um consultor do Senac, você me autoriza a registrar seu nome e e-mail no nosso banco de dados?",
		}, nil
	}

	// Address request: without an inline city, ask for one and stop. With
	// one, resolve unit addresses immediately and compose.
	if scope.WantsAddress(text) {
		city := scope.ExtractCity(text)
		if city == "" {
			s.State.AwaitingLocation = true
			return model.ResponsePayload{
				Emotion: model.EmotionFeliz,
				Content: "Para localizar certinho, me diz a **cidade** (e o estado, se for fora do RS). 😉",
			}, nil
		}
		return r.composeForCity(ctx, s, msgs, city)
	}

	// A bare reply while awaiting a city is the city. Domain vocabulary
	// means a topic change instead; the flag stays armed and the turn
	// falls through to the scope and search branches.
	if s.State.AwaitingLocation && !scope.LooksLikeNewTopic(text) {
		s.State.AwaitingLocation = false
		return r.composeForCity(ctx, s, msgs, scope.TitleCase(text))
	}

	switch scope.Classify(text) {
	case scope.ScopeOff:
		msgs = prependSystem(msgs, fmt.Sprintf(
			"A pergunta do usuário '%s' está fora do escopo Senac. Você DEVE usar a sua resposta para gentilmente redirecionar ou conectar o assunto ao contexto de cursos/serviços do Senac. **Exemplo:** 'Vi que você perguntou sobre [Assunto]. O Senac oferece [Curso Relacionado] que pode te ajudar. Fale mais sobre isso!'",
			text,
		))
	case scope.ScopeAmbiguous:
		msgs = prependSystem(msgs,
			"A pergunta é geral (carreira, tecnologia, etc.); conecte naturalmente ao contexto do Senac/Conecta Senac/Aprendiz, dando ênfase a cursos relevantes.",
		)
	}

	var hits []model.SearchHit
	limit := snippetContextLimit
	if r.searchAllowed(s) && scope.ShouldSearchWeb(text) {
		if r.articles != nil && looksLikeNewsQuery(text) {
			hits = r.articles.SearchAndRead(ctx, text, r.cfg.MaxResults)
			limit = articleContextLimit
		} else if r.search != nil {
			hits = r.search.Search(ctx, text, r.cfg.MaxResults)
		}
	}

	msgs = injectContext(msgs, hits, limit)
	msgs = append(msgs, model.Message{Role: model.RoleUser, Content: text})
	return r.complete(ctx, msgs), hits
}

// captureLead parses a contact reply and persists the lead. Store
// failures degrade to a neutral payload.
func (r *Responder) captureLead(ctx context.Context, text string) model.ResponsePayload {
	reply, ok := scope.ParseContactReply(text)
	if !ok {
		return model.ResponsePayload{
			Emotion: model.EmotionDuvida,
			Content: "Não consegui identificar seu e-mail. Por favor, digite seu **NOME** e **E-MAIL** para contato, ou diga 'Não' se não quiser prosseguir.",
		}
	}

	if r.leads == nil {
		zap.L().Warn("chat: lead captured without a store", zap.String("email", reply.Email))
		return model.ResponsePayload{
			Emotion: model.EmotionNeutro,
			Content: "⚠️ Não consegui registrar seu contato agora. Pode tentar novamente em instantes?",
		}
	}

	lead := model.Lead{
		ID:          uuid.NewString(),
		Name:        reply.Name,
		Email:       reply.Email,
		RawMessage:  text,
		CaptureTime: time.Now(),
	}

	already, err := r.leads.SaveLead(ctx, lead)
	if err != nil {
		zap.L().Warn("chat: lead save failed", zap.String("email", reply.Email), zap.Error(err))
		return model.ResponsePayload{
			Emotion: model.EmotionNeutro,
			Content: "⚠️ Não consegui registrar seu contato agora. Pode tentar novamente em instantes?",
		}
	}
	if already {
		return model.ResponsePayload{
			Emotion: model.EmotionNeutro,
			Content: fmt.Sprintf("O e-mail **%s** já está registrado. A equipe Senac entrará em contato. Qual curso te interessa agora?", reply.Email),
		}
	}
	return model.ResponsePayload{
		Emotion: model.EmotionFeliz,
		Content: fmt.Sprintf("Perfeito, **%s**! O e-mail **%s** foi salvo e a equipe Senac entrará em contato em breve. Enquanto isso, mais alguma dúvida sobre nossos cursos?", reply.Name, reply.Email),
	}
}

// composeForCity resolves unit addresses for the city and lets the model
// answer with the gathered sources.
func (r *Responder) composeForCity(ctx context.Context, s *Session, msgs []model.Message, city string) (model.ResponsePayload, []model.SearchHit) {
	var hits []model.SearchHit
	if r.searchAllowed(s) && r.search != nil {
		hits = r.search.ResolveUnitAddresses(ctx, city)
	}
	msgs = injectContext(msgs, hits, snippetContextLimit)
	msgs = append(msgs, model.Message{
		Role:    model.RoleUser,
		Content: fmt.Sprintf("O usuário informou a cidade: %s. Oriente sem inventar e cite links confiáveis se possível.", city),
	})
	return r.complete(ctx, msgs), hits
}

func (r *Responder) complete(ctx context.Context, msgs []model.Message) model.ResponsePayload {
	if r.llm == nil {
		return model.ResponsePayload{
			Emotion: model.EmotionNeutro,
			Content: "⚠️ Para respostas completas, configure a chave da API do modelo de linguagem.",
		}
	}
	return r.llm.Complete(ctx, msgs, r.cfg.Temperature)
}

func (r *Responder) searchAllowed(s *Session) bool {
	return r.cfg.SearchEnabled && s.WebSearch
}

// injectContext prepends a numbered source block as a system message so
// it precedes the rolling history. Content is truncated before injection
// regardless of how long extraction made it.
func injectContext(msgs []model.Message, hits []model.SearchHit, limit int) []model.Message {
	if len(hits) == 0 {
		return msgs
	}
	lines := make([]string, len(hits))
	for i, h := range hits {
		lines[i] = fmt.Sprintf("[%d] %s — %s\n%s", i+1, h.Title, h.URL, truncate(h.Content, limit))
	}
	return prependSystem(msgs, "Contexto de pesquisa:\n"+strings.Join(lines, "\n"))
}

func prependSystem(msgs []model.Message, content string) []model.Message {
	return append([]model.Message{{Role: model.RoleSystem, Content: content}}, msgs...)
}

func looksLikeNewsQuery(text string) bool {
	t := strings.ToLower(text)
	for _, tok := range newsTokens {
		if strings.Contains(t, tok) {
			return true
		}
	}
	return false
}

// truncate cuts at a rune boundary; byte slicing would split accented
// characters mid-sequence.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
