// Package chat holds per-session conversation state and the response
// orchestrator that turns a user utterance into a payload plus sources.
package chat

import (
	"sync"

	"github.com/google/uuid"

	"github.com/conecta-senac/aprendiz/internal/model"
)

// Greeting opens every fresh conversation.
const Greeting = "Olá! Eu sou o **Aprendiz**, do **Conecta Senac**. Posso conversar sobre cursos, inscrições, EAD, unidades e também sobre como eu funciono. Como posso te ajudar?"

// ClearedGreeting replaces the history after an explicit reset.
const ClearedGreeting = "Conversa limpa! Quer falar sobre cursos, inscrição, EAD, unidades ou conhecer melhor o Aprendiz? 🙂"

// Suggestions are the canned on-topic prompts offered to the UI layer.
var Suggestions = []string{
	"Quero saber mais sobre os cursos do Senac",
	"Como funciona a inscrição?",
	"Quais opções EAD existem?",
	"Onde tem uma unidade perto de mim?",
	"Me conte mais sobre você (Aprendiz)",
}

// ConversationState is the pair of sticky flags that alter how the next
// turn is interpreted. The orchestrator never sets both at once, and each
// flag is consumed by the turn that acts on it.
type ConversationState struct {
	AwaitingLocation bool
	AwaitingContact  bool
}

// Session is one conversation: sticky state plus the rolling history fed
// back to the model. Turns on a session are serialized by the Responder.
type Session struct {
	ID        string
	State     ConversationState
	WebSearch bool

	mu      sync.Mutex
	history []model.Message
}

// NewSession creates a session with a fresh id.
func NewSession(webSearch bool) *Session {
	return &Session{
		ID:        uuid.NewString(),
		WebSearch: webSearch,
	}
}

// context returns the last limitPairs user/assistant exchanges. Synthesized
// system messages are never stored, so the history is user/assistant only.
// Caller must hold mu.
func (s *Session) context(limitPairs int) []model.Message {
	n := limitPairs * 2
	if len(s.history) <= n {
		return append([]model.Message(nil), s.history...)
	}
	return append([]model.Message(nil), s.history[len(s.history)-n:]...)
}

// remember appends one completed exchange to the rolling history. Caller
// must hold mu.
func (s *Session) remember(userText, assistantText string) {
	s.history = append(s.history,
		model.Message{Role: model.RoleUser, Content: userText},
		model.Message{Role: model.RoleAssistant, Content: assistantText},
	)
}

// SetWebSearch flips the per-session retrieval toggle.
func (s *Session) SetWebSearch(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.WebSearch = enabled
}

// Reset clears the sticky flags and the rolling history.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.State = ConversationState{}
	s.history = nil
}

// History returns a copy of the rolling history.
func (s *Session) History() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Message(nil), s.history...)
}

// Manager hands out sessions by id. State never leaks between sessions.
type Manager struct {
	mu               sync.Mutex
	sessions         map[string]*Session
	webSearchDefault bool
}

// NewManager creates a Manager. New sessions start with the given
// web-search toggle.
func NewManager(webSearchDefault bool) *Manager {
	return &Manager{
		sessions:         make(map[string]*Session),
		webSearchDefault: webSearchDefault,
	}
}

// Get returns the session for id, creating it on first use. An empty id
// always creates a fresh session.
func (m *Manager) Get(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id != "" {
		if s, ok := m.sessions[id]; ok {
			return s
		}
	}

	s := NewSession(m.webSearchDefault)
	if id != "" {
		s.ID = id
	}
	m.sessions[s.ID] = s
	return s
}

// Clear resets the session for id if it exists.
func (m *Manager) Clear(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if ok {
		s.Reset()
	}
}
