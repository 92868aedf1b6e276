package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conecta-senac/aprendiz/internal/model"
)

func TestSessionRollingContextKeepsLastPairs(t *testing.T) {
	s := NewSession(true)
	for i := 0; i < 10; i++ {
		s.remember("pergunta", "resposta")
	}

	ctx := s.context(6)
	require.Len(t, ctx, 12)
	assert.Equal(t, model.RoleUser, ctx[0].Role)
	assert.Equal(t, model.RoleAssistant, ctx[len(ctx)-1].Role)
}

func TestSessionContextCopyIsIndependent(t *testing.T) {
	s := NewSession(true)
	s.remember("oi", "olá")

	ctx := s.context(6)
	ctx[0].Content = "mutado"

	assert.Equal(t, "oi", s.History()[0].Content)
}

func TestSessionResetClearsFlagsAndHistory(t *testing.T) {
	s := NewSession(true)
	s.State.AwaitingLocation = true
	s.remember("oi", "olá")

	s.Reset()

	assert.Equal(t, ConversationState{}, s.State)
	assert.Empty(t, s.History())
}

func TestManagerIsolatesSessions(t *testing.T) {
	m := NewManager(true)

	a := m.Get("")
	b := m.Get("")
	require.NotEqual(t, a.ID, b.ID)

	a.State.AwaitingContact = true
	assert.False(t, b.State.AwaitingContact, "state must never leak between sessions")

	assert.Same(t, a, m.Get(a.ID))
}

func TestManagerCreatesSessionForUnknownID(t *testing.T) {
	m := NewManager(false)

	s := m.Get("cliente-123")
	assert.Equal(t, "cliente-123", s.ID)
	assert.False(t, s.WebSearch)
	assert.Same(t, s, m.Get("cliente-123"))
}

func TestManagerClear(t *testing.T) {
	m := NewManager(true)
	s := m.Get("x")
	s.State.AwaitingLocation = true
	s.remember("oi", "olá")

	m.Clear("x")

	assert.Equal(t, ConversationState{}, s.State)
	assert.Empty(t, s.History())

	m.Clear("inexistente")
}
