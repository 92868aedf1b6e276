// Package store persists conversation history and captured leads.
package store

import (
	"context"

	"github.com/conecta-senac/aprendiz/internal/model"
)

// Store defines the persistence operations of the assistant.
type Store interface {
	Migrate(ctx context.Context) error
	SaveTurn(ctx context.Context, sessionID string, entry model.HistoryEntry) error
	History(ctx context.Context, sessionID string, limit int) ([]model.HistoryEntry, error)
	SaveLead(ctx context.Context, lead model.Lead) (alreadyExists bool, err error)
	ListLeads(ctx context.Context, limit int) ([]model.Lead, error)
	Close() error
}
