package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/conecta-senac/aprendiz/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS history (
	id         TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	timestamp  DATETIME NOT NULL DEFAULT (datetime('now')),
	speaker    TEXT NOT NULL,
	message    TEXT NOT NULL,
	emotion    TEXT,
	sources    TEXT
);

CREATE TABLE IF NOT EXISTS leads (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	email        TEXT NOT NULL UNIQUE,
	raw_message  TEXT,
	capture_time DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_history_session_id ON history(session_id);
CREATE INDEX IF NOT EXISTS idx_history_timestamp ON history(timestamp);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveTurn persists one side of an exchange under the session.
func (s *SQLiteStore) SaveTurn(ctx context.Context, sessionID string, entry model.HistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	var sources sql.NullString
	if len(entry.Sources) > 0 {
		b, err := json.Marshal(entry.Sources)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal sources")
		}
		sources = sql.NullString{String: string(b), Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO history (id, session_id, timestamp, speaker, message, emotion, sources)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, sessionID, entry.Timestamp, entry.Speaker, entry.Message, string(entry.Emotion), sources,
	)
	return eris.Wrap(err, "sqlite: insert turn")
}

// History returns the most recent entries for a session, oldest first.
func (s *SQLiteStore) History(ctx context.Context, sessionID string, limit int) ([]model.HistoryEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, timestamp, speaker, message, emotion, sources FROM (
			SELECT id, timestamp, speaker, message, emotion, sources
			FROM history WHERE session_id = ?
			ORDER BY timestamp DESC, id LIMIT ?
		 ) ORDER BY timestamp ASC`,
		sessionID, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query history")
	}
	defer rows.Close()

	var entries []model.HistoryEntry
	for rows.Next() {
		var e model.HistoryEntry
		var emotion sql.NullString
		var sources sql.NullString
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Speaker, &e.Message, &emotion, &sources); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan history entry")
		}
		e.Emotion = model.Emotion(emotion.String)
		if sources.Valid {
			if err := json.Unmarshal([]byte(sources.String), &e.Sources); err != nil {
				return nil, eris.Wrap(err, "sqlite: unmarshal sources")
			}
		}
		entries = append(entries, e)
	}
	return entries, eris.Wrap(rows.Err(), "sqlite: history iterate")
}

// SaveLead inserts a captured contact. A duplicate email is a normal
// outcome reported through alreadyExists, not an error.
func (s *SQLiteStore) SaveLead(ctx context.Context, lead model.Lead) (bool, error) {
	if lead.ID == "" {
		lead.ID = uuid.NewString()
	}
	if lead.CaptureTime.IsZero() {
		lead.CaptureTime = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO leads (id, name, email, raw_message, capture_time) VALUES (?, ?, ?, ?, ?)`,
		lead.ID, lead.Name, strings.ToLower(lead.Email), lead.RawMessage, lead.CaptureTime,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return true, nil
		}
		return false, eris.Wrap(err, "sqlite: insert lead")
	}
	return false, nil
}

// ListLeads returns captured leads, newest first.
func (s *SQLiteStore) ListLeads(ctx context.Context, limit int) ([]model.Lead, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, raw_message, capture_time FROM leads
		 ORDER BY capture_time DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		var l model.Lead
		if err := rows.Scan(&l.ID, &l.Name, &l.Email, &l.RawMessage, &l.CaptureTime); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lead")
		}
		leads = append(leads, l)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: leads iterate")
}

// isUniqueViolation matches the driver's constraint error text. The
// modernc driver does not export a typed constraint error.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
