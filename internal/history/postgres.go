package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore persists conversation logs in Postgres. The same FIFO bound
// as MemoryStore is enforced by pruning after each append.
type PostgresStore struct {
	db         *sql.DB
	schemaOnce sync.Once
	schemaErr  error
}

func NewPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

// NewFromEnv returns a Postgres store when HISTORY_PG_DSN is set and
// reachable, otherwise the in-memory store.
func NewFromEnv() Store {
	dsn := strings.TrimSpace(os.Getenv("HISTORY_PG_DSN"))
	if dsn == "" {
		return NewMemoryStore()
	}
	s, err := NewPostgres(dsn)
	if err != nil {
		return NewMemoryStore()
	}
	return s
}

func (s *PostgresStore) ensureSchema() error {
	if s == nil || s.db == nil {
		return fmt.Errorf("history: db is nil")
	}
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.Exec(`
CREATE TABLE IF NOT EXISTS chat_messages (
    id BIGSERIAL PRIMARY KEY,
    conversation_id TEXT NOT NULL,
    role TEXT NOT NULL,
    parts JSONB NOT NULL,
    ts BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_chat_messages_conversation ON chat_messages(conversation_id, id);
`)
	})
	return s.schemaErr
}

func (s *PostgresStore) History(ctx context.Context, conversationID string) ([]Message, error) {
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT role, parts, ts FROM (
    SELECT id, role, parts, ts FROM chat_messages
    WHERE conversation_id = $1 ORDER BY id DESC LIMIT $2
) recent ORDER BY id ASC
`, conversationID, MaxMessages)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var (
			role  string
			parts []byte
			ts    int64
		)
		if err := rows.Scan(&role, &parts, &ts); err != nil {
			return nil, err
		}
		msg := Message{Role: Role(role), Timestamp: ts}
		if err := json.Unmarshal(parts, &msg.Parts); err != nil {
			return nil, fmt.Errorf("history: decode parts: %w", err)
		}
		out = append(out, msg)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Append(ctx context.Context, conversationID string, msgs ...Message) error {
	if len(msgs) == 0 {
		return nil
	}
	if err := s.ensureSchema(); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, m := range msgs {
		parts, err := json.Marshal(m.Parts)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO chat_messages (conversation_id, role, parts, ts) VALUES ($1, $2, $3, $4)
`, conversationID, string(m.Role), parts, m.Timestamp); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, `
DELETE FROM chat_messages WHERE conversation_id = $1 AND id NOT IN (
    SELECT id FROM chat_messages WHERE conversation_id = $1 ORDER BY id DESC LIMIT $2
)
`, conversationID, MaxMessages); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *PostgresStore) Clear(ctx context.Context, conversationID string) error {
	if err := s.ensureSchema(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM chat_messages WHERE conversation_id = $1`, conversationID)
	return err
}

func (s *PostgresStore) Conversations(ctx context.Context) ([]string, error) {
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT conversation_id FROM chat_messages`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *PostgresStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
