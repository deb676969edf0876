package dao

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS chat_transcripts (
		session_id TEXT PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS chat_messages (
		id BIGSERIAL PRIMARY KEY,
		session_id TEXT NOT NULL REFERENCES chat_transcripts(session_id) ON DELETE CASCADE,
		text TEXT NOT NULL,
		sender TEXT NOT NULL CHECK (sender IN ('user', 'bot')),
		intent TEXT,
		satisfaction_score DOUBLE PRECISION CHECK (satisfaction_score BETWEEN 0 AND 1),
		timestamp TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_chat_messages_timestamp ON chat_messages (timestamp)`,
	`CREATE INDEX IF NOT EXISTS idx_chat_messages_session ON chat_messages (session_id, id)`,
	`CREATE INDEX IF NOT EXISTS idx_chat_transcripts_updated ON chat_transcripts (updated_at DESC)`,
}

// RunMigration creates the transcript tables when they are missing
func RunMigration(ctx context.Context, pool *pgxpool.Pool) error {
	for i, s := range migrationStatements {
		stmt := strings.TrimSpace(s)
		if stmt == "" {
			continue
		}
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("running migration statement %d: %w", i, err)
		}
	}
	return nil
}
