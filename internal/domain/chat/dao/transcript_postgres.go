package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vadim/supportbot/internal/domain/chat/entity"
)

// TranscriptPostgres implements transcript storage for PostgreSQL
type TranscriptPostgres struct {
	pool *pgxpool.Pool
}

// NewTranscriptPostgres creates a new PostgreSQL transcript repository
func NewTranscriptPostgres(pool *pgxpool.Pool) *TranscriptPostgres {
	return &TranscriptPostgres{pool: pool}
}

const messageColumns = `m.id, m.session_id, m.text, m.sender, m.intent, m.satisfaction_score, m.timestamp`

// FindByTimeRange returns every transcript that has at least one message in
// [from, to). A zero to leaves the range open ended. Each transcript carries
// its full message list in insertion order.
func (r *TranscriptPostgres) FindByTimeRange(ctx context.Context, from, to time.Time) ([]entity.Transcript, error) {
	query := `
		SELECT t.created_at, t.updated_at, ` + messageColumns + `
		FROM chat_messages m
		JOIN chat_transcripts t ON t.session_id = m.session_id
		WHERE m.session_id IN (
			SELECT DISTINCT session_id
			FROM chat_messages
			WHERE timestamp >= $1
			  AND ($2::timestamptz IS NULL OR timestamp < $2)
		)
		ORDER BY t.created_at, m.session_id, m.id
	`

	var upper *time.Time
	if !to.IsZero() {
		upper = &to
	}

	rows, err := r.pool.Query(ctx, query, from, upper)
	if err != nil {
		return nil, fmt.Errorf("querying transcripts by time range: %w", err)
	}
	defer rows.Close()

	var transcripts []entity.Transcript
	for rows.Next() {
		var (
			createdAt, updatedAt time.Time
			msg                  entity.Message
		)
		if err := scanMessage(rows, &createdAt, &updatedAt, &msg); err != nil {
			return nil, err
		}

		n := len(transcripts)
		if n == 0 || transcripts[n-1].SessionID != msg.SessionID {
			transcripts = append(transcripts, entity.Transcript{
				SessionID: msg.SessionID,
				CreatedAt: createdAt,
				UpdatedAt: updatedAt,
			})
			n++
		}
		transcripts[n-1].Messages = append(transcripts[n-1].Messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transcripts: %w", err)
	}

	return transcripts, nil
}

// AppendMessages adds messages to a session's transcript in one transaction,
// creating the transcript on first use. The stored messages are returned with
// their IDs.
func (r *TranscriptPostgres) AppendMessages(ctx context.Context, sessionID string, msgs []entity.Message) ([]entity.Message, error) {
	if len(msgs) == 0 {
		return nil, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	lastTs := msgs[len(msgs)-1].Timestamp
	_, err = tx.Exec(ctx, `
		INSERT INTO chat_transcripts (session_id, created_at, updated_at)
		VALUES ($1, $2, $2)
		ON CONFLICT (session_id) DO UPDATE SET updated_at = GREATEST(chat_transcripts.updated_at, EXCLUDED.updated_at)
	`, sessionID, lastTs)
	if err != nil {
		return nil, fmt.Errorf("upserting transcript: %w", err)
	}

	batch := &pgx.Batch{}
	insert := `
		INSERT INTO chat_messages (session_id, text, sender, intent, satisfaction_score, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	for _, msg := range msgs {
		batch.Queue(insert,
			sessionID,
			msg.Text,
			msg.Sender,
			nullString(msg.Intent),
			msg.SatisfactionScore,
			msg.Timestamp,
		)
	}

	results := tx.SendBatch(ctx, batch)
	stored := make([]entity.Message, len(msgs))
	for i, msg := range msgs {
		msg.SessionID = sessionID
		if err := results.QueryRow().Scan(&msg.ID); err != nil {
			results.Close()
			return nil, fmt.Errorf("inserting message %d: %w", i, err)
		}
		stored[i] = msg
	}
	if err := results.Close(); err != nil {
		return nil, fmt.Errorf("closing batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	return stored, nil
}

// GetBySessionID retrieves a transcript with all of its messages
func (r *TranscriptPostgres) GetBySessionID(ctx context.Context, sessionID string) (*entity.Transcript, error) {
	var tr entity.Transcript
	err := r.pool.QueryRow(ctx, `
		SELECT session_id, created_at, updated_at
		FROM chat_transcripts
		WHERE session_id = $1
	`, sessionID).Scan(&tr.SessionID, &tr.CreatedAt, &tr.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning transcript: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT t.created_at, t.updated_at, `+messageColumns+`
		FROM chat_messages m
		JOIN chat_transcripts t ON t.session_id = m.session_id
		WHERE m.session_id = $1
		ORDER BY m.id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	tr.Messages = []entity.Message{}
	for rows.Next() {
		var (
			createdAt, updatedAt time.Time
			msg                  entity.Message
		)
		if err := scanMessage(rows, &createdAt, &updatedAt, &msg); err != nil {
			return nil, err
		}
		tr.Messages = append(tr.Messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}

	return &tr, nil
}

// List returns transcripts ordered by most recent activity
func (r *TranscriptPostgres) List(ctx context.Context, limit, offset int) ([]entity.TranscriptSummary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT t.session_id, t.created_at, t.updated_at, COUNT(m.id)
		FROM chat_transcripts t
		LEFT JOIN chat_messages m ON m.session_id = t.session_id
		GROUP BY t.session_id
		ORDER BY t.updated_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying transcripts: %w", err)
	}
	defer rows.Close()

	summaries := []entity.TranscriptSummary{}
	for rows.Next() {
		var s entity.TranscriptSummary
		if err := rows.Scan(&s.SessionID, &s.CreatedAt, &s.LastActivity, &s.MessageCount); err != nil {
			return nil, fmt.Errorf("scanning transcript summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transcripts: %w", err)
	}

	return summaries, nil
}

// Count returns the number of stored transcripts
func (r *TranscriptPostgres) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM chat_transcripts`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting transcripts: %w", err)
	}
	return count, nil
}

// SetSatisfaction records feedback on a message. It reports false when the
// message does not exist in the given session.
func (r *TranscriptPostgres) SetSatisfaction(ctx context.Context, sessionID string, messageID int64, score float64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE chat_messages
		SET satisfaction_score = $3
		WHERE session_id = $1 AND id = $2
	`, sessionID, messageID, score)
	if err != nil {
		return false, fmt.Errorf("updating satisfaction score: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanMessage(row pgx.Row, createdAt, updatedAt *time.Time, msg *entity.Message) error {
	var intent *string
	err := row.Scan(
		createdAt,
		updatedAt,
		&msg.ID,
		&msg.SessionID,
		&msg.Text,
		&msg.Sender,
		&intent,
		&msg.SatisfactionScore,
		&msg.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("scanning message: %w", err)
	}
	if intent != nil {
		msg.Intent = *intent
	}
	return nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
