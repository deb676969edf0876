package dao

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadim/supportbot/internal/domain/chat/entity"
)

func newTestRepo(t *testing.T) *TranscriptPostgres {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, RunMigration(ctx, pool))
	return NewTranscriptPostgres(pool)
}

func TestTranscriptPostgres_AppendAndFind(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	sessionID := uuid.NewString()
	base := time.Now().UTC().Add(-time.Hour).Truncate(time.Millisecond)

	stored, err := repo.AppendMessages(ctx, sessionID, []entity.Message{
		{Text: "hello", Sender: entity.SenderUser, Intent: "projects/p/agent/intents/welcome", Timestamp: base},
		{Text: "hi there", Sender: entity.SenderBot, Timestamp: base.Add(2 * time.Second)},
	})
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.NotZero(t, stored[0].ID)
	assert.Greater(t, stored[1].ID, stored[0].ID)

	_, err = repo.AppendMessages(ctx, sessionID, []entity.Message{
		{Text: "later", Sender: entity.SenderUser, Timestamp: base.Add(time.Minute)},
	})
	require.NoError(t, err)

	found, err := repo.FindByTimeRange(ctx, base.Add(30*time.Second), base.Add(2*time.Minute))
	require.NoError(t, err)

	var tr *entity.Transcript
	for i := range found {
		if found[i].SessionID == sessionID {
			tr = &found[i]
		}
	}
	require.NotNil(t, tr, "transcript with a message in range is returned")
	require.Len(t, tr.Messages, 3, "full message list is returned")
	assert.Equal(t, "projects/p/agent/intents/welcome", tr.Messages[0].Intent)
	assert.Empty(t, tr.Messages[1].Intent)
	assert.True(t, base.Equal(tr.Messages[0].Timestamp))

	ok, err := repo.SetSatisfaction(ctx, sessionID, stored[0].ID, 0.75)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.SetSatisfaction(ctx, uuid.NewString(), stored[0].ID, 0.75)
	require.NoError(t, err)
	assert.False(t, ok, "message must belong to the session")

	got, err := repo.GetBySessionID(ctx, sessionID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.Messages[0].SatisfactionScore)
	assert.Equal(t, 0.75, *got.Messages[0].SatisfactionScore)
}

func TestTranscriptPostgres_GetMissing(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.GetBySessionID(context.Background(), uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, got)
}
