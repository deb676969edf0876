package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadim/supportbot/internal/domain/chat/entity"
	"github.com/vadim/supportbot/internal/storage"
)

type fakeRepo struct {
	transcripts map[string]*entity.Transcript
	nextID      int64
	appendErr   error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{transcripts: map[string]*entity.Transcript{}}
}

func (f *fakeRepo) AppendMessages(ctx context.Context, sessionID string, msgs []entity.Message) ([]entity.Message, error) {
	if f.appendErr != nil {
		return nil, f.appendErr
	}
	tr, ok := f.transcripts[sessionID]
	if !ok {
		tr = &entity.Transcript{SessionID: sessionID}
		f.transcripts[sessionID] = tr
	}
	out := make([]entity.Message, 0, len(msgs))
	for _, m := range msgs {
		f.nextID++
		m.ID = f.nextID
		m.SessionID = sessionID
		tr.Messages = append(tr.Messages, m)
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeRepo) GetBySessionID(ctx context.Context, sessionID string) (*entity.Transcript, error) {
	tr, ok := f.transcripts[sessionID]
	if !ok {
		return nil, nil
	}
	return tr, nil
}

func (f *fakeRepo) List(ctx context.Context, limit, offset int) ([]entity.TranscriptSummary, error) {
	var out []entity.TranscriptSummary
	for id, tr := range f.transcripts {
		out = append(out, entity.TranscriptSummary{SessionID: id, MessageCount: int64(len(tr.Messages))})
	}
	if offset >= len(out) {
		return []entity.TranscriptSummary{}, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(f.transcripts)), nil
}

func (f *fakeRepo) SetSatisfaction(ctx context.Context, sessionID string, messageID int64, score float64) (bool, error) {
	tr, ok := f.transcripts[sessionID]
	if !ok {
		return false, nil
	}
	for i := range tr.Messages {
		if tr.Messages[i].ID == messageID {
			tr.Messages[i].SatisfactionScore = &score
			return true, nil
		}
	}
	return false, nil
}

type fakeNLU struct {
	det      *Detection
	err      error
	sessions []string
}

func (f *fakeNLU) DetectIntent(ctx context.Context, sessionID, text string) (*Detection, error) {
	f.sessions = append(f.sessions, sessionID)
	if f.err != nil {
		return nil, f.err
	}
	return f.det, nil
}

type fakeObjects struct {
	uploaded []storage.UploadInput
}

func (f *fakeObjects) Upload(ctx context.Context, in storage.UploadInput) (*storage.UploadOutput, error) {
	f.uploaded = append(f.uploaded, in)
	key := "transcripts/" + in.Name + in.Ext
	return &storage.UploadOutput{Key: key, URL: "http://s3.local/" + key, Size: int64(len(in.Body))}, nil
}

type fakeCounter struct {
	counts map[string]int
}

func (f *fakeCounter) IncChatMessage(sender string) {
	if f.counts == nil {
		f.counts = map[string]int{}
	}
	f.counts[sender]++
}

func fixedClock(start time.Time) func() time.Time {
	t := start
	return func() time.Time {
		cur := t
		t = t.Add(1500 * time.Millisecond)
		return cur
	}
}

func welcomeNLU() *fakeNLU {
	return &fakeNLU{det: &Detection{
		Reply:       "Hello! How can I help?",
		Intent:      "projects/demo/agent/intents/abc",
		DisplayName: "Default Welcome Intent",
	}}
}

func TestSendMessage_NewSession(t *testing.T) {
	repo := newFakeRepo()
	nlu := welcomeNLU()
	counter := &fakeCounter{}
	start := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	svc := New(repo, nlu, &fakeObjects{}, WithClock(fixedClock(start)), WithMessageCounter(counter))

	out, err := svc.SendMessage(context.Background(), SendMessageInput{Text: "hi"})
	require.NoError(t, err)

	_, err = uuid.Parse(out.SessionID)
	require.NoError(t, err, "a session key is generated")
	assert.Equal(t, "Hello! How can I help?", out.Reply)
	assert.Equal(t, "Default Welcome Intent", out.DisplayName)
	assert.Equal(t, []string{out.SessionID}, nlu.sessions)

	tr := repo.transcripts[out.SessionID]
	require.NotNil(t, tr)
	require.Len(t, tr.Messages, 2)

	user, bot := tr.Messages[0], tr.Messages[1]
	assert.Equal(t, entity.SenderUser, user.Sender)
	assert.Equal(t, "projects/demo/agent/intents/abc", user.Intent, "intent is stored on the user turn")
	assert.Equal(t, start, user.Timestamp)
	assert.Equal(t, entity.SenderBot, bot.Sender)
	assert.Empty(t, bot.Intent)
	assert.Equal(t, start.Add(1500*time.Millisecond), bot.Timestamp)
	assert.Equal(t, user.ID, out.UserMessageID)
	assert.Equal(t, bot.ID, out.BotMessageID)
	assert.Equal(t, map[string]int{"user": 1, "bot": 1}, counter.counts)
}

func TestSendMessage_ExistingSessionAppends(t *testing.T) {
	repo := newFakeRepo()
	svc := New(repo, welcomeNLU(), &fakeObjects{})
	sessionID := uuid.NewString()

	for i := 0; i < 2; i++ {
		out, err := svc.SendMessage(context.Background(), SendMessageInput{SessionID: sessionID, Text: "again"})
		require.NoError(t, err)
		assert.Equal(t, sessionID, out.SessionID)
	}

	assert.Len(t, repo.transcripts[sessionID].Messages, 4)
}

func TestSendMessage_Validation(t *testing.T) {
	tests := []struct {
		name    string
		in      SendMessageInput
		wantErr error
	}{
		{"empty", SendMessageInput{Text: "   "}, entity.ErrEmptyMessage},
		{"too long", SendMessageInput{Text: strings.Repeat("a", entity.MaxMessageLength+1)}, entity.ErrMessageTooLong},
		{"bad session", SendMessageInput{SessionID: "not-a-uuid", Text: "hi"}, entity.ErrInvalidSessionID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nlu := welcomeNLU()
			svc := New(newFakeRepo(), nlu, &fakeObjects{})

			_, err := svc.SendMessage(context.Background(), tt.in)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, nlu.sessions, "NLU is not called for invalid input")
		})
	}
}

func TestSendMessage_MaxLengthCountsCharacters(t *testing.T) {
	svc := New(newFakeRepo(), welcomeNLU(), &fakeObjects{})

	_, err := svc.SendMessage(context.Background(), SendMessageInput{Text: strings.Repeat("é", entity.MaxMessageLength)})
	assert.NoError(t, err)
}

func TestSendMessage_NLUFailureStoresNothing(t *testing.T) {
	repo := newFakeRepo()
	cause := errors.New("deadline exceeded")
	svc := New(repo, &fakeNLU{err: cause}, &fakeObjects{})

	out, err := svc.SendMessage(context.Background(), SendMessageInput{Text: "hi"})

	assert.Nil(t, out)
	assert.ErrorIs(t, err, entity.ErrNLUFailed)
	assert.ErrorIs(t, err, cause)
	assert.Empty(t, repo.transcripts)
}

func TestRateMessage(t *testing.T) {
	repo := newFakeRepo()
	svc := New(repo, welcomeNLU(), &fakeObjects{})
	ctx := context.Background()

	out, err := svc.SendMessage(ctx, SendMessageInput{Text: "hi"})
	require.NoError(t, err)

	require.NoError(t, svc.RateMessage(ctx, RateMessageInput{SessionID: out.SessionID, MessageID: out.UserMessageID, Score: 0}))
	score := repo.transcripts[out.SessionID].Messages[0].SatisfactionScore
	require.NotNil(t, score)
	assert.Zero(t, *score)

	err = svc.RateMessage(ctx, RateMessageInput{SessionID: out.SessionID, MessageID: 999, Score: 1})
	assert.ErrorIs(t, err, entity.ErrMessageNotFound)

	err = svc.RateMessage(ctx, RateMessageInput{SessionID: uuid.NewString(), MessageID: out.UserMessageID, Score: 1})
	assert.ErrorIs(t, err, entity.ErrMessageNotFound, "message must belong to the session")

	for _, bad := range []float64{-0.1, 1.01} {
		err = svc.RateMessage(ctx, RateMessageInput{SessionID: out.SessionID, MessageID: out.UserMessageID, Score: bad})
		assert.ErrorIs(t, err, entity.ErrInvalidScore)
	}
}

func TestGetTranscript_NotFound(t *testing.T) {
	svc := New(newFakeRepo(), welcomeNLU(), &fakeObjects{})

	_, err := svc.GetTranscript(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, entity.ErrTranscriptNotFound)

	_, err = svc.GetTranscript(context.Background(), "nope")
	assert.ErrorIs(t, err, entity.ErrInvalidSessionID)
}

func TestListTranscripts(t *testing.T) {
	repo := newFakeRepo()
	svc := New(repo, welcomeNLU(), &fakeObjects{})
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := svc.SendMessage(ctx, SendMessageInput{Text: "hi"})
		require.NoError(t, err)
	}

	out, err := svc.ListTranscripts(ctx, ListTranscriptsInput{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, out.Transcripts, 2)
	assert.Equal(t, int64(3), out.Total)
	assert.True(t, out.HasMore)

	out, err = svc.ListTranscripts(ctx, ListTranscriptsInput{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, out.Transcripts, 1)
	assert.False(t, out.HasMore)
}

func TestExportTranscript(t *testing.T) {
	repo := newFakeRepo()
	objects := &fakeObjects{}
	svc := New(repo, welcomeNLU(), objects)
	ctx := context.Background()

	sent, err := svc.SendMessage(ctx, SendMessageInput{Text: "hi"})
	require.NoError(t, err)

	out, err := svc.ExportTranscript(ctx, sent.SessionID)
	require.NoError(t, err)

	require.Len(t, objects.uploaded, 1)
	up := objects.uploaded[0]
	assert.Equal(t, "application/json", up.ContentType)
	assert.Equal(t, sent.SessionID, up.Name)
	assert.Equal(t, ".json", up.Ext)
	assert.Equal(t, int64(len(up.Body)), out.Size)

	var decoded entity.Transcript
	require.NoError(t, json.Unmarshal(up.Body, &decoded))
	assert.Equal(t, sent.SessionID, decoded.SessionID)
	assert.Len(t, decoded.Messages, 2)

	_, err = svc.ExportTranscript(ctx, uuid.NewString())
	assert.ErrorIs(t, err, entity.ErrTranscriptNotFound)
	assert.Len(t, objects.uploaded, 1)
}
