package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vadim/supportbot/internal/domain/chat/entity"
	"github.com/vadim/supportbot/internal/storage"
)

// TranscriptRepository defines the interface for transcript storage
type TranscriptRepository interface {
	AppendMessages(ctx context.Context, sessionID string, msgs []entity.Message) ([]entity.Message, error)
	GetBySessionID(ctx context.Context, sessionID string) (*entity.Transcript, error)
	List(ctx context.Context, limit, offset int) ([]entity.TranscriptSummary, error)
	Count(ctx context.Context) (int64, error)
	SetSatisfaction(ctx context.Context, sessionID string, messageID int64, score float64) (bool, error)
}

// IntentDetector classifies a user utterance and produces the bot reply
type IntentDetector interface {
	DetectIntent(ctx context.Context, sessionID, text string) (*Detection, error)
}

// ObjectStorage stores exported transcripts
type ObjectStorage interface {
	Upload(ctx context.Context, in storage.UploadInput) (*storage.UploadOutput, error)
}

// MessageCounter counts stored chat turns by sender
type MessageCounter interface {
	IncChatMessage(sender string)
}

// Detection is the NLU result for one utterance
type Detection struct {
	Reply       string
	Intent      string
	DisplayName string
}

// Service handles chat business logic
type Service struct {
	repo    TranscriptRepository
	nlu     IntentDetector
	objects ObjectStorage
	counter MessageCounter
	now     func() time.Time
}

// Option configures the Service
type Option func(*Service)

// WithClock overrides the time source used to stamp messages
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithMessageCounter sets the stored message counter
func WithMessageCounter(c MessageCounter) Option {
	return func(s *Service) {
		s.counter = c
	}
}

// New creates a new chat service
func New(repo TranscriptRepository, nlu IntentDetector, objects ObjectStorage, opts ...Option) *Service {
	s := &Service{
		repo:    repo,
		nlu:     nlu,
		objects: objects,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SendMessageInput represents input for a chat turn
type SendMessageInput struct {
	SessionID string
	Text      string
}

// SendMessageOutput represents the result of a chat turn
type SendMessageOutput struct {
	SessionID     string
	Reply         string
	Intent        string
	DisplayName   string
	UserMessageID int64
	BotMessageID  int64
}

// SendMessage forwards the user's text to the NLU agent and stores both turns.
// Nothing is stored when the NLU call fails.
func (s *Service) SendMessage(ctx context.Context, in SendMessageInput) (*SendMessageOutput, error) {
	if err := entity.ValidateMessageText(in.Text); err != nil {
		return nil, err
	}

	sessionID := in.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	} else if err := ValidateSessionID(sessionID); err != nil {
		return nil, err
	}

	userTs := s.now().UTC()
	det, err := s.nlu.DetectIntent(ctx, sessionID, in.Text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrNLUFailed, err)
	}
	botTs := s.now().UTC()
	if !botTs.After(userTs) {
		botTs = userTs.Add(time.Millisecond)
	}

	stored, err := s.repo.AppendMessages(ctx, sessionID, []entity.Message{
		{Text: in.Text, Sender: entity.SenderUser, Intent: det.Intent, Timestamp: userTs},
		{Text: det.Reply, Sender: entity.SenderBot, Timestamp: botTs},
	})
	if err != nil {
		return nil, fmt.Errorf("appending messages: %w", err)
	}

	if s.counter != nil {
		s.counter.IncChatMessage(string(entity.SenderUser))
		s.counter.IncChatMessage(string(entity.SenderBot))
	}

	out := &SendMessageOutput{
		SessionID:   sessionID,
		Reply:       det.Reply,
		Intent:      det.Intent,
		DisplayName: det.DisplayName,
	}
	if len(stored) == 2 {
		out.UserMessageID = stored[0].ID
		out.BotMessageID = stored[1].ID
	}
	return out, nil
}

// RateMessageInput represents input for turn feedback
type RateMessageInput struct {
	SessionID string
	MessageID int64
	Score     float64
}

// RateMessage stores a satisfaction score on one message of a session
func (s *Service) RateMessage(ctx context.Context, in RateMessageInput) error {
	if err := ValidateSessionID(in.SessionID); err != nil {
		return err
	}
	if err := entity.ValidateSatisfactionScore(in.Score); err != nil {
		return err
	}

	ok, err := s.repo.SetSatisfaction(ctx, in.SessionID, in.MessageID, in.Score)
	if err != nil {
		return fmt.Errorf("setting satisfaction: %w", err)
	}
	if !ok {
		return entity.ErrMessageNotFound
	}
	return nil
}

// GetTranscript retrieves a transcript by session id
func (s *Service) GetTranscript(ctx context.Context, sessionID string) (*entity.Transcript, error) {
	if err := ValidateSessionID(sessionID); err != nil {
		return nil, err
	}

	tr, err := s.repo.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("getting transcript: %w", err)
	}
	if tr == nil {
		return nil, entity.ErrTranscriptNotFound
	}
	return tr, nil
}

// ListTranscriptsInput represents input for listing transcripts
type ListTranscriptsInput struct {
	Limit  int
	Offset int
}

// ListTranscriptsOutput represents output from listing transcripts
type ListTranscriptsOutput struct {
	Transcripts []entity.TranscriptSummary
	Total       int64
	HasMore     bool
}

// ListTranscripts returns transcripts ordered by recent activity
func (s *Service) ListTranscripts(ctx context.Context, in ListTranscriptsInput) (*ListTranscriptsOutput, error) {
	items, err := s.repo.List(ctx, in.Limit, in.Offset)
	if err != nil {
		return nil, fmt.Errorf("listing transcripts: %w", err)
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting transcripts: %w", err)
	}

	return &ListTranscriptsOutput{
		Transcripts: items,
		Total:       total,
		HasMore:     int64(in.Offset+len(items)) < total,
	}, nil
}

// ExportTranscript serialises a transcript to JSON and uploads it
func (s *Service) ExportTranscript(ctx context.Context, sessionID string) (*storage.UploadOutput, error) {
	tr, err := s.GetTranscript(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	body, err := json.MarshalIndent(tr, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding transcript: %w", err)
	}

	out, err := s.objects.Upload(ctx, storage.UploadInput{
		Body:        body,
		ContentType: "application/json",
		Name:        tr.SessionID,
		Ext:         ".json",
	})
	if err != nil {
		return nil, fmt.Errorf("uploading transcript: %w", err)
	}
	return out, nil
}

// ValidateSessionID checks that a session key is a UUID
func ValidateSessionID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return entity.ErrInvalidSessionID
	}
	return nil
}
