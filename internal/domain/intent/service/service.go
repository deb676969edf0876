package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/vadim/supportbot/internal/domain/intent/entity"
)

// Gateway defines the read side of the NLU agent's intent catalog
type Gateway interface {
	ListIntents(ctx context.Context) ([]entity.Intent, error)
	// GetIntent returns nil, nil when the intent does not exist
	GetIntent(ctx context.Context, id string) (*entity.Intent, error)
}

// Service exposes the intent catalog
type Service struct {
	gw Gateway
}

// New creates a new intent service
func New(gw Gateway) *Service {
	return &Service{gw: gw}
}

// ListIntents returns every intent known to the agent
func (s *Service) ListIntents(ctx context.Context) ([]entity.Intent, error) {
	intents, err := s.gw.ListIntents(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrCatalogFailed, err)
	}
	return intents, nil
}

// GetIntent returns one intent by the trailing segment of its name
func (s *Service) GetIntent(ctx context.Context, id string) (*entity.Intent, error) {
	if id == "" || strings.Contains(id, "/") {
		return nil, entity.ErrInvalidIntentID
	}

	intent, err := s.gw.GetIntent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrCatalogFailed, err)
	}
	if intent == nil {
		return nil, entity.ErrIntentNotFound
	}
	return intent, nil
}

// ListSummaries returns the name and display name of every intent
func (s *Service) ListSummaries(ctx context.Context) ([]entity.Summary, error) {
	intents, err := s.ListIntents(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]entity.Summary, 0, len(intents))
	for _, i := range intents {
		out = append(out, i.Summary())
	}
	return out, nil
}
