package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vadim/supportbot/internal/domain/analytics/entity"
	chatentity "github.com/vadim/supportbot/internal/domain/chat/entity"
	intententity "github.com/vadim/supportbot/internal/domain/intent/entity"
)

// TranscriptStore defines the read side of transcript storage used by analytics
type TranscriptStore interface {
	// FindByTimeRange returns every transcript with at least one message in
	// [from, to), each with its full ordered message list
	FindByTimeRange(ctx context.Context, from, to time.Time) ([]chatentity.Transcript, error)
}

// IntentCatalog lists the intents known to the NLU agent
type IntentCatalog interface {
	ListSummaries(ctx context.Context) ([]intententity.Summary, error)
}

// Service builds analytics reports from stored transcripts
type Service struct {
	transcripts TranscriptStore
	intents     IntentCatalog
}

// New creates a new analytics service
func New(transcripts TranscriptStore, intents IntentCatalog) *Service {
	return &Service{
		transcripts: transcripts,
		intents:     intents,
	}
}

// BuildReportInput represents input for building a report
type BuildReportInput struct {
	Range entity.Range
	Now   time.Time
}

// snapshot is everything a report is computed from
type snapshot struct {
	current  []chatentity.Transcript
	previous []chatentity.Transcript
	catalog  []intententity.Summary
}

// BuildReport computes the analytics report for the window ending at in.Now.
// The whole transcript set for both windows is scanned in memory.
func (s *Service) BuildReport(ctx context.Context, in BuildReportInput) (*entity.Report, error) {
	periods := entity.Resolve(in.Range, in.Now)

	snap, err := s.fetch(ctx, periods)
	if err != nil {
		return nil, err
	}

	cur := Classify(snap.current, periods.Current)
	prev := Classify(snap.previous, periods.Previous)

	avgResponse := AverageResponseTime(cur)
	satisfaction := PlatformSatisfaction(cur)
	days := in.Range.Days()

	return &entity.Report{
		TotalIntents:         len(snap.catalog),
		TotalMessages:        cur.TotalMessages,
		AvgResponseTime:      avgResponse,
		PlatformSatisfaction: satisfaction,
		MessagesPerDay:       MessagesPerDay(cur, in.Now, days),
		MessageData:          MessageData(cur, in.Now, days),
		PopularIntents:       PopularIntents(cur, snap.catalog),
		ResponseTimes:        ResponseTimes(cur),
		MessageChange:        TrendDelta(float64(cur.TotalMessages), float64(prev.TotalMessages)),
		ResponseTimeChange:   TrendDelta(avgResponse, AverageResponseTime(prev)),
		SatisfactionChange:   TrendDelta(float64(satisfaction), float64(PlatformSatisfaction(prev))),
	}, nil
}

// fetch issues the three reads concurrently. The first failure cancels the
// others and is returned as a RetrievalError.
func (s *Service) fetch(ctx context.Context, periods entity.Periods) (*snapshot, error) {
	var snap snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		out, err := s.transcripts.FindByTimeRange(gctx, periods.Current.Start, periods.Current.End)
		if err != nil {
			return &entity.RetrievalError{Source: "current transcripts", Err: err}
		}
		snap.current = out
		return nil
	})

	g.Go(func() error {
		out, err := s.transcripts.FindByTimeRange(gctx, periods.Previous.Start, periods.Previous.End)
		if err != nil {
			return &entity.RetrievalError{Source: "previous transcripts", Err: err}
		}
		snap.previous = out
		return nil
	})

	g.Go(func() error {
		out, err := s.intents.ListSummaries(gctx)
		if err != nil {
			return &entity.RetrievalError{Source: "intent catalog", Err: err}
		}
		snap.catalog = out
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &snap, nil
}
