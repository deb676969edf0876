package service

import (
	"time"

	"github.com/vadim/supportbot/internal/domain/analytics/entity"
	chatentity "github.com/vadim/supportbot/internal/domain/chat/entity"
)

// Tally is the per-intent breakdown of one period's messages
type Tally struct {
	// IntentOrder lists intents in the order they were first seen
	IntentOrder []string

	MessageCounts   map[string]int
	ResponseTotal   map[string]time.Duration
	ResponseSamples map[string]int
	Satisfaction    map[string][]float64
	LastUsed        map[string]time.Time

	// TotalMessages counts every in-window message, with or without an intent
	TotalMessages int

	// Messages holds the in-window messages used for daily buckets
	Messages []chatentity.Message
}

func newTally() *Tally {
	return &Tally{
		MessageCounts:   make(map[string]int),
		ResponseTotal:   make(map[string]time.Duration),
		ResponseSamples: make(map[string]int),
		Satisfaction:    make(map[string][]float64),
		LastUsed:        make(map[string]time.Time),
	}
}

// Classify walks each transcript's messages inside the window and counts them.
//
// A user turn directly followed by a bot turn yields one response time sample
// keyed by the user turn's intent. Only the next message is inspected.
// Satisfaction scores are recorded against the intent of the scored message,
// so a score on a message without an intent is dropped.
func Classify(transcripts []chatentity.Transcript, window entity.Interval) *Tally {
	t := newTally()

	for _, tr := range transcripts {
		msgs := tr.MessagesBetween(window.Start, window.End)
		t.TotalMessages += len(msgs)
		t.Messages = append(t.Messages, msgs...)

		for i, msg := range msgs {
			if !msg.HasIntent() {
				continue
			}
			t.observeIntent(msg)

			if msg.Sender == chatentity.SenderUser && i+1 < len(msgs) && msgs[i+1].Sender == chatentity.SenderBot {
				t.ResponseTotal[msg.Intent] += msgs[i+1].Timestamp.Sub(msg.Timestamp)
				t.ResponseSamples[msg.Intent]++
			}

			if msg.SatisfactionScore != nil {
				t.Satisfaction[msg.Intent] = append(t.Satisfaction[msg.Intent], *msg.SatisfactionScore)
			}
		}
	}

	return t
}

func (t *Tally) observeIntent(msg chatentity.Message) {
	if _, seen := t.MessageCounts[msg.Intent]; !seen {
		t.IntentOrder = append(t.IntentOrder, msg.Intent)
	}
	t.MessageCounts[msg.Intent]++

	if last, ok := t.LastUsed[msg.Intent]; !ok || msg.Timestamp.After(last) {
		t.LastUsed[msg.Intent] = msg.Timestamp
	}
}
