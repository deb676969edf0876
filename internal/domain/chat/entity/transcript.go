package entity

import "time"

// Transcript is the ordered message history of one chat session.
// Messages are kept in insertion order, which is also chronological order.
type Transcript struct {
	SessionID string    `json:"sessionId"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TranscriptSummary is a lightweight listing row for a transcript
type TranscriptSummary struct {
	SessionID    string    `json:"sessionId"`
	MessageCount int64     `json:"messageCount"`
	LastActivity time.Time `json:"lastActivity"`
	CreatedAt    time.Time `json:"createdAt"`
}

// MessagesBetween returns the messages whose timestamp lies in [from, to).
// A zero to means no upper bound.
func (t Transcript) MessagesBetween(from, to time.Time) []Message {
	out := make([]Message, 0, len(t.Messages))
	for _, m := range t.Messages {
		if m.Timestamp.Before(from) {
			continue
		}
		if !to.IsZero() && !m.Timestamp.Before(to) {
			continue
		}
		out = append(out, m)
	}
	return out
}
