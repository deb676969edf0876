package entity

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

// Sender identifies who produced a chat turn
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Valid reports whether s is a known sender
func (s Sender) Valid() bool {
	return s == SenderUser || s == SenderBot
}

// Message is a single turn in a chat transcript
type Message struct {
	ID                int64     `json:"id"`
	SessionID         string    `json:"sessionId"`
	Text              string    `json:"text"`
	Sender            Sender    `json:"sender"`
	Timestamp         time.Time `json:"timestamp"`
	Intent            string    `json:"intent,omitempty"`
	SatisfactionScore *float64  `json:"satisfactionScore,omitempty"`
}

// HasIntent reports whether the NLU assigned an intent to this turn
func (m Message) HasIntent() bool {
	return m.Intent != ""
}

// MaxMessageLength is the maximum length of a chat message in characters
const MaxMessageLength = 2000

// ValidateMessageText validates the text for a user turn
func ValidateMessageText(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > MaxMessageLength {
		return ErrMessageTooLong
	}
	return nil
}

// ValidateSatisfactionScore checks that a feedback score lies in [0,1]
func ValidateSatisfactionScore(score float64) error {
	if math.IsNaN(score) || score < 0 || score > 1 {
		return ErrInvalidScore
	}
	return nil
}
