package entity

import "errors"

// Domain errors for chat
var (
	ErrTranscriptNotFound = errors.New("transcript not found")
	ErrMessageNotFound    = errors.New("message not found")
	ErrEmptyMessage       = errors.New("message text cannot be empty")
	ErrMessageTooLong     = errors.New("message exceeds maximum length")
	ErrInvalidScore       = errors.New("satisfaction score must be between 0 and 1")
	ErrInvalidSessionID   = errors.New("invalid session id")
	ErrNLUFailed          = errors.New("AI response failed")
)
