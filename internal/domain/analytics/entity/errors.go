package entity

import (
	"errors"
	"fmt"
)

// ErrRetrievalFailed marks a report that could not be built because an input
// source failed. No partial report is ever returned alongside it.
var ErrRetrievalFailed = errors.New("analytics retrieval failed")

// RetrievalError names the source that failed
type RetrievalError struct {
	Source string
	Err    error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieving %s: %v", e.Source, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause to errors.Is
func (e *RetrievalError) Unwrap() []error {
	return []error{ErrRetrievalFailed, e.Err}
}
