package entity

import (
	"errors"
	"strings"
)

// Intent is a conversational category known to the NLU agent
type Intent struct {
	Name            string   `json:"name"`
	DisplayName     string   `json:"displayName"`
	TrainingPhrases []string `json:"trainingPhrases"`
	Messages        []string `json:"messages"`
}

// Summary is the read-only projection used by analytics
type Summary struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

// Summary projects the intent to its name and display name
func (i Intent) Summary() Summary {
	return Summary{Name: i.Name, DisplayName: i.DisplayName}
}

// ID returns the trailing segment of the fully-qualified intent name
func (i Intent) ID() string {
	return ShortName(i.Name)
}

// ShortName returns the last "/"-separated segment of a fully-qualified name
func ShortName(name string) string {
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		return name[idx+1:]
	}
	return name
}

var (
	ErrIntentNotFound  = errors.New("intent not found")
	ErrInvalidIntentID = errors.New("invalid intent id")
	ErrCatalogFailed   = errors.New("intent catalog unavailable")
)
