// Package insight produces optional natural-language commentary on ledger
// results. Commentary is cosmetic: callers always get an Analysis back, never
// an error.
package insight

import "context"

// Prompt is one generation request.
type Prompt struct {
	Input      string
	SystemRole string
	MaxTokens  int
}

// Generator turns a prompt into text.
type Generator interface {
	Generate(ctx context.Context, p Prompt) (string, error)
}

type Status string

const (
	StatusDisabled  Status = "disabled"
	StatusFailed    Status = "failed"
	StatusSucceeded Status = "succeeded"
)

// Analysis is the outcome of a generation attempt. Text is set only when
// Status is StatusSucceeded.
type Analysis struct {
	Status Status  `json:"status"`
	Text   *string `json:"text"`
}

func disabled() Analysis { return Analysis{Status: StatusDisabled} }
func failed() Analysis   { return Analysis{Status: StatusFailed} }

func succeeded(text string) Analysis {
	return Analysis{Status: StatusSucceeded, Text: &text}
}
