package ports

import (
	"context"
	"encoding/json"
)

// CompletionModel is a single-prompt text generator backed by an LLM.
type CompletionModel interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ResumeParser extracts structured candidate data from a resume document.
type ResumeParser interface {
	Parse(ctx context.Context, document string) (json.RawMessage, error)
}
