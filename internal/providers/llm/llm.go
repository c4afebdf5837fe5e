package llm

import "context"

type Provider interface {
	// GenerateText returns the full model response for one prompt.
	GenerateText(ctx context.Context, prompt string) (string, error)
	Close() error
}
