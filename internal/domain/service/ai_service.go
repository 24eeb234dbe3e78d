package service

import (
	"context"
)

// Embedder turns text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ReadinessChecker is implemented by collaborators with an async warm-up.
type ReadinessChecker interface {
	IsReady() bool
}

// TextGenerator answers a prompt with a short string. It is allowed to be
// slow or wrong; callers always keep a fallback.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, maxOutputTokens int) (string, error)
}
