package usecase

import (
	"context"
	"sync/atomic"
	"time"

	"civiq/internal/domain/service"
	"civiq/pkg/errors"
	"civiq/pkg/logger"
)

const warmupText = "pothole on the main road"

// ReadyEmbedder owns the readiness of the embedding function. Until the
// warm-up call has succeeded, Embed fails fast with a NOT_READY error.
type ReadyEmbedder struct {
	embedder service.Embedder
	ready    atomic.Bool
	log      logger.Logger
}

func NewReadyEmbedder(embedder service.Embedder, log logger.Logger) *ReadyEmbedder {
	return &ReadyEmbedder{embedder: embedder, log: log}
}

func (g *ReadyEmbedder) IsReady() bool {
	return g.ready.Load()
}

// MarkReady skips the warm-up.
func (g *ReadyEmbedder) MarkReady() {
	g.ready.Store(true)
}

// Warmup retries a probe embedding every retryEvery until it succeeds or ctx ends.
func (g *ReadyEmbedder) Warmup(ctx context.Context, retryEvery time.Duration) {
	start := time.Now()
	for attempt := 1; ; attempt++ {
		_, err := g.embedder.Embed(ctx, warmupText)
		if err == nil {
			g.ready.Store(true)
			g.log.Info("embedding function ready", "attempts", attempt, "elapsed", time.Since(start).String())
			return
		}
		g.log.Warn("embedding warm-up failed", "attempt", attempt, "error", err)

		select {
		case <-ctx.Done():
			return
		case <-time.After(retryEvery):
		}
	}
}

func (g *ReadyEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if !g.IsReady() {
		return nil, errors.NotReady("Duplicate detection is starting up, please retry shortly")
	}
	vector, err := g.embedder.Embed(ctx, text)
	if err != nil {
		return nil, errors.Dependency("Failed to compute text embedding", err)
	}
	return vector, nil
}
