package llm

import (
	"context"
	"errors"
	"time"

	"github.com/spherical/text-extractor/internal/cache"
	"github.com/spherical/text-extractor/internal/domain"
	"github.com/spherical/text-extractor/internal/observability"
)

// CachedGenerator answers repeated Generate requests from a cache. Search
// grounded requests always reach the provider since their answers depend on
// the live web. Only successful responses are stored, and a failing cache
// never fails a request.
type CachedGenerator struct {
	next      domain.ContentGenerator
	cache     cache.Client
	ttl       time.Duration
	namespace string
	logger    *observability.Logger
}

// NewCachedGenerator wraps next. namespace separates entries produced by
// different models.
func NewCachedGenerator(next domain.ContentGenerator, c cache.Client, ttl time.Duration, namespace string, logger *observability.Logger) *CachedGenerator {
	return &CachedGenerator{
		next:      next,
		cache:     c,
		ttl:       ttl,
		namespace: namespace,
		logger:    logger.WithComponent("llm_cache"),
	}
}

// Generate returns a cached answer for an identical request or calls through.
func (g *CachedGenerator) Generate(ctx context.Context, req domain.ExtractionRequest) (string, error) {
	key := g.key(req)

	cached, err := g.cache.Get(ctx, key)
	switch {
	case err == nil:
		g.logger.Debug().Str("key", key[:12]).Msg("Cache hit")
		return string(cached), nil
	case !errors.Is(err, cache.ErrCacheMiss):
		g.logger.Warn().Err(err).Msg("Cache read failed")
	}

	text, err := g.next.Generate(ctx, req)
	if err != nil {
		return "", err
	}

	if err := g.cache.Set(ctx, key, []byte(text), g.ttl); err != nil {
		g.logger.Warn().Err(err).Msg("Cache write failed")
	}
	return text, nil
}

// GenerateWithSearch always calls through.
func (g *CachedGenerator) GenerateWithSearch(ctx context.Context, req domain.ExtractionRequest) (*domain.GroundedResponse, error) {
	return g.next.GenerateWithSearch(ctx, req)
}

func (g *CachedGenerator) key(req domain.ExtractionRequest) string {
	parts := make([]string, 0, 3+2*len(req.Images))
	parts = append(parts, g.namespace, req.SystemInstruction, req.Prompt)
	for _, img := range req.Images {
		parts = append(parts, img.MimeType, img.Data)
	}
	return cache.Key(parts...)
}
