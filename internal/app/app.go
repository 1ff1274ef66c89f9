// Package app wires configuration into the extraction components.
package app

import (
	"context"
	"fmt"

	"github.com/spherical/text-extractor/internal/cache"
	"github.com/spherical/text-extractor/internal/config"
	"github.com/spherical/text-extractor/internal/domain"
	"github.com/spherical/text-extractor/internal/extract"
	"github.com/spherical/text-extractor/internal/intake"
	"github.com/spherical/text-extractor/internal/llm"
	"github.com/spherical/text-extractor/internal/mode"
	"github.com/spherical/text-extractor/internal/observability"
	"github.com/spherical/text-extractor/internal/pdf"
	"github.com/spherical/text-extractor/internal/render"
)

// App holds the process-wide components. The rasterizer, and with it the PDF
// engine latch, is shared by every hub created from the same App.
type App struct {
	Config        *config.Config
	Logger        *observability.Logger
	Messages      *domain.Messages
	Registry      *mode.Registry
	Validator     *intake.Validator
	Images        *intake.ImageEncoder
	Rasterizer    *pdf.Rasterizer
	Orchestrator  *extract.Orchestrator
	ConfigMissing bool

	cache cache.Client
}

// Options overrides collaborators, mainly for tests.
type Options struct {
	Generator domain.ContentGenerator
	Engine    domain.PDFEngine
}

// New builds the application from cfg. A missing API key is not an error: the
// App starts with ConfigMissing raised and generation operations refuse to run.
func New(cfg *config.Config, logger *observability.Logger, opts Options) (*App, error) {
	msgs := domain.NewMessages(cfg.Locale)

	engine := opts.Engine
	if engine == nil {
		engine = pdf.NewFitzEngine()
	}

	generator := opts.Generator
	configMissing := false
	if generator == nil {
		if cfg.LLM.Configured() {
			client, err := llm.NewClient(llm.Config{
				APIKey:  cfg.LLM.APIKey,
				Model:   cfg.LLM.Model,
				BaseURL: cfg.LLM.BaseURL,
				Timeout: cfg.LLM.Timeout,
			}, logger)
			if err != nil {
				return nil, err
			}
			generator = client
		} else {
			logger.Warn().Msg("API key not configured; extraction is disabled")
			configMissing = true
			generator = unconfigured{msgs: msgs}
		}
	}

	var store cache.Client
	if !configMissing && cfg.Cache.Backend != config.CacheNone {
		var err error
		store, err = newCache(cfg.Cache)
		if err != nil {
			return nil, err
		}
		generator = llm.NewCachedGenerator(generator, store, cfg.Cache.TTL, cfg.LLM.Model, logger)
		logger.Info().Str("backend", cfg.Cache.Backend).Dur("ttl", cfg.Cache.TTL).Msg("Response cache enabled")
	}

	rasterizer := pdf.NewRasterizer(engine, msgs, logger, pdf.Options{
		Scale:       cfg.Raster.Scale,
		JPEGQuality: cfg.Raster.JPEGQuality,
	})

	return &App{
		Config:        cfg,
		Logger:        logger,
		Messages:      msgs,
		Registry:      mode.NewRegistry(msgs),
		Validator:     intake.NewValidator(msgs),
		Images:        intake.NewImageEncoder(msgs),
		Rasterizer:    rasterizer,
		Orchestrator:  extract.NewOrchestrator(generator, render.NewDefault(logger), msgs, logger),
		ConfigMissing: configMissing,
		cache:         store,
	}, nil
}

// Close releases the response cache, if any.
func (a *App) Close() error {
	if a.cache == nil {
		return nil
	}
	return a.cache.Close()
}

func newCache(cfg config.CacheConfig) (cache.Client, error) {
	switch cfg.Backend {
	case config.CacheMemory:
		return cache.NewMemoryClient(cfg.MaxEntries), nil
	case config.CacheRedis:
		client, err := cache.NewRedisClient(context.Background(), cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("connect response cache: %w", err)
		}
		return client, nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
}

// NewHub creates an extraction hub in the given mode. events may be nil.
func (a *App) NewHub(initial domain.ExtractionMode, events chan<- domain.StreamEvent) *extract.Hub {
	return extract.NewHub(extract.Deps{
		Registry:      a.Registry,
		Validator:     a.Validator,
		Images:        a.Images,
		Rasterizer:    a.Rasterizer,
		Orchestrator:  a.Orchestrator,
		Messages:      a.Messages,
		Logger:        a.Logger,
		ConfigMissing: a.ConfigMissing,
		Events:        events,
	}, initial)
}

// NewResearchDesk creates a research desk.
func (a *App) NewResearchDesk() *extract.ResearchDesk {
	return extract.NewResearchDesk(a.Orchestrator, a.Messages, a.Logger, a.ConfigMissing)
}

// NewAssistant creates an assistant of the given kind.
func (a *App) NewAssistant(kind mode.AssistantKind) *extract.Assistant {
	return extract.NewAssistant(kind, a.Orchestrator, a.Messages, a.Logger, a.ConfigMissing)
}

// unconfigured stands in for the generator when no API key is set.
type unconfigured struct {
	msgs *domain.Messages
}

func (u unconfigured) Generate(context.Context, domain.ExtractionRequest) (string, error) {
	return "", domain.ConfigError(u.msgs.Get(domain.MsgConfigMissing), nil)
}

func (u unconfigured) GenerateWithSearch(context.Context, domain.ExtractionRequest) (*domain.GroundedResponse, error) {
	return nil, domain.ConfigError(u.msgs.Get(domain.MsgConfigMissing), nil)
}
