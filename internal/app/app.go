// Package app initializes and holds long-lived application services, acting as a dependency injection container.
package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/JakeFAU/newsverdict/internal/acquisition"
	"github.com/JakeFAU/newsverdict/internal/config"
	"github.com/JakeFAU/newsverdict/internal/extractor"
	"github.com/JakeFAU/newsverdict/internal/fallback"
	collyfetcher "github.com/JakeFAU/newsverdict/internal/fetcher/colly"
	"github.com/JakeFAU/newsverdict/internal/logging"
	"github.com/JakeFAU/newsverdict/internal/model"
	"github.com/JakeFAU/newsverdict/internal/policy/domain"
	"github.com/JakeFAU/newsverdict/internal/policy/ratelimit"
	"github.com/JakeFAU/newsverdict/internal/predictor"
	"github.com/JakeFAU/newsverdict/internal/workerpool"
)

// App holds the shared services built once at startup.
type App struct {
	cfg       config.Config
	logger    *zap.Logger
	loader    *model.Loader
	predictor *predictor.Predictor
	acquirer  *acquisition.Orchestrator
}

// Config returns the loaded configuration.
func (a *App) Config() config.Config { return a.cfg }

// Logger returns the root logger.
func (a *App) Logger() *zap.Logger { return a.logger }

// Loader returns the classifier loader.
func (a *App) Loader() *model.Loader { return a.loader }

// Predictor returns the shared predictor.
func (a *App) Predictor() *predictor.Predictor { return a.predictor }

// Acquirer returns the acquisition orchestrator.
func (a *App) Acquirer() *acquisition.Orchestrator { return a.acquirer }

// New wires every service from cfg. The model is not loaded until first use.
func New(cfg config.Config) (*App, error) {
	logger, err := logging.NewWithFile(cfg.Logging.Development, logging.FileConfig{
		Path:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return NewWithLogger(cfg, logger)
}

// NewWithLogger wires every service from cfg using logger.
func NewWithLogger(cfg config.Config, logger *zap.Logger) (*App, error) {
	var pool []fallback.Article
	if cfg.Fallback.PoolFile != "" {
		loaded, err := fallback.LoadPool(cfg.Fallback.PoolFile)
		if err != nil {
			return nil, err
		}
		pool = loaded
	}
	provider, err := fallback.New(pool)
	if err != nil {
		return nil, fmt.Errorf("init fallback provider: %w", err)
	}

	fetcher := collyfetcher.New(
		collyfetcher.Config{
			Timeout:      cfg.RequestTimeout(),
			BaseThrottle: cfg.BaseThrottle(),
		},
		collyfetcher.WithLimiter(ratelimit.New(ratelimit.Config{
			DefaultRPS:   cfg.Acquisition.RateLimitRPS,
			DefaultBurst: cfg.Acquisition.RateLimitBurst,
		})),
		collyfetcher.WithLogger(logger.Named("fetcher")),
	)
	acquirer := acquisition.New(
		domain.NewResolver(cfg.Policies()),
		fetcher,
		extractor.New(extractor.Config{
			MinTextChars:      cfg.Acquisition.MinTextChars,
			MinParagraphChars: cfg.Acquisition.MinParagraphChars,
		}, logger.Named("extractor")),
		provider,
		acquisition.Config{MaxAttempts: cfg.Acquisition.MaxAttempts},
		logger.Named("acquisition"),
	)

	workers := workerpool.New(cfg.Model.Workers)
	loader := model.NewLoader(cfg.Model.Path, workers, model.WithLogger(logger.Named("model")))

	logger.Info("application services initialized",
		zap.String("model_path", cfg.Model.Path),
		zap.Int("workers", workers.Size()),
		zap.Int("fallback_articles", provider.Size()),
		zap.Int("domain_policies", len(cfg.Acquisition.DomainPolicies)),
	)

	return &App{
		cfg:       cfg,
		logger:    logger,
		loader:    loader,
		predictor: predictor.New(loader, workers, logger.Named("predictor")),
		acquirer:  acquirer,
	}, nil
}

// Close flushes the logger.
func (a *App) Close() {
	// Sync fails on some terminals; nothing else to do about it.
	_ = a.logger.Sync()
}
