// Package acquisition turns a URL into article text with retries and a fallback.
package acquisition

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/JakeFAU/newsverdict/internal/metrics"
	"github.com/JakeFAU/newsverdict/internal/news"
	"github.com/JakeFAU/newsverdict/internal/policy/domain"
	"github.com/JakeFAU/newsverdict/internal/requestid"
)

const defaultMaxAttempts = 3

// Attempt outcomes reported to metrics.
const (
	outcomeSuccess         = "success"
	outcomeNetworkError    = "network_error"
	outcomeExtractionError = "extraction_error"
	outcomeOtherError      = "error"
	outcomePanic           = "panic"
)

// Config controls the retry loop.
type Config struct {
	MaxAttempts int
}

// Orchestrator implements news.Acquirer.
type Orchestrator struct {
	resolver  news.PolicyResolver
	fetcher   news.Fetcher
	extractor news.Extractor
	fallback  news.FallbackProvider
	cfg       Config
	logger    *zap.Logger
}

var _ news.Acquirer = (*Orchestrator)(nil)

// New wires an Orchestrator.
func New(
	resolver news.PolicyResolver,
	fetcher news.Fetcher,
	extractor news.Extractor,
	fallback news.FallbackProvider,
	cfg Config,
	logger *zap.Logger,
) *Orchestrator {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		resolver:  resolver,
		fetcher:   fetcher,
		extractor: extractor,
		fallback:  fallback,
		cfg:       cfg,
		logger:    logger,
	}
}

type outcome struct {
	result news.ExtractionResult
	err    error
	label  string
}

func (o outcome) succeeded() bool { return o.err == nil }

// Acquire tries the URL up to MaxAttempts times and otherwise returns fallback content.
func (o *Orchestrator) Acquire(ctx context.Context, rawURL string) news.ExtractionResult {
	policy := o.resolver.Resolve(rawURL)
	site := metrics.SanitizeSite(rawURL)
	logger := o.logger.With(zap.String("url", rawURL))
	if id := requestid.FromContext(ctx); id != "" {
		logger = logger.With(zap.String("request_id", id))
	}

	for attempt := 0; attempt < o.cfg.MaxAttempts; attempt++ {
		out := o.try(ctx, rawURL, policy, attempt)
		metrics.ObserveAcquisitionAttempt(site, out.label)
		if out.succeeded() {
			out.result.SourceDomain = domain.Host(rawURL)
			out.result.IsFallback = false
			out.result.OriginalURL = ""
			logger.Info("article acquired",
				zap.Int("attempt", attempt+1),
				zap.Int("chars", utf8.RuneCountInString(out.result.Text)),
			)
			return out.result
		}
		logger.Warn("acquisition attempt failed",
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", o.cfg.MaxAttempts),
			zap.String("outcome", out.label),
			zap.Error(out.err),
		)
	}

	metrics.ObserveFallback(site)
	result := o.fallback.Provide()
	logger.Warn("serving fallback content", zap.String("original_url", result.OriginalURL))
	return result
}

// try runs one fetch and extract. A panic is reported as a retryable failure.
func (o *Orchestrator) try(ctx context.Context, rawURL string, policy news.DomainPolicy, attempt int) (out outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = outcome{err: fmt.Errorf("acquisition panicked: %v", r), label: outcomePanic}
		}
	}()

	body, err := o.fetcher.Fetch(ctx, rawURL, policy, attempt)
	if err != nil {
		return outcome{err: err, label: classify(err)}
	}
	result, err := o.extractor.Extract(body)
	if err != nil {
		return outcome{err: err, label: classify(err)}
	}
	if result.Text == "" {
		return outcome{err: &news.ExtractionError{Reason: "empty text"}, label: outcomeExtractionError}
	}
	return outcome{result: result, label: outcomeSuccess}
}

func classify(err error) string {
	switch {
	case errors.Is(err, news.ErrNetwork):
		return outcomeNetworkError
	case errors.Is(err, news.ErrExtraction):
		return outcomeExtractionError
	default:
		return outcomeOtherError
	}
}
