package news

import (
	"context"
	"time"
)

// PolicyResolver maps a URL to its fetch policy.
type PolicyResolver interface {
	Resolve(rawURL string) DomainPolicy
}

// Fetcher retrieves raw HTML for a URL. Retries are the caller's concern.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, policy DomainPolicy, attempt int) ([]byte, error)
}

// Extractor recovers article text and metadata from an HTML document.
type Extractor interface {
	Extract(html []byte) (ExtractionResult, error)
}

// FallbackProvider supplies substitute content when acquisition fails.
type FallbackProvider interface {
	Provide() ExtractionResult
}

// Acquirer turns a URL into article text. It never fails.
type Acquirer interface {
	Acquire(ctx context.Context, rawURL string) ExtractionResult
}

// Classifier returns the [fake, real] probability pair for a text.
type Classifier interface {
	PredictProba(text string) ([2]float64, error)
}

// Pauser blocks for a delay or until ctx is done.
type Pauser interface {
	Pause(ctx context.Context, delay time.Duration)
}

// TimerPauser implements Pauser with a timer.
type TimerPauser struct{}

// Pause waits for delay unless ctx finishes first.
func (TimerPauser) Pause(ctx context.Context, delay time.Duration) {
	if delay <= 0 {
		return
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
