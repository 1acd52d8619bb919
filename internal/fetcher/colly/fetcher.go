// Package collyfetcher implements the article Fetcher using gocolly.
package collyfetcher

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/JakeFAU/newsverdict/internal/metrics"
	"github.com/JakeFAU/newsverdict/internal/news"
)

const (
	defaultTimeout      = 15 * time.Second
	defaultBaseThrottle = 2 * time.Second
)

// DesktopUserAgents is the pool rotated across requests.
var DesktopUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:127.0) Gecko/20100101 Firefox/127.0",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36 Edg/126.0.0.0",
}

// MobileUserAgent replaces the desktop pool for hosts flagged with ForceMobileAgent.
const MobileUserAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_5 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Mobile/15E148 Safari/604.1"

var browserHeaders = map[string]string{
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.9",
	"Connection":      "keep-alive",
	"Cache-Control":   "max-age=0",
	"DNT":             "1",
}

// Config controls collector behavior.
type Config struct {
	Timeout      time.Duration
	BaseThrottle time.Duration
	UserAgents   []string
}

// Waiter paces requests per host.
type Waiter interface {
	Wait(ctx context.Context, rawURL string) error
}

// Fetcher implements news.Fetcher using the Colly collector.
type Fetcher struct {
	cfg           Config
	baseCollector *colly.Collector
	pauser        news.Pauser
	limiter       Waiter
	pick          func(n int) int
	logger        *zap.Logger
}

var _ news.Fetcher = (*Fetcher)(nil)

// Option customizes a Fetcher.
type Option func(*Fetcher)

// WithPauser overrides the throttle implementation.
func WithPauser(p news.Pauser) Option {
	return func(f *Fetcher) { f.pauser = p }
}

// WithLimiter installs a per-host rate limiter.
func WithLimiter(w Waiter) Option {
	return func(f *Fetcher) { f.limiter = w }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(f *Fetcher) { f.logger = l }
}

// WithTransport replaces the HTTP transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(f *Fetcher) { f.baseCollector.WithTransport(rt) }
}

// New builds a Fetcher.
func New(cfg Config, opts ...Option) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.BaseThrottle <= 0 {
		cfg.BaseThrottle = defaultBaseThrottle
	}
	if len(cfg.UserAgents) == 0 {
		cfg.UserAgents = DesktopUserAgents
	}

	// Retries hit the same URL, and sessions must not leak between requests.
	c := colly.NewCollector(colly.AllowURLRevisit())
	c.ParseHTTPErrorResponse = true
	c.WithTransport(newRetryTransport(newHTTPTransport()))
	c.DisableCookies()
	c.SetRequestTimeout(cfg.Timeout)

	f := &Fetcher{
		cfg:           cfg,
		baseCollector: c,
		pauser:        news.TimerPauser{},
		pick:          randomIndex,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch throttles according to policy and attempt, then issues a single GET.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, policy news.DomainPolicy, attempt int) ([]byte, error) {
	fa := f.newAttempt(policy, attempt)
	if fa.Delay > 0 {
		f.logger.Debug("throttling before fetch",
			zap.String("url", rawURL),
			zap.Int("attempt", attempt),
			zap.Duration("delay", fa.Delay),
		)
		f.pauser.Pause(ctx, fa.Delay)
	}
	if err := ctx.Err(); err != nil {
		return nil, &news.NetworkError{URL: rawURL, Err: err}
	}
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, rawURL); err != nil {
			return nil, &news.NetworkError{URL: rawURL, Err: err}
		}
	}

	start := time.Now()
	result, err := f.visit(ctx, fa, rawURL)
	if err != nil {
		return nil, &news.NetworkError{URL: rawURL, StatusCode: result.statusCode, Err: err}
	}
	metrics.ObserveFetch(rawURL, time.Since(start), len(result.body))

	if result.statusCode < 200 || result.statusCode > 299 {
		return nil, &news.NetworkError{
			URL:        rawURL,
			StatusCode: result.statusCode,
			Err:        fmt.Errorf("unexpected status %q", http.StatusText(result.statusCode)),
		}
	}
	return result.body, nil
}

type fetchResult struct {
	statusCode int
	body       []byte
}

// newAttempt builds the headers and throttle for one try.
func (f *Fetcher) newAttempt(policy news.DomainPolicy, attempt int) news.FetchAttempt {
	ua := f.cfg.UserAgents[f.pick(len(f.cfg.UserAgents))]
	if policy.ForceMobileAgent {
		ua = MobileUserAgent
	}

	headers := make(http.Header, len(browserHeaders)+2)
	for k, v := range browserHeaders {
		headers.Set(k, v)
	}
	headers.Set("User-Agent", ua)
	if policy.Referrer != "" {
		headers.Set("Referer", policy.Referrer)
	}

	var delay time.Duration
	if attempt > 0 || policy.ExtraThrottle > 0 {
		delay = f.cfg.BaseThrottle + policy.ExtraThrottle
	}
	return news.FetchAttempt{UserAgent: ua, Headers: headers, Delay: delay}
}

type collectorHooks interface {
	OnRequest(colly.RequestCallback)
	OnResponse(colly.ResponseCallback)
	OnError(colly.ErrorCallback)
}

func (f *Fetcher) buildCollector(fa news.FetchAttempt, result *fetchResult, fetchErr *error) *colly.Collector {
	collector := f.baseCollector.Clone()
	collector.UserAgent = fa.UserAgent
	configureCollectorHooks(collector, fa, result, fetchErr)
	return collector
}

func configureCollectorHooks(hooks collectorHooks, fa news.FetchAttempt, result *fetchResult, fetchErr *error) {
	hooks.OnRequest(func(r *colly.Request) {
		for key, values := range fa.Headers {
			r.Headers.Del(key)
			for _, v := range values {
				r.Headers.Add(key, v)
			}
		}
	})

	hooks.OnResponse(func(r *colly.Response) {
		*result = fetchResult{
			statusCode: r.StatusCode,
			body:       append([]byte(nil), r.Body...),
		}
	})

	hooks.OnError(func(r *colly.Response, err error) {
		if r != nil {
			result.statusCode = r.StatusCode
		}
		*fetchErr = err
	})
}

type visitOutcome struct {
	result fetchResult
	err    error
}

// visit runs the collector on its own goroutine so ctx cancellation is honored.
func (f *Fetcher) visit(ctx context.Context, fa news.FetchAttempt, rawURL string) (fetchResult, error) {
	done := make(chan visitOutcome, 1)
	go func() {
		var (
			result   fetchResult
			fetchErr error
		)
		collector := f.buildCollector(fa, &result, &fetchErr)
		err := collector.Visit(rawURL)
		switch {
		case err != nil:
			err = fmt.Errorf("colly visit failed: %w", err)
		case fetchErr != nil:
			err = fmt.Errorf("colly response failed: %w", fetchErr)
		}
		done <- visitOutcome{result: result, err: err}
	}()

	select {
	case <-ctx.Done():
		return fetchResult{}, fmt.Errorf("colly fetch canceled: %w", ctx.Err())
	case out := <-done:
		return out.result, out.err
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}

func randomIndex(n int) int {
	if n <= 1 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}
