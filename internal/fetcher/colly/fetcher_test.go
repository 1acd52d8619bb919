package collyfetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/newsverdict/internal/news"
)

type recordingPauser struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (p *recordingPauser) Pause(_ context.Context, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.delays = append(p.delays, d)
}

func (p *recordingPauser) recorded() []time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]time.Duration(nil), p.delays...)
}

type errWaiter struct{ err error }

func (w errWaiter) Wait(context.Context, string) error { return w.err }

func TestNewAttemptThrottle(t *testing.T) {
	t.Parallel()

	f := New(Config{BaseThrottle: 2 * time.Second})
	tests := []struct {
		name    string
		policy  news.DomainPolicy
		attempt int
		want    time.Duration
	}{
		{"first try default host", news.DomainPolicy{}, 0, 0},
		{"retry default host", news.DomainPolicy{}, 1, 2 * time.Second},
		{"first try difficult host", news.DomainPolicy{ExtraThrottle: 3 * time.Second}, 0, 5 * time.Second},
		{"retry difficult host", news.DomainPolicy{ExtraThrottle: time.Second}, 2, 3 * time.Second},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, f.newAttempt(tt.policy, tt.attempt).Delay, tt.name)
	}
}

func TestNewAttemptHeaders(t *testing.T) {
	t.Parallel()

	f := New(Config{UserAgents: []string{"ua-0", "ua-1", "ua-2"}})
	f.pick = func(int) int { return 2 }

	fa := f.newAttempt(news.DomainPolicy{}, 0)
	require.Equal(t, "ua-2", fa.UserAgent)
	require.Equal(t, "ua-2", fa.Headers.Get("User-Agent"))
	require.Equal(t, "1", fa.Headers.Get("DNT"))
	require.NotEmpty(t, fa.Headers.Get("Accept"))
	require.NotEmpty(t, fa.Headers.Get("Accept-Language"))
	require.NotEmpty(t, fa.Headers.Get("Cache-Control"))
	require.Empty(t, fa.Headers.Get("Referer"))

	fa = f.newAttempt(news.DomainPolicy{ForceMobileAgent: true, Referrer: "https://www.google.com/"}, 0)
	require.Equal(t, MobileUserAgent, fa.UserAgent)
	require.Equal(t, "https://www.google.com/", fa.Headers.Get("Referer"))
}

func TestRandomIndexInRange(t *testing.T) {
	t.Parallel()

	require.Zero(t, randomIndex(0))
	require.Zero(t, randomIndex(1))
	for i := 0; i < 100; i++ {
		n := randomIndex(5)
		require.GreaterOrEqual(t, n, 0)
		require.Less(t, n, 5)
	}
}

func TestFetchSendsBrowserHeaders(t *testing.T) {
	t.Parallel()

	var (
		mu      sync.Mutex
		headers http.Header
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		headers = r.Header.Clone()
		mu.Unlock()
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	pauser := &recordingPauser{}
	f := New(Config{}, WithPauser(pauser))
	body, err := f.Fetch(context.Background(), srv.URL+"/story", news.DomainPolicy{Referrer: "https://news.google.com/"}, 0)
	require.NoError(t, err)
	require.Contains(t, string(body), "ok")
	require.Empty(t, pauser.recorded())

	mu.Lock()
	defer mu.Unlock()
	require.Contains(t, DesktopUserAgents, headers.Get("User-Agent"))
	require.Equal(t, "https://news.google.com/", headers.Get("Referer"))
	require.Equal(t, "1", headers.Get("Dnt"))
}

func TestFetchRetryAttemptIsThrottled(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("fine"))
	}))
	defer srv.Close()

	pauser := &recordingPauser{}
	f := New(Config{BaseThrottle: 2 * time.Second}, WithPauser(pauser))

	// The same URL is fetched twice, as the orchestrator does on retry.
	_, err := f.Fetch(context.Background(), srv.URL, news.DomainPolicy{}, 0)
	require.NoError(t, err)
	_, err = f.Fetch(context.Background(), srv.URL, news.DomainPolicy{ExtraThrottle: time.Second}, 1)
	require.NoError(t, err)
	require.Equal(t, []time.Duration{3 * time.Second}, pauser.recorded())
}

func TestFetchNon2xxIsNetworkError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	f := New(Config{}, WithPauser(&recordingPauser{}))
	_, err := f.Fetch(context.Background(), srv.URL, news.DomainPolicy{}, 0)
	require.ErrorIs(t, err, news.ErrNetwork)

	var netErr *news.NetworkError
	require.True(t, errors.As(err, &netErr))
	require.Equal(t, http.StatusForbidden, netErr.StatusCode)
}

func TestFetchUnreachableHost(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	f := New(Config{Timeout: time.Second}, WithPauser(&recordingPauser{}))
	_, err := f.Fetch(context.Background(), addr, news.DomainPolicy{}, 0)
	require.ErrorIs(t, err, news.ErrNetwork)
}

func TestFetchDoesNotPersistCookies(t *testing.T) {
	t.Parallel()

	var (
		mu      sync.Mutex
		cookies []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		cookies = append(cookies, r.Header.Get("Cookie"))
		mu.Unlock()
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc", Path: "/"})
		_, _ = w.Write([]byte("hi"))
	}))
	defer srv.Close()

	f := New(Config{}, WithPauser(&recordingPauser{}))
	for i := 0; i < 2; i++ {
		_, err := f.Fetch(context.Background(), srv.URL, news.DomainPolicy{}, 0)
		require.NoError(t, err)
	}

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"", ""}, cookies)
}

func TestFetchLimiterErrorIsNetworkError(t *testing.T) {
	t.Parallel()

	f := New(Config{}, WithPauser(&recordingPauser{}), WithLimiter(errWaiter{err: errors.New("limited")}))
	_, err := f.Fetch(context.Background(), "https://example.com", news.DomainPolicy{}, 0)
	require.ErrorIs(t, err, news.ErrNetwork)
	require.Contains(t, err.Error(), "limited")
}

func TestFetchCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := New(Config{}, WithPauser(&recordingPauser{}))
	_, err := f.Fetch(ctx, "https://example.com", news.DomainPolicy{}, 1)
	require.ErrorIs(t, err, news.ErrNetwork)
	require.ErrorIs(t, err, context.Canceled)
}

func TestConfigureCollectorHooks(t *testing.T) {
	t.Parallel()

	fa := news.FetchAttempt{Headers: http.Header{"X-Trace": {"yes"}, "User-Agent": {"agent"}}}
	var (
		result   fetchResult
		fetchErr error
	)
	hooks := &stubHooks{}
	configureCollectorHooks(hooks, fa, &result, &fetchErr)
	require.NotNil(t, hooks.onRequest)
	require.NotNil(t, hooks.onResponse)
	require.NotNil(t, hooks.onError)

	collyReq := &colly.Request{Headers: &http.Header{"User-Agent": {"colly"}}}
	hooks.onRequest(collyReq)
	require.Equal(t, "yes", collyReq.Headers.Get("X-Trace"))
	require.Equal(t, []string{"agent"}, (*collyReq.Headers)["User-Agent"])

	hooks.onResponse(&colly.Response{StatusCode: http.StatusCreated, Body: []byte("body")})
	require.Equal(t, http.StatusCreated, result.statusCode)
	require.Equal(t, "body", string(result.body))

	hooks.onError(&colly.Response{StatusCode: http.StatusBadGateway}, errors.New("boom"))
	require.EqualError(t, fetchErr, "boom")
	require.Equal(t, http.StatusBadGateway, result.statusCode)
}

type stubHooks struct {
	onRequest  colly.RequestCallback
	onResponse colly.ResponseCallback
	onError    colly.ErrorCallback
}

func (s *stubHooks) OnRequest(cb colly.RequestCallback) {
	s.onRequest = cb
}

func (s *stubHooks) OnResponse(cb colly.ResponseCallback) {
	s.onResponse = cb
}

func (s *stubHooks) OnError(cb colly.ErrorCallback) {
	s.onError = cb
}
