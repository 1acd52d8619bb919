// Package cmd hosts the newsverdict command line.
//
// Architecture overview:
//   - HTTP API: internal/api.Server exposes health, metrics, and prediction endpoints. Requests are validated
//     (minimum text length, absolute http(s) URLs, batch size) before any model work happens.
//   - Acquisition: internal/acquisition drives up to N attempts per URL. Each attempt resolves the domain policy,
//     waits on the per-host rate limiter, fetches with the Colly fetcher (rotating user agents, jittered pauses),
//     and extracts text with goquery. When every attempt fails, a canned fallback article is returned instead.
//   - Prediction: internal/model lazily loads the TF-IDF logistic regression artifact exactly once; concurrent
//     callers wait on the same load. Inference runs inside a bounded worker pool so the HTTP goroutines never
//     block on CPU-bound scoring beyond the pool size.
//   - Configuration & plumbing: Viper populates config from env/files; zap provides structured logging with
//     optional lumberjack file rotation; Prometheus metrics are exported via the metrics middleware and /metrics.
//
// Operational notes:
//   - A missing or corrupt model does not stop the server. /readyz reports 503 once a load has failed, and the
//     next prediction retries the load.
//   - Acquisition never returns an error to the caller; the is_fallback flag marks substituted content.
//
// Quick checklist:
//   - Configure env vars: NEWSVERDICT_SERVER_PORT or PORT, NEWSVERDICT_MODEL_PATH, NEWSVERDICT_MODEL_WORKERS,
//     NEWSVERDICT_AUTH_API_KEY, NEWSVERDICT_ACQUISITION_MAX_ATTEMPTS, NEWSVERDICT_FALLBACK_POOL_FILE.
//   - Run the service: go run . serve --config config.yaml
//   - Score one article: go run . analyze https://example.com/story
package cmd
