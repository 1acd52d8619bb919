// Package api hosts the HTTP server, middleware, and REST handlers. Notable routes:
//   - GET /healthz / readyz for Kubernetes probes; readyz reports the model state.
//   - GET /metrics for Prometheus scraping.
//   - POST /v1/predict and /v1/predict/batch to score raw text.
//   - POST /v1/analyze-url to acquire an article and score it.
package api
