package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/JakeFAU/newsverdict/internal/config"
	"github.com/JakeFAU/newsverdict/internal/metrics"
	"github.com/JakeFAU/newsverdict/internal/model"
	"github.com/JakeFAU/newsverdict/internal/news"
	"github.com/JakeFAU/newsverdict/internal/policy/blocklist"
	"github.com/JakeFAU/newsverdict/internal/predictor"
	"github.com/JakeFAU/newsverdict/internal/requestid"
)

const (
	// MinTextChars is the shortest text accepted for prediction.
	MinTextChars = 50
	maxBatchSize = 64
	maxBodyBytes = 2 << 20
)

// Predictor scores texts.
type Predictor interface {
	Predict(ctx context.Context, text string) (news.PredictionResult, error)
	PredictMany(ctx context.Context, texts []string) []predictor.BatchResult
}

// ModelStatus reports the classifier lifecycle.
type ModelStatus interface {
	State() model.State
}

// Server wires HTTP handlers to acquisition and prediction.
type Server struct {
	router    chi.Router
	acquirer  news.Acquirer
	predictor Predictor
	model     ModelStatus
	cfg       config.Config
	blocked   *blocklist.List
	logger    *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(
	acquirer news.Acquirer,
	pred Predictor,
	modelStatus ModelStatus,
	cfg config.Config,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		acquirer:  acquirer,
		predictor: pred,
		model:     modelStatus,
		cfg:       cfg,
		blocked:   blocklist.New(cfg.Acquisition.BlockedDomains),
		logger:    logger.Named("api"),
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware(s.logger))
	r.Use(recoverMiddleware(s.logger))
	r.Use(timeoutMiddleware(90 * time.Second))
	if cfg.Auth.Enabled {
		r.Use(apiKeyMiddleware(cfg.Auth.APIKey))
	}

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/predict", s.predict)
		r.Post("/predict/batch", s.predictBatch)
		r.Post("/analyze-url", s.analyzeURL)
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readyz reports the model state. An unloaded model is ready because it loads on first use.
func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	state := s.model.State()
	if state == model.StateFailed {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "model": state.String()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready", "model": state.String()})
}

type predictRequest struct {
	Text string `json:"text"`
}

type batchRequest struct {
	Texts []string `json:"texts"`
}

type analyzeRequest struct {
	URL string `json:"url"`
}

type batchItem struct {
	*Verdict
	Error string `json:"error,omitempty"`
}

func (s *Server) predict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := validateText(req.Text); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := s.predictor.Predict(r.Context(), req.Text)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, NewVerdict(result))
}

func (s *Server) predictBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.Texts) == 0 {
		writeError(w, http.StatusBadRequest, "texts required")
		return
	}
	if len(req.Texts) > maxBatchSize {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("at most %d texts per batch", maxBatchSize))
		return
	}
	for i, text := range req.Texts {
		if err := validateText(text); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("texts[%d]: %v", i, err))
			return
		}
	}

	results := s.predictor.PredictMany(r.Context(), req.Texts)
	items := make([]batchItem, len(results))
	for i, res := range results {
		if res.Err != nil {
			items[i] = batchItem{Error: res.Err.Error()}
			continue
		}
		v := NewVerdict(res.Result)
		items[i] = batchItem{Verdict: &v}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": items})
}

func (s *Server) analyzeURL(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := validateURL(req.URL); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if s.blocked.Blocked(req.URL) {
		writeError(w, http.StatusForbidden, "domain is not allowed")
		return
	}

	article := s.acquirer.Acquire(r.Context(), req.URL)
	result, err := s.predictor.Predict(r.Context(), article.Text)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, NewAnalysis(req.URL, article, result))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}
	return nil
}

func validateText(text string) error {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < MinTextChars {
		return fmt.Errorf("text must be at least %d characters", MinTextChars)
	}
	return nil
}

func validateURL(raw string) error {
	if raw == "" {
		return errors.New("url required")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return errors.New("url must be an absolute http(s) URL")
	}
	return nil
}

func statusFor(err error) int {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := requestid.FromHeader(r.Header.Get(requestid.Header))
		w.Header().Set(requestid.Header, reqID)
		next.ServeHTTP(w, r.WithContext(requestid.WithID(r.Context(), reqID)))
	})
}

// RequestID returns the request ID stored by the middleware, if any.
func RequestID(ctx context.Context) string {
	return requestid.FromContext(ctx)
}

func loggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("request completed",
				zap.String("request_id", RequestID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.status),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

func recoverMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered",
						zap.String("request_id", RequestID(r.Context())),
						zap.Any("panic", rec),
					)
					writeError(w, http.StatusInternalServerError, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func apiKeyMiddleware(expected string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				key = r.URL.Query().Get("api_key")
			}
			if key != expected {
				writeError(w, http.StatusForbidden, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("write JSON failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
