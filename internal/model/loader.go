// Package model loads the classifier artifact exactly once and exposes it to predictors.
package model

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/JakeFAU/newsverdict/internal/metrics"
	"github.com/JakeFAU/newsverdict/internal/news"
	"github.com/JakeFAU/newsverdict/internal/workerpool"
)

// LoadFunc deserializes the classifier stored at path.
type LoadFunc func(path string) (news.Classifier, error)

type handle struct {
	classifier news.Classifier
}

// Loader owns the single classifier handle shared by all predictions.
type Loader struct {
	path   string
	load   LoadFunc
	pool   *workerpool.Pool
	lock   *semaphore.Weighted
	ready  atomic.Pointer[handle]
	state  atomic.Int32
	logger *zap.Logger
}

// Option customizes a Loader.
type Option func(*Loader)

// WithLoadFunc replaces the artifact decoder.
func WithLoadFunc(fn LoadFunc) Option {
	return func(l *Loader) { l.load = fn }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// NewLoader returns a Loader for the artifact at path. Deserialization runs on pool.
func NewLoader(path string, pool *workerpool.Pool, opts ...Option) *Loader {
	l := &Loader{
		path:   path,
		load:   LoadFile,
		pool:   pool,
		lock:   semaphore.NewWeighted(1),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.pool == nil {
		l.pool = workerpool.New(0)
	}
	return l
}

// Path returns the artifact location.
func (l *Loader) Path() string { return l.path }

// State reports the current lifecycle state.
func (l *Loader) State() State { return State(l.state.Load()) }

// EnsureLoaded returns the classifier, loading it on first use.
// Concurrent callers share one load; a failed load is attempted again by the next call.
func (l *Loader) EnsureLoaded(ctx context.Context) (news.Classifier, error) {
	if h := l.ready.Load(); h != nil {
		return h.classifier, nil
	}

	if err := l.lock.Acquire(ctx, 1); err != nil {
		return nil, &news.ModelLoadError{Path: l.path, Err: err}
	}
	defer l.lock.Release(1)

	if h := l.ready.Load(); h != nil {
		return h.classifier, nil
	}

	l.state.Store(int32(StateLoading))
	start := time.Now()
	classifier, err := workerpool.Submit(ctx, l.pool, l.safeLoad)
	if err == nil && classifier == nil {
		err = errors.New("decoder returned no classifier")
	}
	if err != nil {
		l.state.Store(int32(StateFailed))
		metrics.ObserveModelLoad("error", time.Since(start))
		l.logger.Error("model load failed", zap.String("path", l.path), zap.Error(err))
		return nil, &news.ModelLoadError{Path: l.path, Err: err}
	}

	l.ready.Store(&handle{classifier: classifier})
	l.state.Store(int32(StateReady))
	metrics.ObserveModelLoad("success", time.Since(start))
	l.logger.Info("model loaded", zap.String("path", l.path), zap.Duration("duration", time.Since(start)))
	return classifier, nil
}

func (l *Loader) safeLoad() (classifier news.Classifier, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("model decoder panicked: %v", r)
		}
	}()
	return l.load(l.path)
}
