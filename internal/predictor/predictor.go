// Package predictor turns article text into an authenticity verdict.
package predictor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JakeFAU/newsverdict/internal/metrics"
	"github.com/JakeFAU/newsverdict/internal/news"
	"github.com/JakeFAU/newsverdict/internal/workerpool"
)

// ClassifierSource yields the shared classifier, loading it when needed.
type ClassifierSource interface {
	EnsureLoaded(ctx context.Context) (news.Classifier, error)
}

// Predictor scores text with the shared classifier.
type Predictor struct {
	source ClassifierSource
	pool   *workerpool.Pool
	logger *zap.Logger
}

// New returns a Predictor. Inference runs on pool.
func New(source ClassifierSource, pool *workerpool.Pool, logger *zap.Logger) *Predictor {
	if pool == nil {
		pool = workerpool.New(0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Predictor{source: source, pool: pool, logger: logger}
}

// Predict classifies one text. Every failure is a *news.PredictionError.
func (p *Predictor) Predict(ctx context.Context, text string) (news.PredictionResult, error) {
	result, err := p.predict(ctx, text)
	if err != nil {
		metrics.ObservePrediction("error")
		p.logger.Warn("prediction failed", zap.Error(err))
		return news.PredictionResult{}, &news.PredictionError{Err: err}
	}
	metrics.ObservePrediction(string(result.Label))
	return result, nil
}

func (p *Predictor) predict(ctx context.Context, text string) (news.PredictionResult, error) {
	classifier, err := p.source.EnsureLoaded(ctx)
	if err != nil {
		return news.PredictionResult{}, err
	}

	start := time.Now()
	proba, err := workerpool.Submit(ctx, p.pool, func() (proba [2]float64, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("inference panicked: %v", r)
			}
		}()
		return classifier.PredictProba(text)
	})
	metrics.ObserveInference(time.Since(start))
	if err != nil {
		return news.PredictionResult{}, err
	}
	return newResult(proba)
}

// newResult scales [fake, real] probabilities to percentages and derives the verdict
// from the rounded values.
func newResult(proba [2]float64) (news.PredictionResult, error) {
	if math.IsNaN(proba[0]) || math.IsNaN(proba[1]) {
		return news.PredictionResult{}, errors.New("classifier returned NaN probability")
	}
	fakePct := percent(proba[0])
	realPct := percent(proba[1])

	label := news.LabelReal
	if fakePct > realPct {
		label = news.LabelFake
	}
	return news.PredictionResult{
		Label:           label,
		ConfidenceScore: math.Max(fakePct, realPct),
		FakeProbability: fakePct,
		RealProbability: realPct,
	}, nil
}

func percent(p float64) float64 {
	v := math.Min(math.Max(p*100, 0), 100)
	return math.Round(v*100) / 100
}

// BatchResult is one slot of a batch prediction.
type BatchResult struct {
	Result news.PredictionResult
	Err    error
}

// PredictMany classifies texts concurrently. The output has the same length
// and order as texts, and one failing text does not affect the others.
func (p *Predictor) PredictMany(ctx context.Context, texts []string) []BatchResult {
	results := make([]BatchResult, len(texts))
	var g errgroup.Group
	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			res, err := p.Predict(ctx, text)
			results[i] = BatchResult{Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}
