package news

import (
	"errors"
	"fmt"
)

// Sentinels matched through errors.Is against the typed errors below.
var (
	ErrNetwork    = errors.New("network error")
	ErrExtraction = errors.New("extraction error")
	ErrModelLoad  = errors.New("model load error")
	ErrPrediction = errors.New("prediction error")
)

// NetworkError reports a transport failure or a non-2xx response.
type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *NetworkError) Unwrap() error { return e.Err }

// Is matches ErrNetwork.
func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// ExtractionError reports that no strategy recovered enough text.
type ExtractionError struct {
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extract article: %s: %v", e.Reason, e.Err)
	}
	return "extract article: " + e.Reason
}

// Unwrap exposes the underlying cause.
func (e *ExtractionError) Unwrap() error { return e.Err }

// Is matches ErrExtraction.
func (e *ExtractionError) Is(target error) bool { return target == ErrExtraction }

// ModelLoadError reports a failure to deserialize the classifier artifact.
type ModelLoadError struct {
	Path string
	Err  error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("failed to load model from %s: %v", e.Path, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *ModelLoadError) Unwrap() error { return e.Err }

// Is matches ErrModelLoad.
func (e *ModelLoadError) Is(target error) bool { return target == ErrModelLoad }

// PredictionError wraps any failure raised while loading or running the classifier.
type PredictionError struct {
	Err error
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("error making prediction: %v", e.Err)
}

// Unwrap exposes the underlying cause.
func (e *PredictionError) Unwrap() error { return e.Err }

// Is matches ErrPrediction.
func (e *PredictionError) Is(target error) bool { return target == ErrPrediction }
