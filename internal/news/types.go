// Package news defines core types shared across the acquisition and prediction subsystems.
package news

import (
	"net/http"
	"time"
)

// Label is the authenticity verdict for an article.
type Label string

// Label values returned by the predictor.
const (
	LabelFake Label = "FAKE"
	LabelReal Label = "REAL"
)

// DomainPolicy captures per-site fetch behavior. The zero value is the default policy.
type DomainPolicy struct {
	Host             string        `json:"host"`
	ExtraThrottle    time.Duration `json:"extra_throttle"`
	ForceMobileAgent bool          `json:"force_mobile_agent"`
	Referrer         string        `json:"referrer,omitempty"`
}

// FetchAttempt describes the headers and delay applied to a single try.
type FetchAttempt struct {
	UserAgent string
	Headers   http.Header
	Delay     time.Duration
}

// ExtractionResult is the article text and metadata recovered for one URL.
type ExtractionResult struct {
	Text          string `json:"text"`
	Title         string `json:"title,omitempty"`
	PublishedDate string `json:"published_date,omitempty"`
	SourceDomain  string `json:"source_domain"`
	Language      string `json:"language,omitempty"`
	IsFallback    bool   `json:"is_fallback"`
	OriginalURL   string `json:"original_url,omitempty"`
}

// PredictionResult is the classifier verdict for one text.
// ConfidenceScore always equals the larger of the two probabilities.
type PredictionResult struct {
	Label           Label   `json:"prediction"`
	ConfidenceScore float64 `json:"confidence_score"`
	FakeProbability float64 `json:"fake_probability"`
	RealProbability float64 `json:"real_probability"`
}

// IsFake reports whether the verdict is FAKE.
func (p PredictionResult) IsFake() bool {
	return p.Label == LabelFake
}

// CredibilityAnalysis returns a human readable summary banded by the winning probability.
func (p PredictionResult) CredibilityAnalysis() string {
	if p.IsFake() {
		switch {
		case p.FakeProbability > 90:
			return "This article contains multiple red flags indicating it is highly likely to be fake news."
		case p.FakeProbability > 70:
			return "This article shows significant patterns common in fake news sources."
		default:
			return "This article has some characteristics of misinformation, suggesting caution is warranted."
		}
	}
	switch {
	case p.RealProbability > 90:
		return "This article demonstrates strong credibility patterns typical of reliable news sources."
	case p.RealProbability > 70:
		return "This article appears to be generally credible, with patterns consistent with legitimate reporting."
	default:
		return "While this article appears more credible than not, some verification with additional sources is recommended."
	}
}
