package api

import "github.com/JakeFAU/newsverdict/internal/news"

// Verdict is the response body for a text prediction.
type Verdict struct {
	news.PredictionResult
	IsFake bool `json:"is_fake"`
}

// NewVerdict wraps a prediction for the wire.
func NewVerdict(result news.PredictionResult) Verdict {
	return Verdict{PredictionResult: result, IsFake: result.IsFake()}
}

// Analysis is the response body for a URL analysis.
type Analysis struct {
	Verdict
	AnalyzedURL         string `json:"analyzed_url"`
	Title               string `json:"title,omitempty"`
	Source              string `json:"source,omitempty"`
	Date                string `json:"date,omitempty"`
	Language            string `json:"language,omitempty"`
	CredibilityAnalysis string `json:"credibility_analysis"`
	IsFallback          bool   `json:"is_fallback"`
	FallbackURL         string `json:"fallback_url,omitempty"`
}

// NewAnalysis combines acquired article metadata with its prediction.
func NewAnalysis(rawURL string, article news.ExtractionResult, result news.PredictionResult) Analysis {
	a := Analysis{
		Verdict:             NewVerdict(result),
		AnalyzedURL:         rawURL,
		Title:               article.Title,
		Source:              article.SourceDomain,
		Date:                article.PublishedDate,
		Language:            article.Language,
		CredibilityAnalysis: result.CredibilityAnalysis(),
		IsFallback:          article.IsFallback,
	}
	if article.IsFallback {
		a.FallbackURL = article.OriginalURL
	}
	return a
}
