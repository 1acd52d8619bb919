package model

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strings"

	"github.com/JakeFAU/newsverdict/internal/news"
)

// FormatTFIDFLogReg identifies a linear TF-IDF + logistic regression export.
const FormatTFIDFLogReg = "tfidf-logreg/v1"

// Artifact is the on-disk representation of the classifier.
// Class index 0 is FAKE and index 1 is REAL.
type Artifact struct {
	Format      string         `json:"format"`
	Classes     []string       `json:"classes"`
	Vocabulary  map[string]int `json:"vocabulary"`
	IDF         []float64      `json:"idf"`
	Coef        []float64      `json:"coef"`
	Intercept   float64        `json:"intercept"`
	NgramRange  [2]int         `json:"ngram_range"`
	StopWords   []string       `json:"stop_words"`
	SublinearTF bool           `json:"sublinear_tf"`
}

// Validate checks the artifact's shape.
func (a *Artifact) Validate() error {
	var errs []error
	if a.Format != FormatTFIDFLogReg {
		errs = append(errs, fmt.Errorf("unsupported format %q", a.Format))
	}
	if len(a.Classes) != 2 || a.Classes[0] != string(news.LabelFake) || a.Classes[1] != string(news.LabelReal) {
		errs = append(errs, fmt.Errorf("classes must be [%s %s], got %v", news.LabelFake, news.LabelReal, a.Classes))
	}
	if len(a.Vocabulary) == 0 {
		errs = append(errs, errors.New("vocabulary is empty"))
	}
	if len(a.IDF) != len(a.Coef) {
		errs = append(errs, fmt.Errorf("idf has %d entries but coef has %d", len(a.IDF), len(a.Coef)))
	}
	for term, idx := range a.Vocabulary {
		if idx < 0 || idx >= len(a.Coef) {
			errs = append(errs, fmt.Errorf("term %q maps to out-of-range feature %d", term, idx))
			break
		}
	}
	if a.NgramRange[0] < 1 || a.NgramRange[1] < a.NgramRange[0] {
		errs = append(errs, fmt.Errorf("invalid ngram range %v", a.NgramRange))
	}
	return errors.Join(errs...)
}

// LoadFile reads a JSON artifact, gzip-compressed when path ends in ".gz".
func LoadFile(path string) (news.Classifier, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model artifact: %w", err)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip stream: %w", err)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}
	c, err := Decode(r)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Decode reads an artifact from r and builds its classifier.
func Decode(r io.Reader) (*LinearClassifier, error) {
	var a Artifact
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("decode model artifact: %w", err)
	}
	return NewLinearClassifier(a)
}

// tokenPattern matches runs of two or more word characters.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// LinearClassifier scores text with TF-IDF features and a logistic regression.
type LinearClassifier struct {
	artifact  Artifact
	stopWords map[string]struct{}
}

var _ news.Classifier = (*LinearClassifier)(nil)

// NewLinearClassifier validates a and returns its classifier.
func NewLinearClassifier(a Artifact) (*LinearClassifier, error) {
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model artifact: %w", err)
	}
	stop := make(map[string]struct{}, len(a.StopWords))
	for _, w := range a.StopWords {
		stop[strings.ToLower(w)] = struct{}{}
	}
	return &LinearClassifier{artifact: a, stopWords: stop}, nil
}

// PredictProba returns [fake, real] probabilities.
func (c *LinearClassifier) PredictProba(text string) ([2]float64, error) {
	features := c.features(text)

	z := c.artifact.Intercept
	for idx, weight := range features {
		z += weight * c.artifact.Coef[idx]
	}
	pReal := 1 / (1 + math.Exp(-z))
	if math.IsNaN(pReal) {
		return [2]float64{}, errors.New("classifier produced NaN")
	}
	return [2]float64{1 - pReal, pReal}, nil
}

// features returns the L2-normalized tf-idf vector keyed by feature index.
func (c *LinearClassifier) features(text string) map[int]float64 {
	counts := make(map[int]float64)
	for _, term := range c.terms(text) {
		if idx, ok := c.artifact.Vocabulary[term]; ok {
			counts[idx]++
		}
	}

	var norm float64
	for idx, tf := range counts {
		if c.artifact.SublinearTF {
			tf = 1 + math.Log(tf)
		}
		w := tf * c.artifact.IDF[idx]
		counts[idx] = w
		norm += w * w
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for idx := range counts {
			counts[idx] /= norm
		}
	}
	return counts
}

func (c *LinearClassifier) terms(text string) []string {
	var tokens []string
	for _, tok := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		if _, stop := c.stopWords[tok]; !stop {
			tokens = append(tokens, tok)
		}
	}

	lo, hi := c.artifact.NgramRange[0], c.artifact.NgramRange[1]
	var terms []string
	for n := lo; n <= hi; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			terms = append(terms, strings.Join(tokens[i:i+n], " "))
		}
	}
	return terms
}
