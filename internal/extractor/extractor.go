// Package extractor recovers article text and metadata from heterogeneous HTML.
//
// Body text is recovered by three strategies in priority order: the first
// likely article container, then every substantial paragraph in the page,
// then every substantial text node. The first strategy that reaches the
// minimum length wins.
package extractor

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/abadojack/whatlanggo"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/JakeFAU/newsverdict/internal/metrics"
	"github.com/JakeFAU/newsverdict/internal/news"
	"github.com/JakeFAU/newsverdict/internal/textnorm"
)

const (
	defaultMinTextChars      = 200
	defaultMinParagraphChars = 20
)

// Strategy names reported to metrics and logs.
const (
	StrategyContainer = "container"
	StrategyParagraph = "paragraph"
	StrategyRawText   = "raw_text"
)

// ContainerSelectors are probed in order; the first match wins.
var ContainerSelectors = []string{
	"article",
	"main",
	`[role="main"]`,
	`[itemprop="articleBody"]`,
	".article-body",
	".article-content",
	".story-body",
	".post-content",
	".entry-content",
	"#article-body",
}

// boilerplate is removed before any body text is read.
const boilerplate = "script, style, noscript, nav, header, footer, aside, meta, svg, form"

// Config controls extraction thresholds.
type Config struct {
	MinTextChars      int
	MinParagraphChars int
}

// Extractor implements news.Extractor with goquery.
type Extractor struct {
	cfg    Config
	logger *zap.Logger
}

var _ news.Extractor = (*Extractor)(nil)

// New creates an Extractor.
func New(cfg Config, logger *zap.Logger) *Extractor {
	if cfg.MinTextChars <= 0 {
		cfg.MinTextChars = defaultMinTextChars
	}
	if cfg.MinParagraphChars <= 0 {
		cfg.MinParagraphChars = defaultMinParagraphChars
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{cfg: cfg, logger: logger}
}

// Extract parses the document once and returns normalized article text.
// SourceDomain and the fallback fields are left for the caller.
func (e *Extractor) Extract(raw []byte) (news.ExtractionResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return news.ExtractionResult{}, &news.ExtractionError{Reason: "parse html", Err: err}
	}

	// Metadata lives in attributes of elements that are stripped below.
	result := news.ExtractionResult{
		Title:         strings.TrimSpace(doc.Find("title").First().Text()),
		PublishedDate: publishedDate(doc),
	}

	doc.Find(boilerplate).Remove()

	strategies := []struct {
		name string
		run  func(*goquery.Document) string
	}{
		{StrategyContainer, e.containerText},
		{StrategyParagraph, e.paragraphText},
		{StrategyRawText, e.rawText},
	}
	for _, s := range strategies {
		text := s.run(doc)
		if utf8.RuneCountInString(text) < e.cfg.MinTextChars {
			continue
		}
		normalized := textnorm.Normalize(text)
		if normalized == "" {
			continue
		}
		result.Text = normalized
		result.Language = detectLanguage(normalized)
		metrics.ObserveExtraction(s.name)
		e.logger.Debug("article text extracted",
			zap.String("strategy", s.name),
			zap.Int("chars", utf8.RuneCountInString(normalized)),
		)
		return result, nil
	}

	return news.ExtractionResult{}, &news.ExtractionError{
		Reason: fmt.Sprintf("no strategy recovered at least %d characters", e.cfg.MinTextChars),
	}
}

func publishedDate(doc *goquery.Document) string {
	if v, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	if v, ok := doc.Find(`meta[property="article:published_time"]`).First().Attr("content"); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func (e *Extractor) containerText(doc *goquery.Document) string {
	for _, selector := range ContainerSelectors {
		container := doc.Find(selector).First()
		if container.Length() == 0 {
			continue
		}
		var parts []string
		container.Find("p").Each(func(_ int, p *goquery.Selection) {
			if text := strings.TrimSpace(p.Text()); text != "" {
				parts = append(parts, text)
			}
		})
		return strings.Join(parts, " ")
	}
	return ""
}

func (e *Extractor) paragraphText(doc *goquery.Document) string {
	var parts []string
	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		if text := strings.TrimSpace(p.Text()); utf8.RuneCountInString(text) > e.cfg.MinParagraphChars {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, " ")
}

func (e *Extractor) rawText(doc *goquery.Document) string {
	var parts []string
	doc.Find("*").Contents().Each(func(_ int, s *goquery.Selection) {
		node := s.Get(0)
		if node == nil || node.Type != html.TextNode {
			return
		}
		if text := strings.TrimSpace(node.Data); utf8.RuneCountInString(text) > e.cfg.MinParagraphChars {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, " ")
}

func detectLanguage(text string) string {
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return ""
	}
	return info.Lang.Iso6393()
}
