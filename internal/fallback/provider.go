// Package fallback supplies canned articles when acquisition gives up.
package fallback

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/JakeFAU/newsverdict/internal/news"
	"github.com/JakeFAU/newsverdict/internal/policy/domain"
)

const (
	textPrefix  = "(FALLBACK CONTENT) "
	titlePrefix = "(FALLBACK) "
)

// Article is one entry of the fallback pool.
type Article struct {
	Title         string `yaml:"title"`
	Text          string `yaml:"text"`
	URL           string `yaml:"url"`
	PublishedDate string `yaml:"published_date"`
}

// Validate checks that the record can be served.
func (a Article) Validate() error {
	if strings.TrimSpace(a.Text) == "" {
		return errors.New("text is required")
	}
	u, err := url.Parse(a.URL)
	if err != nil {
		return fmt.Errorf("parse url %q: %w", a.URL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("url %q must be absolute", a.URL)
	}
	return nil
}

// Provider implements news.FallbackProvider over a fixed pool.
type Provider struct {
	pool []Article
	pick func(n int) int
}

var _ news.FallbackProvider = (*Provider)(nil)

// New returns a Provider over pool, or over DefaultPool when pool is empty.
func New(pool []Article) (*Provider, error) {
	if len(pool) == 0 {
		pool = DefaultPool
	}
	for i, a := range pool {
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("fallback article %d: %w", i, err)
		}
	}
	return &Provider{pool: append([]Article(nil), pool...), pick: randomIndex}, nil
}

// Size reports the number of articles in the pool.
func (p *Provider) Size() int { return len(p.pool) }

// Provide returns one pool article chosen uniformly at random.
func (p *Provider) Provide() news.ExtractionResult {
	a := p.pool[p.pick(len(p.pool))]
	return news.ExtractionResult{
		Text:          textPrefix + a.Text,
		Title:         titlePrefix + a.Title,
		PublishedDate: a.PublishedDate,
		SourceDomain:  domain.Host(a.URL),
		IsFallback:    true,
		OriginalURL:   a.URL,
	}
}

type poolFile struct {
	Articles []Article `yaml:"articles"`
}

// LoadPool reads a YAML pool file of the form `articles: [{title, text, url, published_date}]`.
func LoadPool(path string) ([]Article, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fallback pool: %w", err)
	}
	var pf poolFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("decode fallback pool: %w", err)
	}
	if len(pf.Articles) == 0 {
		return nil, fmt.Errorf("fallback pool %s has no articles", path)
	}
	for i, a := range pf.Articles {
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("fallback pool %s article %d: %w", path, i, err)
		}
	}
	return pf.Articles, nil
}

func randomIndex(n int) int {
	if n <= 1 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}
