package extractor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/newsverdict/internal/news"
)

const englishParagraph = "The city council voted on Tuesday to approve a new budget for public transport, " +
	"after months of debate about fares, service frequency and the maintenance of older bus lines across the region. Officials expect the first changes next spring."

func words(word string, n int) string {
	return strings.TrimSpace(strings.Repeat(word+" ", n))
}

func TestExtractArticleIgnoresNavigation(t *testing.T) {
	t.Parallel()

	p := words("news", 17) // 84 characters, three of them total 252
	html := `<html><head><title>Budget approved</title></head><body>
<nav><a href="/">` + words("menu", 100) + `</a></nav>
<article><p>` + p + `</p><p>` + p + `</p><p>` + p + `</p></article>
</body></html>`

	res, err := New(Config{}, nil).Extract([]byte(html))
	require.NoError(t, err)
	require.Equal(t, strings.Join([]string{p, p, p}, " "), res.Text)
	require.NotContains(t, res.Text, "menu")
	require.Equal(t, "Budget approved", res.Title)
	require.False(t, res.IsFallback)
	require.Empty(t, res.OriginalURL)
}

func TestExtractStripsBoilerplateBeforeReading(t *testing.T) {
	t.Parallel()

	html := `<html><body><main>
<script>var tracking = "` + words("script", 50) + `";</script>
<style>.x{}</style>
<header><p>` + words("header", 30) + `</p></header>
<p>` + englishParagraph + `</p>
<aside><p>` + words("aside", 30) + `</p></aside>
<form><p>` + words("form", 30) + `</p></form>
<footer><p>` + words("footer", 30) + `</p></footer>
</main></body></html>`

	res, err := New(Config{}, nil).Extract([]byte(html))
	require.NoError(t, err)
	require.Equal(t, englishParagraph, res.Text)
	for _, banned := range []string{"script", "header", "aside", "form", "footer"} {
		require.NotContains(t, res.Text, banned)
	}
	require.Equal(t, "eng", res.Language)
}

func TestExtractContainerPriority(t *testing.T) {
	t.Parallel()

	html := `<html><body>
<div class="story-body"><p>` + words("story", 60) + `</p></div>
<main><p>` + words("main", 60) + `</p></main>
</body></html>`

	res, err := New(Config{}, nil).Extract([]byte(html))
	require.NoError(t, err)
	require.Equal(t, words("main", 60), res.Text)
}

func TestExtractFallsBackToParagraphFilter(t *testing.T) {
	t.Parallel()

	html := `<html><body>
<article><p>Too short to count.</p></article>
<div><p>Share</p><p>` + englishParagraph + `</p><p>` + englishParagraph + `</p><p>Subscribe now</p></div>
</body></html>`

	res, err := New(Config{}, nil).Extract([]byte(html))
	require.NoError(t, err)
	require.Equal(t, englishParagraph+" "+englishParagraph, res.Text)
	require.NotContains(t, res.Text, "Too short")
	require.NotContains(t, res.Text, "Share")
	require.NotContains(t, res.Text, "Subscribe")
}

func TestExtractFallsBackToRawText(t *testing.T) {
	t.Parallel()

	html := `<html><body>
<div>` + englishParagraph + `</div>
<div><span>tiny</span></div>
<div>` + englishParagraph + `</div>
</body></html>`

	res, err := New(Config{}, nil).Extract([]byte(html))
	require.NoError(t, err)
	require.Equal(t, englishParagraph+" "+englishParagraph, res.Text)
}

func TestExtractInsufficientTextFails(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"empty":      "",
		"tiny page":  `<html><body><p>Hello world, this is short.</p></body></html>`,
		"only menus": `<html><body><nav>` + words("menu", 200) + `</nav></body></html>`,
	}
	for name, html := range tests {
		_, err := New(Config{}, nil).Extract([]byte(html))
		require.ErrorIs(t, err, news.ErrExtraction, name)
	}
}

func TestExtractCustomThreshold(t *testing.T) {
	t.Parallel()

	html := `<html><body><article><p>` + words("short", 10) + `</p></article></body></html>`
	_, err := New(Config{}, nil).Extract([]byte(html))
	require.Error(t, err)

	res, err := New(Config{MinTextChars: 40}, nil).Extract([]byte(html))
	require.NoError(t, err)
	require.Equal(t, words("short", 10), res.Text)
}

func TestExtractPublishedDate(t *testing.T) {
	t.Parallel()

	body := `<article><p>` + words("body", 60) + `</p></article>`

	withTime := `<html><head><meta property="article:published_time" content="2024-01-01T00:00:00Z"></head><body>
<header><time datetime="2024-02-03T10:00:00Z">Feb 3</time></header>` + body + `</body></html>`
	res, err := New(Config{}, nil).Extract([]byte(withTime))
	require.NoError(t, err)
	require.Equal(t, "2024-02-03T10:00:00Z", res.PublishedDate)

	metaOnly := `<html><head><meta property="article:published_time" content="2024-01-01T00:00:00Z"></head><body>` + body + `</body></html>`
	res, err = New(Config{}, nil).Extract([]byte(metaOnly))
	require.NoError(t, err)
	require.Equal(t, "2024-01-01T00:00:00Z", res.PublishedDate)

	res, err = New(Config{}, nil).Extract([]byte(`<html><body>` + body + `</body></html>`))
	require.NoError(t, err)
	require.Empty(t, res.PublishedDate)
	require.Empty(t, res.Title)
}

func TestExtractNormalizesText(t *testing.T) {
	t.Parallel()

	html := `<html><body><article><p>` + englishParagraph + ` &copy; 2024 &amp; more</p>
<p>   Second    paragraph   with    gaps and a $ sign that is long enough.   </p></article></body></html>`

	res, err := New(Config{}, nil).Extract([]byte(html))
	require.NoError(t, err)
	require.NotContains(t, res.Text, "©")
	require.NotContains(t, res.Text, "$")
	require.NotContains(t, res.Text, "  ")
	require.Contains(t, res.Text, "Second paragraph with gaps")
}
