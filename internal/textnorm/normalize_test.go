package textnorm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"collapses whitespace", "  a \n\t b   c  ", "a b c"},
		{"keeps punctuation", `He said: "yes" (twice) - ok; fine! why? it's.`, `He said: "yes" (twice) - ok; fine! why? it's.`},
		{"strips symbols", "Price: $100 & rising © 2024 #news @user", "Price: 100 rising 2024 news user"},
		{"strip then collapse", "a © b", "a b"},
		{"non-breaking space", "a\u00a0\u00a0b", "a b"},
		{"unicode letters", "Café naïve Zürich 東京", "Café naïve Zürich 東京"},
		{"only symbols", "<<>>", ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func FuzzNormalizeIdempotent(f *testing.F) {
	for _, seed := range []string{"", "hello  world", "a © b", " x y\n", `"quoted" (text) -- ok!`} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, in string) {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent: %q -> %q -> %q", in, once, twice)
		}
	})
}
