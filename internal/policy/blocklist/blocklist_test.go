package blocklist

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBlocked(t *testing.T) {
	t.Parallel()

	l := New([]string{"localhost", "*.internal", ".corp.example", " ", "*.internal"})

	cases := map[string]bool{
		"http://localhost:8080/x":             true,
		"http://metadata.google.internal/":    true,
		"https://internal/":                   true,
		"https://wiki.corp.example/page":      true,
		"https://www.reuters.com/world/story": false,
		"https://notinternal.com/":            false,
		"not a url":                           false,
	}
	for raw, want := range cases {
		require.Equal(t, want, l.Blocked(raw), raw)
	}
}

func TestEmptyListBlocksNothing(t *testing.T) {
	t.Parallel()

	l := New([]string{"", "  "})
	require.Nil(t, l)
	require.False(t, l.Blocked("http://localhost/"))
}
