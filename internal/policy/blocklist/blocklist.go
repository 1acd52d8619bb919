// Package blocklist matches hosts against exact names and wildcard suffixes.
package blocklist

import (
	"strings"

	"github.com/JakeFAU/newsverdict/internal/policy/domain"
)

// List holds exact hosts and "*.suffix" patterns. A nil List blocks nothing.
type List struct {
	exact    map[string]struct{}
	suffixes []string
}

// New parses patterns. "*.example.com" and ".example.com" block the domain
// and all of its subdomains; anything else must match exactly.
func New(patterns []string) *List {
	l := &List{exact: make(map[string]struct{})}
	for _, raw := range patterns {
		value := strings.TrimSpace(strings.ToLower(raw))
		switch {
		case value == "":
			continue
		case strings.HasPrefix(value, "*."):
			l.addSuffix(strings.TrimPrefix(value, "*."))
		case strings.HasPrefix(value, "."):
			l.addSuffix(strings.TrimPrefix(value, "."))
		default:
			l.exact[value] = struct{}{}
		}
	}
	if len(l.exact) == 0 && len(l.suffixes) == 0 {
		return nil
	}
	return l
}

func (l *List) addSuffix(suffix string) {
	if suffix == "" {
		return
	}
	for _, existing := range l.suffixes {
		if existing == suffix {
			return
		}
	}
	l.suffixes = append(l.suffixes, suffix)
}

// Blocked reports whether rawURL's host is on the list.
func (l *List) Blocked(rawURL string) bool {
	if l == nil {
		return false
	}
	host := domain.Host(rawURL)
	if host == "" {
		return false
	}
	if _, ok := l.exact[host]; ok {
		return true
	}
	for _, suffix := range l.suffixes {
		if host == suffix || strings.HasSuffix(host, "."+suffix) {
			return true
		}
	}
	return false
}
