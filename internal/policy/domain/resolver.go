// Package domain resolves per-site fetch policies.
package domain

import (
	"net/url"
	"strings"

	"github.com/JakeFAU/newsverdict/internal/news"
)

// Resolver looks up policies by exact host.
type Resolver struct {
	policies map[string]news.DomainPolicy
}

// NewResolver indexes the given policies by normalized host. Later entries win.
func NewResolver(policies []news.DomainPolicy) *Resolver {
	r := &Resolver{policies: make(map[string]news.DomainPolicy, len(policies))}
	for _, p := range policies {
		host := normalizeHost(p.Host)
		if host == "" {
			continue
		}
		if p.ExtraThrottle < 0 {
			p.ExtraThrottle = 0
		}
		p.Host = host
		r.policies[host] = p
	}
	return r
}

// Resolve returns the registered policy for the URL's host, or the zero policy.
func (r *Resolver) Resolve(rawURL string) news.DomainPolicy {
	host := Host(rawURL)
	if r == nil || host == "" {
		return news.DomainPolicy{}
	}
	return r.policies[host]
}

// Host extracts the lowercase host from a URL with any leading "www." removed.
// It returns "" when the URL has no parseable host.
func Host(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return normalizeHost(u.Hostname())
}

func normalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	host = strings.TrimSuffix(host, ".")
	return strings.TrimPrefix(host, "www.")
}
