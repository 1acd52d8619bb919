// Package requestid generates and carries request correlation IDs.
package requestid

import (
	"context"

	"github.com/google/uuid"
)

// Header is the HTTP header that carries the ID in both directions.
const Header = "X-Request-ID"

type ctxKey struct{}

// New returns a time-ordered UUIDv7 string, or a random v4 if the v7 clock source fails.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// FromHeader returns the inbound ID when it is a plausible token, otherwise a fresh one.
func FromHeader(v string) string {
	if v == "" || len(v) > 128 {
		return New()
	}
	for _, r := range v {
		if r < 0x21 || r > 0x7e {
			return New()
		}
	}
	return v
}

// WithID stores id on ctx.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the ID stored by WithID, if any.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
