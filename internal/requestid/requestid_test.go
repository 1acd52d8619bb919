package requestid

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewIsUniqueV7(t *testing.T) {
	t.Parallel()

	id1, id2 := New(), New()
	if id1 == id2 {
		t.Fatalf("expected unique IDs, got %s twice", id1)
	}
	parsed, err := uuid.Parse(id1)
	if err != nil {
		t.Fatalf("id not valid UUID: %v", err)
	}
	if parsed.Version() != 7 {
		t.Fatalf("expected version 7, got %d", parsed.Version())
	}
}

func TestFromHeader(t *testing.T) {
	t.Parallel()

	if got := FromHeader("abc-123"); got != "abc-123" {
		t.Fatalf("expected inbound ID to be kept, got %q", got)
	}
	for _, bad := range []string{"", "has space", "line\nbreak", strings.Repeat("x", 200)} {
		got := FromHeader(bad)
		if got == bad {
			t.Fatalf("expected %q to be replaced", bad)
		}
		if _, err := uuid.Parse(got); err != nil {
			t.Fatalf("replacement not a UUID: %v", err)
		}
	}
}

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()

	if got := FromContext(context.Background()); got != "" {
		t.Fatalf("expected empty ID, got %q", got)
	}
	ctx := WithID(context.Background(), "req-1")
	if got := FromContext(ctx); got != "req-1" {
		t.Fatalf("expected req-1, got %q", got)
	}
}
