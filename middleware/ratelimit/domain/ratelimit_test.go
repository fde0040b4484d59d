package domain

import (
	"testing"
	"time"
)

func TestClasses_ResolveKnownAndUnknown(t *testing.T) {
	c := DefaultClasses()

	if got := c.Resolve(ClassAuth); got.MaxRequests != 10 || got.Window != 5*time.Minute {
		t.Fatalf("unexpected auth class: %+v", got)
	}
	if got := c.Resolve("bogus"); got.Name != ClassDefault {
		t.Fatalf("expected unknown class to resolve to default, got %q", got.Name)
	}
}

func TestClasses_ResolveWithoutDefaultEntry(t *testing.T) {
	c := Classes{"x": {Name: "x", MaxRequests: 1, Window: time.Second}}

	got := c.Resolve("y")
	if got.Name != ClassDefault || got.MaxRequests != 100 {
		t.Fatalf("expected built-in default, got %+v", got)
	}
}
