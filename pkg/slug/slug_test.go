package slug

import (
	"context"
	"testing"
)

func TestMake(t *testing.T) {
	if got := Make("Electronics & Gadgets"); got != "electronics-and-gadgets" {
		t.Fatalf("unexpected slug %q", got)
	}
}

func TestUniqueAppendsSuffix(t *testing.T) {
	taken := map[string]bool{"test-phone": true, "test-phone-1": true}
	exists := func(_ context.Context, s string) (bool, error) {
		return taken[s], nil
	}

	got, err := Unique(context.Background(), "Test Phone", exists)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "test-phone-2" {
		t.Fatalf("expected test-phone-2, got %q", got)
	}
}

func TestUniqueNoCollision(t *testing.T) {
	exists := func(_ context.Context, s string) (bool, error) { return false, nil }
	got, err := Unique(context.Background(), "Fresh Name", exists)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "fresh-name" {
		t.Fatalf("expected fresh-name, got %q", got)
	}
}
