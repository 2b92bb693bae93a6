package slug

import (
	"context"
	"fmt"

	gosimple "github.com/gosimple/slug"
)

// ExistsFunc reports whether a candidate slug is already taken. Uniqueness
// checks must span soft-deleted rows so slugs are never reused.
type ExistsFunc func(ctx context.Context, slug string) (bool, error)

// Make converts a display name into a URL-safe slug.
func Make(name string) string {
	return gosimple.Make(name)
}

// Unique slugifies name and appends a numeric suffix (-1, -2, ...) until the
// candidate no longer collides.
func Unique(ctx context.Context, name string, exists ExistsFunc) (string, error) {
	base := Make(name)
	candidate := base
	for counter := 1; ; counter++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, counter)
	}
}
