package ports

import "context"

// LineSource yields raw configuration lines, comments already removed.
type LineSource interface {
	Lines(ctx context.Context) ([]string, error)
}

// PatternSource yields regex blocklist patterns.
type PatternSource interface {
	Patterns(ctx context.Context) ([]string, error)
}
