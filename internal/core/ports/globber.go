package ports

import (
	"context"
	"iter"
)

// Globber expands path patterns into directories.
//
//go:generate mockgen -source=globber.go -destination=mocks/mock_globber.go -package=mocks
type Globber interface {
	// Glob lazily yields the absolute directories matching an absolute pattern, in discovery order.
	// The sequence is not restartable. An expansion error is yielded once and ends the sequence.
	Glob(ctx context.Context, pattern string) iter.Seq2[string, error]
}
