package app

import (
	"context"

	"go.trai.ch/carry/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// supervise runs fn in its own goroutine and returns its error. A panic inside fn
// is recovered and returned as an error wrapping domain.ErrSavePanicked.
func supervise(ctx context.Context, fn func(context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		defer zerr.Defer(func(recovered error) {
			err = zerr.Wrap(recovered, domain.ErrSavePanicked.Error())
		})
		return fn(gctx)
	})
	return g.Wait()
}
