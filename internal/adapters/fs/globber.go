package fs

import (
	"context"
	"errors"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/carry/internal/core/domain"
	"go.trai.ch/carry/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Globber = (*Globber)(nil)

// errStopWalk ends a GlobWalk once the consumer stops pulling.
var errStopWalk = errors.New("stop walk")

// Globber expands doublestar patterns (`*`, `**`, `?`, `[...]`, `{a,b}`) into directories.
type Globber struct{}

// NewGlobber creates a new Globber.
func NewGlobber() *Globber {
	return &Globber{}
}

// Glob yields the directories matching an absolute pattern while the filesystem is walked,
// so a consumer that stops early never pays for the rest of the tree.
// A pattern starting with "!" only excludes and therefore yields nothing.
func (g *Globber) Glob(ctx context.Context, pattern string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if strings.HasPrefix(pattern, "!") {
			return
		}

		base, rest := doublestar.SplitPattern(filepath.ToSlash(filepath.Clean(pattern)))
		if !doublestar.ValidatePattern(rest) {
			yield("", zerr.With(zerr.Wrap(doublestar.ErrBadPattern, domain.ErrGlobFailed.Error()), "pattern", pattern))
			return
		}

		root := filepath.FromSlash(base)
		err := doublestar.GlobWalk(os.DirFS(root), rest, func(path string, d fs.DirEntry) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			if !yield(filepath.Join(root, filepath.FromSlash(path)), nil) {
				return errStopWalk
			}
			return nil
		})

		if err != nil && !errors.Is(err, errStopWalk) {
			yield("", zerr.With(zerr.Wrap(err, domain.ErrGlobFailed.Error()), "pattern", pattern))
		}
	}
}
