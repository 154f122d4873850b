package state

import (
	"io"
	"os"

	"github.com/sethvargo/go-githubactions"
	"go.trai.ch/carry/internal/core/domain"
	"go.trai.ch/carry/internal/core/ports"
	"go.trai.ch/zerr"
)

const envStateFile = "GITHUB_STATE"

var _ ports.StateStore = (*ActionsStore)(nil)

// ActionsStore keeps run state in the runner's GITHUB_STATE file.
// Values come back as STATE_<name> in the post step of the same action.
type ActionsStore struct {
	action *githubactions.Action
	getenv func(string) string
}

// NewActionsStore creates an ActionsStore. A nil getenv uses os.Getenv; a nil writer uses os.Stdout.
func NewActionsStore(getenv func(string) string, w io.Writer) *ActionsStore {
	if getenv == nil {
		getenv = os.Getenv
	}
	if w == nil {
		w = os.Stdout
	}

	return &ActionsStore{
		action: githubactions.New(
			githubactions.WithGetenv(getenv),
			githubactions.WithWriter(w),
		),
		getenv: getenv,
	}
}

// Save records name=value for the post step.
func (s *ActionsStore) Save(name, value string) error {
	if s.getenv(envStateFile) == "" {
		return zerr.With(zerr.Wrap(domain.ErrStateFileUnset, domain.ErrStateWriteFailed.Error()), "name", name)
	}
	s.action.SaveState(name, value)
	return nil
}

// Read returns STATE_<name>.
func (s *ActionsStore) Read(name string) (string, error) {
	return s.getenv("STATE_" + name), nil
}
