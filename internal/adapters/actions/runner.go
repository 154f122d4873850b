// Package actions adapts the GitHub Actions runtime to ports.Runner.
package actions

import (
	"io"
	"os"

	"github.com/sethvargo/go-githubactions"
	"go.trai.ch/carry/internal/core/domain"
	"go.trai.ch/carry/internal/core/ports"
)

const envOutputFile = "GITHUB_OUTPUT"

var _ ports.Runner = (*Runner)(nil)

// Runner reads inputs and the triggering event from the environment and
// publishes outputs through workflow commands.
type Runner struct {
	action *githubactions.Action
	getenv func(string) string
}

// NewRunner creates a Runner over the given environment lookup and command writer.
// A nil getenv uses os.Getenv; a nil writer uses os.Stdout.
func NewRunner(getenv func(string) string, w io.Writer) *Runner {
	if getenv == nil {
		getenv = os.Getenv
	}
	if w == nil {
		w = os.Stdout
	}

	return &Runner{
		action: NewAction(getenv, w),
		getenv: getenv,
	}
}

// NewAction builds a githubactions.Action bound to getenv and w.
func NewAction(getenv func(string) string, w io.Writer) *githubactions.Action {
	return githubactions.New(
		githubactions.WithGetenv(getenv),
		githubactions.WithWriter(w),
	)
}

// Input returns INPUT_<NAME>, trimmed.
func (r *Runner) Input(name string) string {
	return r.action.GetInput(name)
}

// SetOutput writes a step output to $GITHUB_OUTPUT when the runner provides it,
// otherwise as a set-output workflow command on the command writer.
func (r *Runner) SetOutput(name, value string) {
	if r.getenv(envOutputFile) == "" {
		r.action.IssueCommand(&githubactions.Command{
			Name:       "set-output",
			Properties: githubactions.CommandProperties{"name": name},
			Message:    value,
		})
		return
	}
	r.action.SetOutput(name, value)
}

// EventName returns GITHUB_EVENT_NAME.
func (r *Runner) EventName() string {
	return r.getenv(domain.EnvEventName)
}

// Ref returns GITHUB_REF.
func (r *Runner) Ref() string {
	return r.getenv(domain.EnvRef)
}
