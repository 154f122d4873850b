// Package app implements the restore and save routines.
package app

import (
	"context"
	"os"

	"go.trai.ch/carry/internal/core/domain"
	"go.trai.ch/carry/internal/core/ports"
)

// App runs the restore and save routines against one cache store.
type App struct {
	logger  ports.Logger
	runner  ports.Runner
	state   ports.StateStore
	store   ports.CacheStore
	globber ports.Globber
	workDir string
}

// RunOptions carries per-invocation inputs. Inputs set here take precedence over the runner's.
type RunOptions struct {
	Inputs map[string]string
}

// New creates a new App instance working in the current directory.
func New(
	logger ports.Logger,
	runner ports.Runner,
	state ports.StateStore,
	store ports.CacheStore,
	globber ports.Globber,
) *App {
	workDir, err := os.Getwd()
	if err != nil {
		workDir = "."
	}

	return &App{
		logger:  logger,
		runner:  runner,
		state:   state,
		store:   store,
		globber: globber,
		workDir: workDir,
	}
}

// WithWorkDir sets the directory the manifest file is read from and written to,
// and that relative path patterns resolve against.
func (a *App) WithWorkDir(dir string) *App {
	a.workDir = dir
	return a
}

// available reports whether the cache store can serve requests, warning when it cannot.
func (a *App) available(ctx context.Context) bool {
	if err := a.store.Available(ctx); err != nil {
		a.logger.Warn(err.Error())
		return false
	}
	return true
}

// validEvent reports whether the triggering event is tied to a ref, warning when it is not.
func (a *App) validEvent() bool {
	event := a.runner.EventName()
	if !domain.IsValidEvent(event, a.runner.Ref()) {
		a.logger.Warn(domain.EventValidationMessage(event))
		return false
	}
	return true
}
