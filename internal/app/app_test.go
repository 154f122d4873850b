package app_test

import (
	"iter"
	"testing"

	"go.trai.ch/carry/internal/app"
	"go.trai.ch/carry/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type harness struct {
	app     *app.App
	workDir string
	logger  *mocks.MockLogger
	runner  *mocks.MockRunner
	state   *mocks.MockStateStore
	store   *mocks.MockCacheStore
	globber *mocks.MockGlobber
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)

	h := &harness{
		workDir: t.TempDir(),
		logger:  mocks.NewMockLogger(ctrl),
		runner:  mocks.NewMockRunner(ctrl),
		state:   mocks.NewMockStateStore(ctrl),
		store:   mocks.NewMockCacheStore(ctrl),
		globber: mocks.NewMockGlobber(ctrl),
	}
	h.app = app.New(h.logger, h.runner, h.state, h.store, h.globber).WithWorkDir(h.workDir)
	return h
}

// pushEvent makes the store available and the run look like a push to main.
func (h *harness) pushEvent() {
	h.store.EXPECT().Available(gomock.Any()).Return(nil)
	h.runner.EXPECT().EventName().Return("push").AnyTimes()
	h.runner.EXPECT().Ref().Return("refs/heads/main").AnyTimes()
}

// inputs serves declared inputs from values; anything else reads as unset.
func (h *harness) inputs(values map[string]string) {
	h.runner.EXPECT().Input(gomock.Any()).DoAndReturn(func(name string) string {
		return values[name]
	}).AnyTimes()
}

func dirs(paths ...string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, p := range paths {
			if !yield(p, nil) {
				return
			}
		}
	}
}

func failing(err error) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		yield("", err)
	}
}
