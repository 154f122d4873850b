package app

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.trai.ch/carry/internal/core/domain"
	"go.trai.ch/carry/internal/core/ports"
)

var negationSpace = regexp.MustCompile(`^!\s+`)

// inputs resolves declared inputs from per-run overrides, then the runner.
type inputs struct {
	overrides map[string]string
	runner    ports.Runner
}

func (a *App) inputs(opts RunOptions) inputs {
	return inputs{overrides: opts.Inputs, runner: a.runner}
}

func (in inputs) raw(name string) string {
	if v, ok := in.overrides[name]; ok {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(in.runner.Input(name))
}

// get returns the trimmed input. A missing required input yields domain.ErrInputRequired.
func (in inputs) get(name string, required bool) (string, error) {
	v := in.raw(name)
	if v == "" && required {
		return "", fmt.Errorf("%w: %s", domain.ErrInputRequired, name)
	}
	return v, nil
}

// getArray splits the input on newlines, dropping blank lines and collapsing "! pattern" to "!pattern".
func (in inputs) getArray(name string, required bool) ([]string, error) {
	v, err := in.get(name, required)
	if err != nil {
		return nil, err
	}

	var values []string
	for _, line := range strings.Split(v, "\n") {
		line = strings.TrimSpace(negationSpace.ReplaceAllString(line, "!"))
		if line != "" {
			values = append(values, line)
		}
	}
	return values, nil
}

// getInt parses the input as a base-10 integer. Missing or invalid values yield zero.
func (in inputs) getInt(name string) int64 {
	n, err := strconv.ParseInt(in.raw(name), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
