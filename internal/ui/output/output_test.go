package output_test

import (
	"bytes"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/carry/internal/ui/output"
)

func TestColorProfile(t *testing.T) {
	t.Run("NO_COLOR forces Ascii", func(t *testing.T) {
		t.Setenv("NO_COLOR", "1")
		t.Setenv("CI", "true")
		assert.Equal(t, termenv.Ascii, output.ColorProfile())
	})

	t.Run("CI uses ANSI", func(t *testing.T) {
		t.Setenv("NO_COLOR", "")
		t.Setenv("CI", "true")
		assert.Equal(t, termenv.ANSI, output.ColorProfile())
	})

	t.Run("terminal detection", func(t *testing.T) {
		t.Setenv("NO_COLOR", "")
		t.Setenv("CI", "")
		p := output.ColorProfile()
		assert.True(t, p >= termenv.TrueColor && p <= termenv.Ascii, "should return a valid profile")
	})
}

func TestNew(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var buf bytes.Buffer
	out := output.New(&buf)
	assert.NotNil(t, out)

	_, _ = out.WriteString(out.String("test").Foreground(termenv.ANSIRed).String())
	assert.Equal(t, "test", buf.String())
}

func TestNew_Nil(t *testing.T) {
	assert.NotPanics(t, func() {
		_ = output.New(nil)
	})
}
