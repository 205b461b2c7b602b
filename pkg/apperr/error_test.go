package apperr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	t.Run("Should build from error with code and details", func(t *testing.T) {
		e := New(errors.New("boom"), CodeTaskFailed, map[string]any{"k": "v"})
		assert.Equal(t, "boom", e.Error())
		m := e.AsMap()
		assert.Equal(t, "boom", m["message"])
		assert.Equal(t, string(CodeTaskFailed), m["code"])
		assert.Equal(t, map[string]any{"k": "v"}, m["details"])
	})

	t.Run("Should build from nil error and handle empty/nil cases", func(t *testing.T) {
		e := New(nil, "", nil)
		assert.Equal(t, "unknown error", e.Error())
		var enil *Error
		assert.Equal(t, "", enil.Error())
		assert.Nil(t, enil.AsMap())
		assert.Nil(t, (&Error{}).AsMap())
	})

	t.Run("Should match by code via errors.Is", func(t *testing.T) {
		a := CycleFound([]string{"x:y"})
		b := CycleFound([]string{"other"})
		assert.True(t, errors.Is(a, b))
		assert.False(t, errors.Is(a, PropertyNotSet("p")))
	})

	t.Run("Should unwrap to the original cause", func(t *testing.T) {
		cause := errors.New("underlying")
		e := AcquisitionError("dep:1", cause)
		assert.ErrorIs(t, e, cause)
	})
}

func TestIsControlFlow(t *testing.T) {
	t.Run("Should recognize StopTask and StopAction as control flow", func(t *testing.T) {
		assert.True(t, IsControlFlow(StopTask()))
		assert.True(t, IsControlFlow(StopAction()))
		assert.False(t, IsControlFlow(TaskFailed("t", errors.New("boom"))))
	})
}

func TestRenderModes(t *testing.T) {
	t.Run("Should print just the message at NoBacktrace", func(t *testing.T) {
		e := DuplicateTask("root:build")
		assert.Equal(t, e.Error(), Render(e, NoBacktrace))
	})

	t.Run("Should include backtrace frames at ShortBacktrace", func(t *testing.T) {
		e := DuplicateTask("root:build")
		out := Render(e, ShortBacktrace)
		assert.Contains(t, out, e.Error())
	})
}
