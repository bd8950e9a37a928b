package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShellError_Format(t *testing.T) {
	cause := stderrors.New("address already in use")

	err := New(CodePortExhausted, "portalloc.Allocate", "no free port after 4 attempts", cause)
	assert.Equal(t, "[2001] portalloc.Allocate: no free port after 4 attempts (cause: address already in use)", err.Error())

	err = New(CodeNavigation, "window.Load", "load failed", nil)
	assert.Equal(t, "[5001] window.Load: load failed", err.Error())
}

func TestShellError_IsMatchesCode(t *testing.T) {
	cause := stderrors.New("exit status 1")
	err := fmt.Errorf("launch: %w", New(CodeServiceLaunch, "supervisor.Launch", "service exited", cause))

	assert.ErrorIs(t, err, ErrServiceLaunch)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrPortExhausted)
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"shell error", New(CodePortExhausted, "op", "msg", nil), CodePortExhausted},
		{"wrapped", fmt.Errorf("outer: %w", New(CodeNavigation, "op", "msg", nil)), CodeNavigation},
		{"plain", stderrors.New("boom"), CodeUnknown},
		{"nil", nil, CodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}

func TestCode_String(t *testing.T) {
	assert.Equal(t, "port_exhausted", CodePortExhausted.String())
	assert.Equal(t, "code_42", Code(42).String())
}
