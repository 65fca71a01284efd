package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type codeError struct {
	code string
}

func (e *codeError) Error() string { return e.code }

func TestWrapKeepsTarget(t *testing.T) {
	base := New("not found")

	wrapped := Wrapf(Wrap(base, "find user"), "login %s", "admin")

	assert.True(t, Is(wrapped, base))
	assert.Equal(t, "login admin: find user: not found", wrapped.Error())
	assert.Contains(t, fmt.Sprintf("%+v", wrapped), "TestWrapKeepsTarget")
}

func TestNilStaysNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, "ignored"))
	assert.NoError(t, Wrapf(nil, "ignored %d", 1))
	assert.NoError(t, WithStack(nil))
	assert.NoError(t, Join(nil, nil))
}

func TestAsType(t *testing.T) {
	err := WithStack(Wrap(&codeError{code: "TOKEN_EXPIRED"}, "parse"))

	got, ok := AsType[*codeError](err)
	require.True(t, ok)
	assert.Equal(t, "TOKEN_EXPIRED", got.code)

	var target *codeError
	assert.True(t, As(err, &target))

	_, ok = AsType[*codeError](New("plain"))
	assert.False(t, ok)
}

func TestJoinMatchesEveryError(t *testing.T) {
	first := New("exec failed")
	second := &codeError{code: "ROLLBACK"}

	joined := Join(first, Wrap(second, "rollback"))

	assert.True(t, Is(joined, first))
	got, ok := AsType[*codeError](joined)
	require.True(t, ok)
	assert.Same(t, second, got)
}

func TestErrorf(t *testing.T) {
	err := Errorf("unknown level: %s", "loud")

	assert.EqualError(t, err, "unknown level: loud")
	assert.Contains(t, fmt.Sprintf("%+v", err), "TestErrorf")
}
