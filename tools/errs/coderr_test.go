package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesThroughWrapping(t *testing.T) {
	err := ErrNoPermission.WrapMsg("add member", "group", "g1")
	assert.True(t, errors.Is(err, ErrNoPermission))
	assert.False(t, errors.Is(err, ErrDuplicateKey))

	// 再包一层也能认出来
	outer := fmt.Errorf("handler: %w", err)
	assert.True(t, errors.Is(outer, ErrNoPermission))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, NoPermissionError, CodeOf(ErrNoPermission.Wrap()))
	assert.Equal(t, DuplicateKeyError, CodeOf(ErrDuplicateKey.WithDetail("profiles_handle_key")))
	assert.Equal(t, ServerInternalError, CodeOf(errors.New("plain")))
}

func TestWithDetailDoesNotMutate(t *testing.T) {
	d := ErrArgs.WithDetail("limit out of range")
	assert.Equal(t, "", ErrArgs.Detail)
	assert.Contains(t, d.Error(), "limit out of range")
	assert.Equal(t, ErrArgs.Code, d.Code)
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil))
	assert.NoError(t, WrapMsg(nil, "ignored"))
}
