package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRetryable(t *testing.T) {
	// Provider errors are wrapped the way the SES sender wraps them.
	sendErr := fmt.Errorf("ses send failed: %w (%w)", errors.New("dial tcp: i/o timeout"), ErrTransientProvider)
	assert.True(t, IsRetryable(sendErr))

	partial := fmt.Errorf("status updated but listing update failed: %w (%w)", errors.New("connection reset"), ErrPartialMutation)
	assert.True(t, IsRetryable(partial))

	assert.False(t, IsRetryable(ErrNotFound))
	assert.False(t, IsRetryable(ErrUnauthorized))
	assert.False(t, IsRetryable(ErrTerminalState))
	assert.False(t, IsRetryable(errors.New("plain failure")))
	assert.False(t, IsRetryable(nil))
}
