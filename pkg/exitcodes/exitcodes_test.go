package exitcodes

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCodeError(t *testing.T) {
	underlying := errors.New("config file not found")
	err := &ExitCodeError{Code: ExitMissingConfig, Err: underlying}

	assert.Contains(t, err.Error(), "exit code 1")
	assert.Contains(t, err.Error(), "config file not found")
	assert.ErrorIs(t, err, underlying)
}

func TestIsExitCodeError(t *testing.T) {
	inner := &ExitCodeError{Code: ExitDiscoveryFailed, Err: errors.New("walk failed")}

	code, ok := IsExitCodeError(inner)
	assert.True(t, ok)
	assert.Equal(t, ExitDiscoveryFailed, code)

	// Wrapped errors are still recognized.
	wrapped := fmt.Errorf("during discovery: %w", inner)
	code, ok = IsExitCodeError(wrapped)
	assert.True(t, ok)
	assert.Equal(t, ExitDiscoveryFailed, code)

	code, ok = IsExitCodeError(errors.New("plain"))
	assert.False(t, ok)
	assert.Equal(t, 0, code)

	code, ok = IsExitCodeError(nil)
	assert.False(t, ok)
	assert.Equal(t, 0, code)
}
