package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorFormatting(t *testing.T) {
	t.Run("code and cause", func(t *testing.T) {
		cause := errors.New("disk full")
		err := NewStorageError("WRITE_FAILED", "failed to write key", cause)

		assert.Equal(t, "[WRITE_FAILED] failed to write key: disk full", err.Error())
		assert.Equal(t, cause, errors.Unwrap(err))
		assert.True(t, IsRecoverable(err))
	})

	t.Run("message only", func(t *testing.T) {
		err := &AppError{Type: ErrorTypeInternal, Message: "boom"}
		assert.Equal(t, "boom", err.Error())
		assert.False(t, IsRecoverable(err))
	})
}

func TestAppErrorIs(t *testing.T) {
	err := fmt.Errorf("open store: %w", NewConfigError("UNKNOWN_DRIVER", "unknown storage driver \"s3\"", nil))

	assert.True(t, errors.Is(err, ErrUnknownDriver))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, ErrorTypeConfig, TypeOf(err))
	assert.Equal(t, ErrorType(""), TypeOf(errors.New("plain")))
}

func TestAppErrorContext(t *testing.T) {
	err := NewProtocolError("BAD_FIELD", "unknown field").
		WithContext("field", "nickname").
		WithContext("session", "abc")

	assert.Equal(t, "nickname", err.Context["field"])
	assert.Equal(t, "abc", err.Context["session"])
	assert.True(t, IsRecoverable(err))
	assert.True(t, errors.Is(err, &AppError{Type: ErrorTypeProtocol, Code: "BAD_FIELD"}))
}
