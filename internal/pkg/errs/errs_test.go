package errs

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewError(t *testing.T) {
	tests := []struct {
		name        string
		code        int
		details     []any
		wantCode    int
		wantMessage string
		wantStatus  int
	}{
		{
			name:        "known code keeps message",
			code:        ErrUsernameTaken,
			wantCode:    ErrUsernameTaken,
			wantMessage: "Username is in use!",
			wantStatus:  http.StatusOK,
		},
		{
			name:        "explicit status preserved",
			code:        ErrServiceUnavailable,
			wantCode:    ErrServiceUnavailable,
			wantMessage: "Server is shutting down.",
			wantStatus:  http.StatusServiceUnavailable,
		},
		{
			name:        "details formatted into template",
			code:        ErrUnsupportedEvent,
			details:     []any{"typing"},
			wantCode:    ErrUnsupportedEvent,
			wantMessage: "Unsupported event: typing.",
			wantStatus:  http.StatusOK,
		},
		{
			name:        "details ignored without placeholder",
			code:        ErrProfanityRejected,
			details:     []any{"ignored"},
			wantCode:    ErrProfanityRejected,
			wantMessage: "Profanity is not allowed",
			wantStatus:  http.StatusOK,
		},
		{
			name:        "unknown code falls back",
			code:        424242,
			wantCode:    ErrUnknown,
			wantMessage: "Something went wrong. Please try again.",
			wantStatus:  http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewError(tt.code, tt.details...)
			require.NotNil(t, err)
			assert.Equal(t, tt.wantCode, err.Code)
			assert.Equal(t, tt.wantMessage, err.Message)
			assert.Equal(t, tt.wantStatus, err.Status)
		})
	}
}

func TestNewError_DoesNotMutateTemplate(t *testing.T) {
	_ = NewError(ErrUnsupportedEvent, "first")
	err := NewError(ErrUnsupportedEvent, "second")
	assert.Equal(t, "Unsupported event: second.", err.Message)
}

func TestHasCode(t *testing.T) {
	err := NewError(ErrNotRegistered)
	assert.True(t, HasCode(err, ErrNotRegistered))
	assert.False(t, HasCode(err, ErrAlreadyRegistered))

	wrapped := fmt.Errorf("dispatch: %w", err)
	assert.True(t, HasCode(wrapped, ErrNotRegistered))

	assert.False(t, HasCode(fmt.Errorf("plain"), ErrNotRegistered))
	assert.False(t, HasCode(nil, ErrNotRegistered))
}

func TestFrom(t *testing.T) {
	assert.Nil(t, From(nil))

	custom := NewError(ErrJoinFieldsRequired)
	assert.Same(t, custom, From(custom))

	converted := From(fmt.Errorf("disk on fire"))
	require.NotNil(t, converted)
	assert.Equal(t, ErrUnknown, converted.Code)
}
