package req

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomrelay/internal/pkg/errs"
)

type joinInput struct {
	Username string `json:"username"`
	Room     string `json:"room"`
}

func TestBindPayload(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantCode int
	}{
		{name: "valid object", raw: `{"username":"bob","room":"lobby"}`},
		{name: "surrounding whitespace", raw: "  {\"username\":\"bob\"}\n"},
		{name: "empty", raw: ``, wantCode: errs.ErrInvalidParams},
		{name: "null", raw: `null`, wantCode: errs.ErrInvalidParams},
		{name: "syntax error", raw: `{"username":`, wantCode: errs.ErrInvalidJSONFormat},
		{name: "unknown field", raw: `{"username":"bob","admin":true}`, wantCode: errs.ErrInvalidJSONFormat},
		{name: "wrong type", raw: `{"username":42}`, wantCode: errs.ErrInvalidJSONFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dst joinInput
			err := BindPayload(json.RawMessage(tt.raw), &dst)
			if tt.wantCode == 0 {
				require.Nil(t, err)
				assert.Equal(t, "bob", dst.Username)
				return
			}
			require.NotNil(t, err)
			assert.Equal(t, tt.wantCode, err.Code)
		})
	}
}

func TestBindPayload_String(t *testing.T) {
	var text string
	require.Nil(t, BindPayload(json.RawMessage(`"hello there"`), &text))
	assert.Equal(t, "hello there", text)
}
