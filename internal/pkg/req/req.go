/*
Package req provides helpers for decoding client-supplied JSON into typed values.

It is used for WebSocket event payloads, which the envelope decoder has already cut to
a single JSON value. Decoding is strict (unknown fields are rejected) and failures are
reported as *errs.CustomError values that can be sent straight back to the client.
*/
package req

import (
	"bytes"
	"encoding/json"

	"roomrelay/internal/pkg/errs"
)

// BindPayload decodes raw into dst.
// An empty or null payload yields ErrInvalidParams; malformed JSON or unknown fields
// yield ErrInvalidJSONFormat.
func BindPayload(raw json.RawMessage, dst any) *errs.CustomError {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return errs.NewError(errs.ErrInvalidParams)
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	return nil
}
