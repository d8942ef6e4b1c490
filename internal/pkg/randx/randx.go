/*
Package randx generates identifiers used by the relay.
*/
package randx

import (
	"github.com/google/uuid"
)

// ConnectionID returns a fresh UUIDv4 string identifying one live transport connection.
// IDs are random, so an ID is never handed out again while its connection is live.
func ConnectionID() string {
	return uuid.NewString()
}
