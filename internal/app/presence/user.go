/*
Package presence owns the authoritative record of who is connected to which room.

It defines the User presence entry, the normalization applied to usernames and room
names, and the Registry that enforces per-room username uniqueness.
*/
package presence

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ConnectionID identifies one live transport connection.
type ConnectionID string

// User is the presence entry of a joined connection.
// Username and Room are normalized and never change for the life of the connection.
type User struct {
	// ConnectionID is the transport connection that owns this entry.
	ConnectionID ConnectionID `json:"-"`

	// Username is the display name, trimmed and lower-cased.
	Username string `json:"username"`

	// Room is the room name, trimmed and lower-cased.
	Room string `json:"room"`
}

// RosterEntry is one line of a room roster.
type RosterEntry struct {
	Username string `json:"username"`
}

// RosterSnapshot is a point-in-time view of a room's members, in join order.
type RosterSnapshot struct {
	Room  string        `json:"room"`
	Users []RosterEntry `json:"users"`
}

// Normalize trims surrounding whitespace and lower-cases s.
// Every write and every comparison in the registry goes through it.
func Normalize(s string) string {
	// Casers carry state and must not be shared across goroutines.
	return cases.Lower(language.Und).String(strings.TrimSpace(s))
}
