package presence

import (
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"roomrelay/internal/pkg/errs"
	"roomrelay/internal/pkg/logx"
)

// memberKey is the uniqueness key of a presence entry.
type memberKey struct {
	room     string
	username string
}

// Registry tracks every joined connection and the rooms they occupy.
// Rooms are not stored as objects: a room exists while its member list is non-empty.
// All methods are safe for concurrent use; writers exclude every reader.
type Registry struct {
	// mu guards all maps below.
	mu sync.RWMutex

	// users maps a connection to its presence entry.
	users map[ConnectionID]User

	// members maps (room, username) to the owning connection.
	members map[memberKey]ConnectionID

	// rooms holds each room's connections in join order.
	rooms map[string][]ConnectionID

	logger zerolog.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		users:   make(map[ConnectionID]User),
		members: make(map[memberKey]ConnectionID),
		rooms:   make(map[string][]ConnectionID),
		logger:  logx.Component("presence"),
	}
}

// AddUser registers id in rawRoom under rawUsername.
// Both names are normalized first. It fails with ErrJoinFieldsRequired when either is
// empty, ErrAlreadyRegistered when id already owns an entry, and ErrUsernameTaken when
// the room already has that username.
func (r *Registry) AddUser(id ConnectionID, rawUsername, rawRoom string) (User, *errs.CustomError) {
	username := Normalize(rawUsername)
	room := Normalize(rawRoom)

	if username == "" || room == "" {
		return User{}, errs.NewError(errs.ErrJoinFieldsRequired)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.users[id]; ok {
		r.logger.Warn().
			Str("connection_id", string(id)).
			Str("room", existing.Room).
			Msg("Connection attempted a second join.")
		return User{}, errs.NewError(errs.ErrAlreadyRegistered)
	}

	key := memberKey{room: room, username: username}
	if _, taken := r.members[key]; taken {
		return User{}, errs.NewError(errs.ErrUsernameTaken)
	}

	user := User{ConnectionID: id, Username: username, Room: room}
	r.insert(key, user)

	r.logger.Debug().
		Str("connection_id", string(id)).
		Str("room", room).
		Str("username", username).
		Int("room_size", len(r.rooms[room])).
		Msg("User added.")

	return user, nil
}

// insert stores user. Callers hold mu and have already checked uniqueness.
func (r *Registry) insert(key memberKey, user User) {
	if owner, dup := r.members[key]; dup {
		panic(fmt.Sprintf("presence: duplicate member %q in room %q (owned by %s)", key.username, key.room, owner))
	}

	r.users[user.ConnectionID] = user
	r.members[key] = user.ConnectionID
	r.rooms[user.Room] = append(r.rooms[user.Room], user.ConnectionID)
}

// RemoveUser deletes and returns the entry owned by id.
// It returns false when id never joined or was already removed.
func (r *Registry) RemoveUser(id ConnectionID) (User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return User{}, false
	}

	order := r.rooms[user.Room]
	idx := slices.Index(order, id)
	if idx < 0 {
		panic(fmt.Sprintf("presence: connection %s missing from room %q index", id, user.Room))
	}

	order = slices.Delete(order, idx, idx+1)
	if len(order) == 0 {
		delete(r.rooms, user.Room)
	} else {
		r.rooms[user.Room] = order
	}

	delete(r.members, memberKey{room: user.Room, username: user.Username})
	delete(r.users, id)

	r.logger.Debug().
		Str("connection_id", string(id)).
		Str("room", user.Room).
		Str("username", user.Username).
		Int("room_size", len(order)).
		Msg("User removed.")

	return user, true
}

// GetUser returns the entry owned by id, if any.
func (r *Registry) GetUser(id ConnectionID) (User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	return user, ok
}

// ListUsersInRoom returns the current members of rawRoom in join order.
// The result is a copy and is empty (never nil) for an unoccupied room.
func (r *Registry) ListUsersInRoom(rawRoom string) []User {
	room := Normalize(rawRoom)

	r.mu.RLock()
	defer r.mu.RUnlock()

	order := r.rooms[room]
	users := make([]User, 0, len(order))
	for _, id := range order {
		users = append(users, r.users[id])
	}
	return users
}

// Snapshot returns the roster of rawRoom as sent to clients.
func (r *Registry) Snapshot(rawRoom string) RosterSnapshot {
	members := r.ListUsersInRoom(rawRoom)

	entries := make([]RosterEntry, 0, len(members))
	for _, u := range members {
		entries = append(entries, RosterEntry{Username: u.Username})
	}

	return RosterSnapshot{
		Room:  Normalize(rawRoom),
		Users: entries,
	}
}

// Stats returns the number of occupied rooms and joined users.
func (r *Registry) Stats() (rooms, users int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rooms), len(r.users)
}
