/*
Package errs provides custom error types and application-level error code constants.

These error codes identify specific relay failures both internally within the server
and in acknowledgments sent back to WebSocket clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request or event parameter validation failed.
	ErrInvalidParams = 1001

	// ErrInvalidJSONFormat indicates that a JSON body or event payload could not be decoded.
	ErrInvalidJSONFormat = 1003

	// ErrUnsupportedEvent indicates that the client sent an event type the relay does not handle.
	ErrUnsupportedEvent = 1008
)

// 2xxx: Room and Content Business Logic Errors
const (
	// ErrJoinFieldsRequired indicates that the username or room was empty after normalization.
	ErrJoinFieldsRequired = 2101

	// ErrUsernameTaken indicates that the username is already present in the requested room.
	ErrUsernameTaken = 2102

	// ErrMessageContentTooLong indicates that the user's message content exceeded the maximum length limit.
	ErrMessageContentTooLong = 2201

	// ErrProfanityRejected indicates that the content filter flagged the message body.
	ErrProfanityRejected = 2202
)

// 3xxx: Connection and Session Errors
const (
	// ErrAlreadyRegistered indicates that the connection already joined a room and has not disconnected.
	ErrAlreadyRegistered = 3001

	// ErrNotRegistered indicates that the connection sent a room event without joining first.
	ErrNotRegistered = 3002
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrServiceUnavailable indicates that the relay is shutting down and refuses new connections.
	ErrServiceUnavailable = 5003
)
