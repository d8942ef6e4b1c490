/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to standardize
HTTP responses, WebSocket acknowledgments and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every application error code.
// The key is the error code (int), and the value contains the user message and HTTP status code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:     {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrInvalidJSONFormat: {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrUnsupportedEvent:  {Code: ErrUnsupportedEvent, Message: "Unsupported event: %s."},

	// 2xxx: Room and Content Business Logic Errors
	ErrJoinFieldsRequired:    {Code: ErrJoinFieldsRequired, Message: "Username and room are required"},
	ErrUsernameTaken:         {Code: ErrUsernameTaken, Message: "Username is in use!"},
	ErrMessageContentTooLong: {Code: ErrMessageContentTooLong, Message: "Message is too long."},
	ErrProfanityRejected:     {Code: ErrProfanityRejected, Message: "Profanity is not allowed"},

	// 3xxx: Connection and Session Errors
	ErrAlreadyRegistered: {Code: ErrAlreadyRegistered, Message: "You have already joined a room."},
	ErrNotRegistered:     {Code: ErrNotRegistered, Message: "You must join a room first."},

	// 5xxx: Internal System Errors
	ErrUnknown:            {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrServiceUnavailable: {Code: ErrServiceUnavailable, Message: "Server is shutting down.", Status: http.StatusServiceUnavailable},
}
