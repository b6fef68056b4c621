package models

import "errors"

// Common errors
var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomNotLoaded   = errors.New("room state not loaded yet")
	ErrInvalidState    = errors.New("room state must be a JSON object")
	ErrUpdateInFlight  = errors.New("another room update is already in flight")
	ErrNotJoined       = errors.New("current user is not a participant of the room")
	ErrInvalidUserName = errors.New("invalid user name")
)
