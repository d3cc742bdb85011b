package model

import "errors"

// Common errors used across the application
var (
	// Room errors
	ErrRoomNotFound  = errors.New("room not found")
	ErrRoomFull      = errors.New("room is full")
	ErrAlreadyInRoom = errors.New("player is already in a room")

	// Player errors
	ErrPlayerNotInRoom = errors.New("player is not in room")
)
