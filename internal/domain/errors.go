package domain

import "errors"

// Room and player errors
var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrPlayerNotFound = errors.New("player not found in room")
	ErrInvalidName    = errors.New("player name cannot be blank")
	ErrNotAdmin       = errors.New("only the room admin can perform this action")
	ErrPlayerDead     = errors.New("eliminated players cannot perform this action")
)

// Voting errors
var (
	ErrAlreadyVoted  = errors.New("player has already voted this phase")
	ErrInvalidTarget = errors.New("vote target is not an alive player in this room")
	ErrWrongPhase    = errors.New("room is not in the right phase for this action")
)

// Content pool errors
var (
	ErrEmptyPool     = errors.New("no active items in content pool")
	ErrWordNotFound  = errors.New("word not found")
	ErrThemeNotFound = errors.New("theme not found")
	ErrItemNotFound  = errors.New("content item reference no longer resolves")
)
