package domain

// RoomStatus tracks which phase of a round a room is in.
type RoomStatus string

const (
	RoomStatusInGame  RoomStatus = "IN_GAME"
	RoomStatusVoting  RoomStatus = "VOTING"
	RoomStatusResults RoomStatus = "RESULTS"
)

// Winner identifies which side took the round, if any.
type Winner string

const (
	WinnerNone     Winner = ""
	WinnerPlayers  Winner = "PLAYERS"
	WinnerImpostor Winner = "IMPOSTOR"
)

const (
	WinReasonImpostorEliminated = "impostor_eliminated"
	WinReasonImpostorSurvived   = "impostor_survived"
)

// MaskedWord is what the impostor sees instead of the secret word.
const MaskedWord = "???"
