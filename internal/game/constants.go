package game

const (
	// MinVoters is the number of active players required to open a vote
	MinVoters = 2

	// Survivors is how many active players remain when the game is over
	Survivors = 1

	// RoomCodeLength is the length of generated room codes
	RoomCodeLength = 6

	// RoomCodeChars are the characters used for generating room codes (excluding ambiguous chars)
	RoomCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)
