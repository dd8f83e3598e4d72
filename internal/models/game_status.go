package models

// GameStatus represents the lifecycle state of a session
type GameStatus string

const (
	StatusNotStarted GameStatus = "not_started"
	StatusInProgress GameStatus = "in_progress"
	StatusFinished   GameStatus = "finished"
)
