package entity

import "time"

// GameSnapshot is a detached copy of a game's state, safe to hand to other goroutines.
type GameSnapshot struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	Board       Grid      `json:"board"`
	Players     []Player  `json:"players"`
	IsFinished  bool      `json:"isFinished"`
	Winner      Cell      `json:"winner"`
	CurrentTurn Cell      `json:"currentTurn"`
}

// MoveOutcome is returned for every accepted move.
type MoveOutcome struct {
	Winner     Cell         `json:"winner"`
	IsFinished bool         `json:"isFinished"`
	State      GameSnapshot `json:"state"`
}
