package models

// CreateGameRequest starts a game against the computer.
type CreateGameRequest struct {
	Difficulty string `json:"difficulty" binding:"required,difficulty"`
}

// MoveRequest places the player's mark. Out of range cells are accepted here and ignored
// by the game like any other illegal move.
type MoveRequest struct {
	Cell *int `json:"cell" binding:"required"`
}
