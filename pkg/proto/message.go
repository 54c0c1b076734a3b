package proto

import (
	"ctchen222/Tic-Tac-Toe-AI/internal/bot"
	"ctchen222/Tic-Tac-Toe-AI/internal/game"
	"ctchen222/Tic-Tac-Toe-AI/internal/session"
)

// Client message types.
const (
	TypeMove  = "move"
	TypeReset = "reset"
	TypeState = "state"
)

// Server message types.
const (
	TypeUpdate = "update"
	TypeError  = "error"
)

// ClientToServerMessage represents a message from the client to the server.
type ClientToServerMessage struct {
	Type     string `json:"type" validate:"required,oneof=move reset state"`
	Position *int   `json:"position,omitempty" validate:"required_if=Type move"`
}

// ServerToClientMessage represents a message from the server to the client.
type ServerToClientMessage struct {
	Type   string     `json:"type"`
	Reason string     `json:"reason,omitempty"`
	State  *GameState `json:"state,omitempty"`
}

// GameState is what clients see of a session.
type GameState struct {
	ID               string         `json:"id"`
	Board            game.Board     `json:"board"`
	Difficulty       bot.Difficulty `json:"difficulty"`
	FirstMover       game.Mark      `json:"first_mover"`
	Turn             game.Mark      `json:"turn"`
	Outcome          game.Outcome   `json:"outcome"`
	Message          string         `json:"message,omitempty"`
	LastComputerMove *int           `json:"last_computer_move,omitempty"`
	Accepted         bool           `json:"accepted"`
}

// NewGameState builds the client view of s. accepted tells whether the request that produced
// it changed the game.
func NewGameState(s *session.Session, accepted bool) *GameState {
	outcome := s.Outcome()
	state := &GameState{
		ID:         s.ID,
		Board:      s.Board,
		Difficulty: s.Difficulty,
		FirstMover: s.FirstMover,
		Turn:       s.Turn(),
		Outcome:    outcome,
		Message:    outcome.Message(),
		Accepted:   accepted,
	}
	if s.LastComputerMove != session.NoMove {
		cell := s.LastComputerMove
		state.LastComputerMove = &cell
	}
	return state
}
