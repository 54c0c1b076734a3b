package session

import (
	"context"
	"ctchen222/Tic-Tac-Toe-AI/internal/bot"
	"ctchen222/Tic-Tac-Toe-AI/internal/game"
	"errors"
	"time"
)

var (
	ErrNotFound    = errors.New("game not found")
	ErrForbidden   = errors.New("game belongs to another player")
	ErrGameOver    = errors.New("game already finished")
	ErrIllegalMove = errors.New("illegal move")
)

// NoMove marks LastComputerMove before the computer has played.
const NoMove = -1

// Session is one game between a player and the computer.
type Session struct {
	ID               string
	OwnerID          string
	Board            game.Board
	Difficulty       bot.Difficulty
	FirstMover       game.Mark
	LastComputerMove int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Outcome is derived from the board on every call.
func (s *Session) Outcome() game.Outcome {
	return game.Evaluate(s.Board)
}

// Turn returns the mark expected to move next, or None once the game is over.
func (s *Session) Turn() game.Mark {
	if s.Outcome().IsTerminal() {
		return game.None
	}
	// Both sides alternate, so the first mover is to play whenever the counts are even.
	if s.Board.Count(game.Computer) == s.Board.Count(game.Human) {
		return s.FirstMover
	}
	return s.FirstMover.Opponent()
}

//go:generate mockgen -destination=mocks/mock_store.go -package=mocks ctchen222/Tic-Tac-Toe-AI/internal/session Store

// Store persists sessions. Update applies fn atomically to the stored session; if fn returns
// an error nothing is written and the error is returned as is.
type Store interface {
	Create(ctx context.Context, s *Session) error
	Find(ctx context.Context, id string) (*Session, error)
	Update(ctx context.Context, id string, fn func(s *Session) error) (*Session, error)
	Delete(ctx context.Context, id string) error
}

// MoveSelector picks the computer's move.
type MoveSelector interface {
	SelectMove(board game.Board, difficulty bot.Difficulty) (int, error)
}
