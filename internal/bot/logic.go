package bot

import (
	"ctchen222/Tic-Tac-Toe-AI/internal/game"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

// Difficulty selects the strategy the computer plays with.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Minimax scores of terminal positions, from the computer's point of view.
const (
	ScoreComputerWin = 10
	ScoreHumanWin    = -10
	ScoreDraw        = 0
)

var (
	ErrNoMove            = errors.New("no move available: game is not ongoing")
	ErrUnknownDifficulty = errors.New("unknown difficulty")
)

// ParseDifficulty converts user input into a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(s); d {
	case Easy, Medium, Hard:
		return d, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
	}
}

// Selector picks moves for the computer. The zero value uses the global random source.
// A Selector built with NewSelector is not safe for concurrent use.
type Selector struct {
	rng *rand.Rand
}

// NewSelector creates a Selector drawing its random choices from src.
func NewSelector(src rand.Source) *Selector {
	return &Selector{rng: rand.New(src)}
}

var defaultSelector = &Selector{}

// SelectComputerMove returns the cell the computer marks next, using the global random source.
func SelectComputerMove(board game.Board, difficulty Difficulty) (int, error) {
	return defaultSelector.SelectMove(board, difficulty)
}

// SelectMove returns the cell the computer marks next. The board must be ongoing; anything
// else yields ErrNoMove. Unknown difficulties are played as Hard.
func (s *Selector) SelectMove(board game.Board, difficulty Difficulty) (int, error) {
	if game.Evaluate(board) != game.Ongoing {
		return -1, ErrNoMove
	}

	switch difficulty {
	case Easy:
		return s.randomMove(board), nil
	case Medium:
		return s.heuristicMove(board), nil
	default:
		return bestMove(board), nil
	}
}

func (s *Selector) intN(n int) int {
	if s.rng == nil {
		return rand.IntN(n)
	}
	return s.rng.IntN(n)
}

// randomMove picks any empty cell uniformly.
func (s *Selector) randomMove(board game.Board) int {
	empty := game.EmptyCells(board)
	if len(empty) == 0 {
		return -1
	}
	return empty[s.intN(len(empty))]
}

// heuristicMove will win if it can, block if it must, otherwise move randomly.
func (s *Selector) heuristicMove(board game.Board) int {
	if cell, ok := findWinningMove(&board, game.Computer); ok {
		return cell
	}
	if cell, ok := findWinningMove(&board, game.Human); ok {
		return cell
	}
	return s.randomMove(board)
}

// findWinningMove returns the first empty cell, in ascending order, that wins the game
// outright for mark.
func findWinningMove(board *game.Board, mark game.Mark) (int, bool) {
	want := game.ComputerWin
	if mark == game.Human {
		want = game.HumanWin
	}

	for i, cell := range board {
		if cell != game.None {
			continue
		}
		board[i] = mark
		won := game.Evaluate(*board) == want
		board[i] = game.None
		if won {
			return i, true
		}
	}
	return -1, false
}

// bestMove plays the cell with the highest minimax score. Ties keep the lowest index.
func bestMove(board game.Board) int {
	bestScore := math.MinInt
	move := -1
	for i, cell := range board {
		if cell != game.None {
			continue
		}
		board[i] = game.Computer
		score := Minimax(&board, false)
		board[i] = game.None
		if score > bestScore {
			bestScore = score
			move = i
		}
	}
	return move
}

// Minimax scores the position assuming both sides play perfectly from here on. Wins are
// worth the same at any depth. The board is restored before Minimax returns.
func Minimax(board *game.Board, computerToMove bool) int {
	switch game.Evaluate(*board) {
	case game.ComputerWin:
		return ScoreComputerWin
	case game.HumanWin:
		return ScoreHumanWin
	case game.Draw:
		return ScoreDraw
	}

	if computerToMove {
		best := math.MinInt
		for i, cell := range board {
			if cell != game.None {
				continue
			}
			board[i] = game.Computer
			best = max(best, Minimax(board, false))
			board[i] = game.None
		}
		return best
	}

	best := math.MaxInt
	for i, cell := range board {
		if cell != game.None {
			continue
		}
		board[i] = game.Human
		best = min(best, Minimax(board, true))
		board[i] = game.None
	}
	return best
}
