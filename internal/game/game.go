package game

import (
	"errors"
	"math/rand/v2"
)

// Mark is the content of a single cell: empty, the computer's mark or the human's mark.
type Mark string

// Outcome classifies a board position. It is always derived from a Board, never stored.
type Outcome string

const (
	// Marks
	None     Mark = ""
	Computer Mark = "X"
	Human    Mark = "O"

	// Outcomes
	Ongoing     Outcome = "ongoing"
	ComputerWin Outcome = "computer_win"
	HumanWin    Outcome = "human_win"
	Draw        Outcome = "draw"

	// Board boundaries
	BorderMin = 0
	BorderMax = 8
	Cells     = 9
)

var (
	ErrInvalidPosition = errors.New("invalid position")
	ErrCellOccupied    = errors.New("cell already occupied")
	ErrInvalidMark     = errors.New("invalid mark")
)

// WinLines lists every index triple that wins the game: rows, columns, then diagonals.
var WinLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// Board is the 3x3 grid stored row-major, index 0 is top-left and 8 is bottom-right.
type Board [Cells]Mark

// Opponent returns the other player's mark. None has no opponent.
func (m Mark) Opponent() Mark {
	switch m {
	case Computer:
		return Human
	case Human:
		return Computer
	default:
		return None
	}
}

// IsTerminal reports whether the game is over.
func (o Outcome) IsTerminal() bool {
	return o == ComputerWin || o == HumanWin || o == Draw
}

// Message is the text shown to the player once the game is over.
func (o Outcome) Message() string {
	switch o {
	case ComputerWin:
		return "AI Wins 😈"
	case HumanWin:
		return "You Win 🎉"
	case Draw:
		return "Draw 🤝"
	default:
		return ""
	}
}

// Evaluate reports the outcome of the board. When several lines are complete the first one
// in WinLines order decides.
func Evaluate(b Board) Outcome {
	for _, line := range WinLines {
		first := b[line[0]]
		if first != None && first == b[line[1]] && first == b[line[2]] {
			if first == Computer {
				return ComputerWin
			}
			return HumanWin
		}
	}

	if IsBoardFull(b) {
		return Draw
	}
	return Ongoing
}

// IsLegalMove reports whether index is on the board and the cell is still empty.
func IsLegalMove(b Board, index int) bool {
	return index >= BorderMin && index <= BorderMax && b[index] == None
}

// IsBoardFull checks if no empty cell remains.
func IsBoardFull(b Board) bool {
	for _, cell := range b {
		if cell == None {
			return false
		}
	}
	return true
}

// EmptyCells returns the indices of all empty cells in ascending order.
func EmptyCells(b Board) []int {
	cells := make([]int, 0, Cells)
	for i, cell := range b {
		if cell == None {
			cells = append(cells, i)
		}
	}
	return cells
}

// Place marks the cell at index. It never overwrites a marked cell.
func (b *Board) Place(index int, mark Mark) error {
	if mark != Computer && mark != Human {
		return ErrInvalidMark
	}
	if index < BorderMin || index > BorderMax {
		return ErrInvalidPosition
	}
	if b[index] != None {
		return ErrCellOccupied
	}
	b[index] = mark
	return nil
}

// Mirror returns a copy of the board with the computer's and the human's marks swapped.
func (b Board) Mirror() Board {
	var mirrored Board
	for i, cell := range b {
		mirrored[i] = cell.Opponent()
	}
	return mirrored
}

// Count returns how many cells hold mark.
func (b Board) Count(mark Mark) int {
	n := 0
	for _, cell := range b {
		if cell == mark {
			n++
		}
	}
	return n
}

// RandomFirstMover picks who opens the game with equal probability.
func RandomFirstMover() Mark {
	if rand.IntN(2) == 0 {
		return Computer
	}
	return Human
}
