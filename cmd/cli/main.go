package main

import (
	"bufio"
	"ctchen222/Tic-Tac-Toe-AI/internal/bot"
	"ctchen222/Tic-Tac-Toe-AI/internal/game"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/muesli/termenv"
)

var (
	difficultyFlag = flag.String("difficulty", string(bot.Hard), "computer strength: easy, medium or hard")
	selfPlayFlag   = flag.Bool("selfplay", false, "let the computer play both sides")
)

func main() {
	flag.Parse()

	difficulty, err := bot.ParseDifficulty(*difficultyFlag)
	if err != nil {
		log.Fatal(err)
	}

	out := termenv.NewOutput(os.Stdout)
	p := &player{
		out:        out,
		in:         bufio.NewScanner(os.Stdin),
		selector:   &bot.Selector{},
		difficulty: difficulty,
		selfPlay:   *selfPlayFlag,
	}
	if err := p.play(game.RandomFirstMover()); err != nil {
		log.Fatal(err)
	}
}

type player struct {
	out        *termenv.Output
	in         *bufio.Scanner
	selector   *bot.Selector
	difficulty bot.Difficulty
	selfPlay   bool
}

// play runs one game to the end and prints the result.
func (p *player) play(first game.Mark) error {
	var board game.Board
	turn := first
	last := -1

	fmt.Fprintf(p.out, "%s plays first\n", p.mark(first))
	for game.Evaluate(board) == game.Ongoing {
		fmt.Fprintln(p.out, render(p.out, board, last))

		cell, err := p.next(board, turn)
		if err != nil {
			return err
		}
		if err := board.Place(cell, turn); err != nil {
			fmt.Fprintln(p.out, p.out.String(err.Error()).Faint())
			continue
		}
		if turn == game.Computer {
			last = cell
		}
		turn = turn.Opponent()
	}

	fmt.Fprintln(p.out, render(p.out, board, last))
	fmt.Fprintln(p.out, p.out.String(game.Evaluate(board).Message()).Bold())
	return nil
}

// next asks whoever is on turn for a cell.
func (p *player) next(board game.Board, turn game.Mark) (int, error) {
	switch {
	case turn == game.Computer:
		return p.selector.SelectMove(board, p.difficulty)
	case p.selfPlay:
		// The selector only plays Computer, so let it answer on the swapped board.
		return p.selector.SelectMove(board.Mirror(), p.difficulty)
	}

	for {
		fmt.Fprint(p.out, "Your move (1-9): ")
		if !p.in.Scan() {
			if err := p.in.Err(); err != nil {
				return -1, err
			}
			return -1, io.EOF
		}
		n, err := strconv.Atoi(strings.TrimSpace(p.in.Text()))
		if err != nil || !game.IsLegalMove(board, n-1) {
			fmt.Fprintln(p.out, p.out.String("Pick an empty cell between 1 and 9").Faint())
			continue
		}
		return n - 1, nil
	}
}

func (p *player) mark(m game.Mark) string {
	return markStyle(p.out, m, false)
}

// render draws the board; empty cells show their 1-9 key and the computer's last move is
// underlined.
func render(out *termenv.Output, board game.Board, last int) string {
	var sb strings.Builder
	for row := 0; row < 3; row++ {
		if row > 0 {
			sb.WriteString("---+---+---\n")
		}
		for col := 0; col < 3; col++ {
			idx := row*3 + col
			if col > 0 {
				sb.WriteString("|")
			}
			cell := out.String(strconv.Itoa(idx + 1)).Faint().String()
			if board[idx] != game.None {
				cell = markStyle(out, board[idx], idx == last)
			}
			sb.WriteString(" " + cell + " ")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func markStyle(out *termenv.Output, m game.Mark, highlight bool) string {
	style := out.String(string(m)).Bold()
	switch m {
	case game.Computer:
		style = style.Foreground(out.Color("#E88388"))
	case game.Human:
		style = style.Foreground(out.Color("#71BEF2"))
	}
	if highlight {
		style = style.Underline()
	}
	return style.String()
}
