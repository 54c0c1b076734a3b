package main

import (
	"bufio"
	"bytes"
	"ctchen222/Tic-Tac-Toe-AI/internal/bot"
	"ctchen222/Tic-Tac-Toe-AI/internal/game"
	"strings"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func asciiOutput(buf *bytes.Buffer) *termenv.Output {
	return termenv.NewOutput(buf, termenv.WithProfile(termenv.Ascii))
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	board := game.Board{game.Computer, game.None, game.None, game.None, game.Human}

	got := render(asciiOutput(&buf), board, 0)
	want := " X | 2 | 3 \n" +
		"---+---+---\n" +
		" 4 | O | 6 \n" +
		"---+---+---\n" +
		" 7 | 8 | 9 \n"
	assert.Equal(t, want, got)
}

func TestPlay_SelfPlayDraws(t *testing.T) {
	for _, first := range []game.Mark{game.Computer, game.Human} {
		var buf bytes.Buffer
		p := &player{
			out:        asciiOutput(&buf),
			selector:   &bot.Selector{},
			difficulty: bot.Hard,
			selfPlay:   true,
		}
		require.NoError(t, p.play(first))
		assert.Contains(t, buf.String(), game.Draw.Message())
	}
}

func TestPlay_HumanInput(t *testing.T) {
	var buf bytes.Buffer
	// Junk and occupied cells are re-prompted; the rest is more moves than the game needs.
	input := "x\n5\n5\n1\n2\n3\n4\n6\n7\n8\n9\n"
	p := &player{
		out:        asciiOutput(&buf),
		in:         bufio.NewScanner(strings.NewReader(input)),
		selector:   &bot.Selector{},
		difficulty: bot.Hard,
	}
	require.NoError(t, p.play(game.Human))

	out := buf.String()
	assert.Contains(t, out, "Pick an empty cell between 1 and 9")
	// Perfect play never loses.
	assert.NotContains(t, out, game.HumanWin.Message())
}
