package controller

import (
	"context"
	"ctchen222/Tic-Tac-Toe-AI/internal/api/middleware"
	"ctchen222/Tic-Tac-Toe-AI/internal/api/models"
	"ctchen222/Tic-Tac-Toe-AI/internal/api/response"
	"ctchen222/Tic-Tac-Toe-AI/internal/bot"
	"ctchen222/Tic-Tac-Toe-AI/internal/session"
	"ctchen222/Tic-Tac-Toe-AI/pkg/proto"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// GameService is the part of session.Service the controller needs.
type GameService interface {
	Start(ctx context.Context, ownerID string, difficulty bot.Difficulty) (*session.Session, error)
	Get(ctx context.Context, id, ownerID string) (*session.Session, error)
	Play(ctx context.Context, id, ownerID string, cell int) (*session.Session, error)
	Reset(ctx context.Context, id, ownerID string) (*session.Session, error)
	Abandon(ctx context.Context, id, ownerID string) error
}

// GameController handles game-related HTTP requests.
type GameController struct {
	games GameService
}

// NewGameController creates a new GameController.
func NewGameController(games GameService) *GameController {
	return &GameController{games: games}
}

// Create starts a game with the requested difficulty.
func (gc *GameController) Create(c *gin.Context) {
	var req models.CreateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	s, err := gc.games.Start(c.Request.Context(), middleware.PlayerID(c), bot.Difficulty(req.Difficulty))
	if err != nil {
		gc.fail(c, err)
		return
	}
	response.SuccessResponse(c, proto.NewGameState(s, true))
}

// Get returns the current state of a game.
func (gc *GameController) Get(c *gin.Context) {
	s, err := gc.games.Get(c.Request.Context(), c.Param("id"), middleware.PlayerID(c))
	if err != nil {
		gc.fail(c, err)
		return
	}
	response.SuccessResponse(c, proto.NewGameState(s, false))
}

// Move plays the player's mark and the computer's reply. Illegal moves leave the game as it
// was and are answered with accepted=false.
func (gc *GameController) Move(c *gin.Context) {
	var req models.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx := c.Request.Context()
	id, playerID := c.Param("id"), middleware.PlayerID(c)

	s, err := gc.games.Play(ctx, id, playerID, *req.Cell)
	if errors.Is(err, session.ErrIllegalMove) || errors.Is(err, session.ErrGameOver) {
		current, getErr := gc.games.Get(ctx, id, playerID)
		if getErr != nil {
			gc.fail(c, getErr)
			return
		}
		response.SuccessResponse(c, proto.NewGameState(current, false))
		return
	}
	if err != nil {
		gc.fail(c, err)
		return
	}
	response.SuccessResponse(c, proto.NewGameState(s, true))
}

// Reset starts a new game in the same session.
func (gc *GameController) Reset(c *gin.Context) {
	s, err := gc.games.Reset(c.Request.Context(), c.Param("id"), middleware.PlayerID(c))
	if err != nil {
		gc.fail(c, err)
		return
	}
	response.SuccessResponse(c, proto.NewGameState(s, true))
}

// Delete abandons a game.
func (gc *GameController) Delete(c *gin.Context) {
	if err := gc.games.Abandon(c.Request.Context(), c.Param("id"), middleware.PlayerID(c)); err != nil {
		gc.fail(c, err)
		return
	}
	response.SuccessResponse(c, gin.H{"message": "Game deleted"})
}

func (gc *GameController) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		response.ErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, session.ErrForbidden):
		response.ErrorResponse(c, http.StatusForbidden, err.Error())
	case errors.Is(err, bot.ErrUnknownDifficulty):
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
	default:
		slog.ErrorContext(c.Request.Context(), "game request failed", "path", c.FullPath(), "error", err)
		response.ErrorResponse(c, http.StatusInternalServerError, "internal error")
	}
}
