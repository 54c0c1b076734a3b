package server

import (
	"context"
	"ctchen222/Tic-Tac-Toe-AI/internal/api/middleware"
	"ctchen222/Tic-Tac-Toe-AI/internal/api/response"
	"ctchen222/Tic-Tac-Toe-AI/internal/session"
	"ctchen222/Tic-Tac-Toe-AI/internal/validator"
	"ctchen222/Tic-Tac-Toe-AI/pkg/proto"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// handleGameSocket upgrades the connection and then answers every client message with the
// resulting game state, starting with the current one. Only moves and resets that changed the
// game are marked accepted.
func (s *Server) handleGameSocket(c *gin.Context) {
	id, playerID := c.Param("id"), middleware.PlayerID(c)
	ctx, span := tracer.Start(c.Request.Context(), "server.handleGameSocket", trace.WithAttributes(
		attribute.String("session.id", id),
		attribute.String("player.id", playerID),
	))
	defer span.End()

	current, err := s.games.Get(ctx, id, playerID)
	if err != nil {
		span.RecordError(err)
		switch {
		case errors.Is(err, session.ErrNotFound):
			response.ErrorResponse(c, http.StatusNotFound, err.Error())
		case errors.Is(err, session.ErrForbidden):
			response.ErrorResponse(c, http.StatusForbidden, err.Error())
		default:
			response.ErrorResponse(c, http.StatusInternalServerError, "internal error")
		}
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.WarnContext(ctx, "Failed to upgrade connection", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to upgrade connection")
		return
	}
	defer conn.Close()

	if err := conn.WriteJSON(update(current, false)); err != nil {
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.WarnContext(ctx, "game socket closed unexpectedly", "session.id", id, "error", err)
			}
			return
		}

		if err := conn.WriteJSON(s.handleMessage(ctx, id, playerID, data)); err != nil {
			slog.WarnContext(ctx, "failed to write to game socket", "session.id", id, "error", err)
			return
		}
	}
}

func (s *Server) handleMessage(ctx context.Context, id, playerID string, data []byte) *proto.ServerToClientMessage {
	var msg proto.ClientToServerMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return failure("malformed message")
	}
	if err := validator.Struct(&msg); err != nil {
		return failure(err.Error())
	}

	switch msg.Type {
	case proto.TypeMove:
		sess, err := s.games.Play(ctx, id, playerID, *msg.Position)
		if errors.Is(err, session.ErrIllegalMove) || errors.Is(err, session.ErrGameOver) {
			return s.state(ctx, id, playerID, false)
		}
		if err != nil {
			return failure(err.Error())
		}
		return update(sess, true)

	case proto.TypeReset:
		sess, err := s.games.Reset(ctx, id, playerID)
		if err != nil {
			return failure(err.Error())
		}
		return update(sess, true)

	default:
		return s.state(ctx, id, playerID, false)
	}
}

func (s *Server) state(ctx context.Context, id, playerID string, accepted bool) *proto.ServerToClientMessage {
	sess, err := s.games.Get(ctx, id, playerID)
	if err != nil {
		return failure(err.Error())
	}
	return update(sess, accepted)
}

func update(sess *session.Session, accepted bool) *proto.ServerToClientMessage {
	return &proto.ServerToClientMessage{Type: proto.TypeUpdate, State: proto.NewGameState(sess, accepted)}
}

func failure(reason string) *proto.ServerToClientMessage {
	return &proto.ServerToClientMessage{Type: proto.TypeError, Reason: reason}
}
