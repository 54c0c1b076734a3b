package middleware

import (
	"ctchen222/Tic-Tac-Toe-AI/internal/api/response"
	"ctchen222/Tic-Tac-Toe-AI/internal/api/service"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const playerIDKey = "player_id"

// RequireAuth rejects requests without a valid token. The token comes from the
// Authorization header, or from the token query parameter for WebSocket upgrades.
func RequireAuth(tokens *service.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok {
			raw = c.Query("token")
		}
		if raw == "" {
			response.Abort(c, response.NewError(false, http.StatusUnauthorized, "missing token"))
			return
		}

		claims, err := tokens.Parse(raw)
		if err != nil {
			response.Abort(c, response.NewError(false, http.StatusUnauthorized, err.Error()))
			return
		}

		c.Set(playerIDKey, claims.Subject)
		c.Next()
	}
}

// PlayerID returns the authenticated player id.
func PlayerID(c *gin.Context) string {
	return c.GetString(playerIDKey)
}
