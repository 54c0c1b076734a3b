package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, handlers ...gin.HandlerFunc) (int, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", handlers...)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return rr.Code, body
}

func TestEnvelopes(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		code, body := serve(t, func(c *gin.Context) { SuccessResponse(c, gin.H{"id": "abc"}) })
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, true, body["success"])
		assert.EqualValues(t, http.StatusOK, body["code"])
		assert.Equal(t, map[string]any{"id": "abc"}, body["extras"])
	})

	t.Run("Error", func(t *testing.T) {
		code, body := serve(t, func(c *gin.Context) { ErrorResponse(c, http.StatusNotFound, "game not found") })
		assert.Equal(t, http.StatusNotFound, code)
		assert.Equal(t, false, body["success"])
		assert.EqualValues(t, http.StatusNotFound, body["code"])
		assert.Equal(t, map[string]any{"message": "game not found"}, body["extras"])
	})

	t.Run("Abort stops the chain", func(t *testing.T) {
		reached := false
		code, body := serve(t,
			func(c *gin.Context) { Abort(c, NewError(false, http.StatusUnauthorized, "missing token")) },
			func(c *gin.Context) { reached = true },
		)
		assert.False(t, reached)
		assert.Equal(t, http.StatusUnauthorized, code)
		assert.Equal(t, "missing token", body["extras"])
	})
}
