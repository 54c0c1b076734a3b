package server

import (
	"ctchen222/Tic-Tac-Toe-AI/internal/api/controller"
	"ctchen222/Tic-Tac-Toe-AI/internal/api/middleware"
	"ctchen222/Tic-Tac-Toe-AI/internal/api/service"
	appvalidator "ctchen222/Tic-Tac-Toe-AI/internal/validator"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("server")

type Server struct {
	engine   *gin.Engine
	games    controller.GameService
	upgrader websocket.Upgrader
}

// NewServer wires the HTTP API and the WebSocket channel.
func NewServer(games controller.GameService, userController *controller.UserController, tokens *service.TokenIssuer) *Server {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := appvalidator.RegisterCustom(v); err != nil {
			slog.Error("failed to register custom validations", "error", err)
		}
	}

	s := &Server{
		engine: gin.New(),
		games:  games,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	s.engine.Use(gin.Recovery(), requestLogger())

	gameController := controller.NewGameController(games)

	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := s.engine.Group("/api/auth")
	auth.POST("/register", userController.Register)
	auth.POST("/login", userController.Login)
	auth.POST("/guest", userController.GuestLogin)

	api := s.engine.Group("/api/games", middleware.RequireAuth(tokens))
	api.POST("", gameController.Create)
	api.GET("/:id", gameController.Get)
	api.POST("/:id/moves", gameController.Move)
	api.POST("/:id/reset", gameController.Reset)
	api.DELETE("/:id", gameController.Delete)

	s.engine.GET("/ws/games/:id", middleware.RequireAuth(tokens), s.handleGameSocket)

	return s
}

// Engine exposes the router to the http.Server.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.InfoContext(c.Request.Context(), "http request",
			"http.method", c.Request.Method,
			"http.route", c.FullPath(),
			"http.status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
