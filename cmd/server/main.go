package main

import (
	"context"
	"ctchen222/Tic-Tac-Toe-AI/internal/api/controller"
	apirepository "ctchen222/Tic-Tac-Toe-AI/internal/api/repository"
	"ctchen222/Tic-Tac-Toe-AI/internal/api/service"
	"ctchen222/Tic-Tac-Toe-AI/internal/bot"
	"ctchen222/Tic-Tac-Toe-AI/internal/config"
	"ctchen222/Tic-Tac-Toe-AI/internal/db"
	"ctchen222/Tic-Tac-Toe-AI/internal/logger"
	"ctchen222/Tic-Tac-Toe-AI/internal/repository"
	"ctchen222/Tic-Tac-Toe-AI/internal/server"
	"ctchen222/Tic-Tac-Toe-AI/internal/session"
	"ctchen222/Tic-Tac-Toe-AI/internal/telemetry"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize telemetry
	shutdown, err := telemetry.InitOtel(ctx, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			log.Printf("Error shutting down telemetry: %v", err)
		}
	}()

	logger.Init(cfg.SlogLevel())

	// Session store
	var store session.Store
	switch cfg.SessionStore {
	case "memory":
		store = repository.NewMemorySessionRepository()
	default:
		rdb, err := db.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			log.Fatalf("failed to initialize redis: %v", err)
		}
		defer rdb.Close()
		store = repository.NewRedisSessionRepository(rdb, cfg.SessionTTL)
	}
	slog.Info("Session store ready", "store", cfg.SessionStore)

	// Initialize SQLite DB
	DB, err := db.Connect(cfg.SQLitePath)
	if err != nil {
		log.Fatalf("failed to get sqlite db connection: %v", err)
	}
	defer DB.Close()
	if err := db.InitializeDB(DB); err != nil {
		log.Fatalf("failed to initialize sqlite db: %v", err)
	}

	tokens := service.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	userService := service.NewUserService(apirepository.NewUserRepository(DB), tokens)
	userController := controller.NewUserController(userService)

	// The zero Selector draws from the global source and is safe to share between requests.
	games := session.NewService(store, &bot.Selector{})

	srv := server.NewServer(games, userController, tokens)

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: otelhttp.NewHandler(srv.Engine(), "http.server"),
	}

	go func() {
		slog.Info("http server started", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	<-stop

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		return
	}

	slog.Info("Server exiting")
}
