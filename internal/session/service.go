package session

import (
	"context"
	"ctchen222/Tic-Tac-Toe-AI/internal/bot"
	"ctchen222/Tic-Tac-Toe-AI/internal/game"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("session")

// Service runs games between players and the computer. It owns the session state and is the
// only caller of the move selector.
type Service struct {
	store      Store
	selector   MoveSelector
	firstMover func() game.Mark
	now        func() time.Time
	meters     metric.MeterProvider

	computerMoves metric.Int64Counter
	selectTime    metric.Float64Histogram
	finished      metric.Int64Counter
}

// Option configures a Service.
type Option func(*Service)

// WithFirstMover replaces the coin flip deciding who opens each game.
func WithFirstMover(f func() game.Mark) Option {
	return func(s *Service) { s.firstMover = f }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMeterProvider records metrics on mp instead of the global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *Service) { s.meters = mp }
}

// NewService creates a new Service.
func NewService(store Store, selector MoveSelector, opts ...Option) *Service {
	s := &Service{
		store:      store,
		selector:   selector,
		firstMover: game.RandomFirstMover,
		now:        time.Now,
		meters:     otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.initMetrics()
	return s
}

func (s *Service) initMetrics() {
	meter := s.meters.Meter("session")
	fallback := noop.NewMeterProvider().Meter("session")

	var err error
	if s.computerMoves, err = meter.Int64Counter("game.computer_moves",
		metric.WithDescription("Moves played by the computer"),
	); err != nil {
		slog.Warn("failed to create computer moves counter", "error", err)
		s.computerMoves, _ = fallback.Int64Counter("game.computer_moves")
	}
	if s.selectTime, err = meter.Float64Histogram("game.move_selection.duration",
		metric.WithDescription("Time spent choosing the computer's move"),
		metric.WithUnit("ms"),
	); err != nil {
		slog.Warn("failed to create move selection histogram", "error", err)
		s.selectTime, _ = fallback.Float64Histogram("game.move_selection.duration")
	}
	if s.finished, err = meter.Int64Counter("game.finished",
		metric.WithDescription("Games that reached a final outcome"),
	); err != nil {
		slog.Warn("failed to create finished games counter", "error", err)
		s.finished, _ = fallback.Int64Counter("game.finished")
	}
}

// Start creates a new game. When the computer wins the coin flip it has already moved in
// the returned session.
func (s *Service) Start(ctx context.Context, ownerID string, difficulty bot.Difficulty) (*Session, error) {
	ctx, span := tracer.Start(ctx, "session.Start", trace.WithAttributes(
		attribute.String("player.id", ownerID),
		attribute.String("game.difficulty", string(difficulty)),
	))
	defer span.End()

	_, err := bot.ParseDifficulty(string(difficulty))
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	now := s.now()
	sess := &Session{
		ID:               uuid.NewString(),
		OwnerID:          ownerID,
		Difficulty:       difficulty,
		FirstMover:       s.firstMover(),
		LastComputerMove: NoMove,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	span.SetAttributes(attribute.String("session.id", sess.ID), attribute.String("game.first_mover", string(sess.FirstMover)))

	var selection time.Duration
	if sess.FirstMover == game.Computer {
		if selection, err = s.computerMove(ctx, sess); err != nil {
			recordError(span, err)
			return nil, err
		}
	}

	if err := s.store.Create(ctx, sess); err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("failed to create game: %w", err)
	}
	if sess.FirstMover == game.Computer {
		s.recordComputerMove(ctx, sess.Difficulty, selection)
	}

	slog.InfoContext(ctx, "game started", "session.id", sess.ID, "player.id", ownerID, "game.difficulty", difficulty, "game.first_mover", sess.FirstMover)
	return sess, nil
}

// Get returns the game if it belongs to ownerID.
func (s *Service) Get(ctx context.Context, id, ownerID string) (*Session, error) {
	ctx, span := tracer.Start(ctx, "session.Get", trace.WithAttributes(
		attribute.String("session.id", id),
	))
	defer span.End()

	sess, err := s.store.Find(ctx, id)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	if sess.OwnerID != ownerID {
		recordError(span, ErrForbidden)
		return nil, ErrForbidden
	}
	return sess, nil
}

// Play applies the human's move at cell and, if the game goes on, the computer's reply.
// Moves on occupied or out of range cells yield ErrIllegalMove, moves after the end ErrGameOver;
// in both cases the stored game is left untouched.
func (s *Service) Play(ctx context.Context, id, ownerID string, cell int) (*Session, error) {
	ctx, span := tracer.Start(ctx, "session.Play", trace.WithAttributes(
		attribute.String("session.id", id),
		attribute.Int("game.cell", cell),
	))
	defer span.End()

	// The store may run the closure more than once; only the attempt it keeps counts.
	var (
		moved     bool
		selection time.Duration
	)
	sess, err := s.store.Update(ctx, id, func(sess *Session) error {
		moved = false
		if sess.OwnerID != ownerID {
			return ErrForbidden
		}
		if sess.Outcome().IsTerminal() {
			return ErrGameOver
		}
		if sess.Turn() != game.Human || !game.IsLegalMove(sess.Board, cell) {
			return ErrIllegalMove
		}

		sess.Board[cell] = game.Human
		if sess.Outcome() == game.Ongoing {
			var err error
			if selection, err = s.computerMove(ctx, sess); err != nil {
				return err
			}
			moved = true
		}
		sess.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrIllegalMove) || errors.Is(err, ErrGameOver) {
			slog.DebugContext(ctx, "move ignored", "session.id", id, "game.cell", cell, "reason", err)
		} else {
			recordError(span, err)
		}
		return nil, err
	}

	if moved {
		s.recordComputerMove(ctx, sess.Difficulty, selection)
	}
	if outcome := sess.Outcome(); outcome.IsTerminal() {
		s.finished.Add(ctx, 1, metric.WithAttributes(
			attribute.String("game.outcome", string(outcome)),
			attribute.String("game.difficulty", string(sess.Difficulty)),
		))
		slog.InfoContext(ctx, "game finished", "session.id", id, "game.outcome", outcome, "game.difficulty", sess.Difficulty)
	}
	return sess, nil
}

// Reset clears the board for a new game with the same difficulty.
func (s *Service) Reset(ctx context.Context, id, ownerID string) (*Session, error) {
	ctx, span := tracer.Start(ctx, "session.Reset", trace.WithAttributes(
		attribute.String("session.id", id),
	))
	defer span.End()

	var (
		moved     bool
		selection time.Duration
	)
	sess, err := s.store.Update(ctx, id, func(sess *Session) error {
		moved = false
		if sess.OwnerID != ownerID {
			return ErrForbidden
		}
		sess.Board = game.Board{}
		sess.FirstMover = s.firstMover()
		sess.LastComputerMove = NoMove
		if sess.FirstMover == game.Computer {
			var err error
			if selection, err = s.computerMove(ctx, sess); err != nil {
				return err
			}
			moved = true
		}
		sess.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	if moved {
		s.recordComputerMove(ctx, sess.Difficulty, selection)
	}
	slog.InfoContext(ctx, "game reset", "session.id", id, "game.first_mover", sess.FirstMover)
	return sess, nil
}

// Abandon deletes the game.
func (s *Service) Abandon(ctx context.Context, id, ownerID string) error {
	ctx, span := tracer.Start(ctx, "session.Abandon", trace.WithAttributes(
		attribute.String("session.id", id),
	))
	defer span.End()

	if _, err := s.Get(ctx, id, ownerID); err != nil {
		recordError(span, err)
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		recordError(span, err)
		return fmt.Errorf("failed to delete game: %w", err)
	}
	return nil
}

// computerMove asks the selector for a move and applies it to sess. It returns the time spent
// selecting; metrics are left to the caller once the move is stored.
func (s *Service) computerMove(ctx context.Context, sess *Session) (time.Duration, error) {
	_, span := tracer.Start(ctx, "session.computerMove", trace.WithAttributes(
		attribute.String("game.difficulty", string(sess.Difficulty)),
	))
	defer span.End()

	started := time.Now()
	cell, err := s.selector.SelectMove(sess.Board, sess.Difficulty)
	elapsed := time.Since(started)
	if err != nil {
		recordError(span, err)
		return 0, fmt.Errorf("failed to select computer move: %w", err)
	}
	if err := sess.Board.Place(cell, game.Computer); err != nil {
		recordError(span, err)
		return 0, fmt.Errorf("selector returned cell %d: %w", cell, err)
	}

	sess.LastComputerMove = cell
	span.SetAttributes(attribute.Int("game.cell", cell))
	return elapsed, nil
}

func (s *Service) recordComputerMove(ctx context.Context, difficulty bot.Difficulty, selection time.Duration) {
	attrs := metric.WithAttributes(attribute.String("game.difficulty", string(difficulty)))
	s.computerMoves.Add(ctx, 1, attrs)
	s.selectTime.Record(ctx, float64(selection.Microseconds())/1000, attrs)
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
