package repository

import (
	"context"
	"ctchen222/Tic-Tac-Toe-AI/internal/bot"
	"ctchen222/Tic-Tac-Toe-AI/internal/game"
	"ctchen222/Tic-Tac-Toe-AI/internal/session"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("repository.session")

// Redis hash fields of a session.
const (
	FieldOwner      = "owner_id"
	FieldBoard      = "board"
	FieldDifficulty = "difficulty"
	FieldFirstMover = "first_mover"
	FieldLastMove   = "last_move"
	FieldCreatedAt  = "created_at"
	FieldUpdatedAt  = "updated_at"
)

const maxUpdateAttempts = 5

// ErrConflict is returned when concurrent writers kept invalidating an update.
var ErrConflict = errors.New("session modified concurrently")

// RedisSessionRepository stores each session as a hash that expires after ttl without writes.
type RedisSessionRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisSessionRepository creates a new Redis-based session store.
func NewRedisSessionRepository(rdb *redis.Client, ttl time.Duration) *RedisSessionRepository {
	return &RedisSessionRepository{rdb: rdb, ttl: ttl}
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

// Create stores a new session.
func (r *RedisSessionRepository) Create(ctx context.Context, s *session.Session) error {
	ctx, span := tracer.Start(ctx, "SessionRepository.Create", trace.WithAttributes(
		attribute.String("session.id", s.ID),
	))
	defer span.End()

	fields, err := encode(s)
	if err != nil {
		return err
	}

	key := sessionKey(s.ID)
	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to create session in redis: %w", err)
	}
	return nil
}

// Find retrieves a session.
func (r *RedisSessionRepository) Find(ctx context.Context, id string) (*session.Session, error) {
	ctx, span := tracer.Start(ctx, "SessionRepository.Find", trace.WithAttributes(
		attribute.String("session.id", id),
	))
	defer span.End()

	data, err := r.rdb.HGetAll(ctx, sessionKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get session from redis: %w", err)
	}
	return decode(id, data)
}

// Update applies fn inside a WATCH transaction, retrying when another writer got in between.
func (r *RedisSessionRepository) Update(ctx context.Context, id string, fn func(s *session.Session) error) (*session.Session, error) {
	ctx, span := tracer.Start(ctx, "SessionRepository.Update", trace.WithAttributes(
		attribute.String("session.id", id),
	))
	defer span.End()

	key := sessionKey(id)
	var updated *session.Session

	txf := func(tx *redis.Tx) error {
		data, err := tx.HGetAll(ctx, key).Result()
		if err != nil {
			return err
		}
		s, err := decode(id, data)
		if err != nil {
			return err
		}
		if err := fn(s); err != nil {
			return err
		}
		fields, err := encode(s)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, fields)
			pipe.Expire(ctx, key, r.ttl)
			return nil
		})
		if err == nil {
			updated = s
		}
		return err
	}

	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		err := r.rdb.Watch(ctx, txf, key)
		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return nil, err
		}
		span.AddEvent("transaction conflict", trace.WithAttributes(attribute.Int("attempt", attempt)))
	}
	return nil, ErrConflict
}

// Delete removes a session.
func (r *RedisSessionRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "SessionRepository.Delete", trace.WithAttributes(
		attribute.String("session.id", id),
	))
	defer span.End()

	n, err := r.rdb.Del(ctx, sessionKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session from redis: %w", err)
	}
	if n == 0 {
		return session.ErrNotFound
	}
	return nil
}

func encode(s *session.Session) (map[string]any, error) {
	board, err := json.Marshal(s.Board)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal board: %w", err)
	}
	return map[string]any{
		FieldOwner:      s.OwnerID,
		FieldBoard:      board,
		FieldDifficulty: string(s.Difficulty),
		FieldFirstMover: string(s.FirstMover),
		FieldLastMove:   s.LastComputerMove,
		FieldCreatedAt:  s.CreatedAt.UTC().Format(time.RFC3339Nano),
		FieldUpdatedAt:  s.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}, nil
}

func decode(id string, data map[string]string) (*session.Session, error) {
	if len(data) == 0 {
		return nil, session.ErrNotFound
	}

	s := &session.Session{
		ID:         id,
		OwnerID:    data[FieldOwner],
		Difficulty: bot.Difficulty(data[FieldDifficulty]),
		FirstMover: game.Mark(data[FieldFirstMover]),
	}
	if err := json.Unmarshal([]byte(data[FieldBoard]), &s.Board); err != nil {
		return nil, fmt.Errorf("failed to unmarshal board: %w", err)
	}

	var err error
	if s.LastComputerMove, err = strconv.Atoi(data[FieldLastMove]); err != nil {
		return nil, fmt.Errorf("failed to parse last move: %w", err)
	}
	if s.CreatedAt, err = time.Parse(time.RFC3339Nano, data[FieldCreatedAt]); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if s.UpdatedAt, err = time.Parse(time.RFC3339Nano, data[FieldUpdatedAt]); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return s, nil
}
