package repository

import (
	"context"
	"ctchen222/Tic-Tac-Toe-AI/internal/bot"
	"ctchen222/Tic-Tac-Toe-AI/internal/game"
	"ctchen222/Tic-Tac-Toe-AI/internal/session"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func newSession(id string) *session.Session {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &session.Session{
		ID:               id,
		OwnerID:          "player-1",
		Board:            game.Board{game.Computer, game.None, game.None, game.None, game.Human},
		Difficulty:       bot.Hard,
		FirstMover:       game.Computer,
		LastComputerMove: 0,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// runStoreTests checks the behaviour every session.Store must share.
func runStoreTests(t *testing.T, store session.Store) {
	ctx := context.Background()

	t.Run("Create then Find", func(t *testing.T) {
		s := newSession("find")
		require.NoError(t, store.Create(ctx, s))

		got, err := store.Find(ctx, "find")
		require.NoError(t, err)
		assert.Equal(t, s.OwnerID, got.OwnerID)
		assert.Equal(t, s.Board, got.Board)
		assert.Equal(t, s.Difficulty, got.Difficulty)
		assert.Equal(t, s.FirstMover, got.FirstMover)
		assert.Equal(t, s.LastComputerMove, got.LastComputerMove)
		assert.True(t, s.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("Find missing", func(t *testing.T) {
		_, err := store.Find(ctx, "missing")
		assert.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("Update applies fn", func(t *testing.T) {
		require.NoError(t, store.Create(ctx, newSession("update")))

		updated, err := store.Update(ctx, "update", func(s *session.Session) error {
			s.Board[8] = game.Human
			s.LastComputerMove = 2
			s.Board[2] = game.Computer
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, game.Human, updated.Board[8])

		got, err := store.Find(ctx, "update")
		require.NoError(t, err)
		assert.Equal(t, updated.Board, got.Board)
		assert.Equal(t, 2, got.LastComputerMove)
	})

	t.Run("Update discards changes when fn fails", func(t *testing.T) {
		s := newSession("rollback")
		require.NoError(t, store.Create(ctx, s))

		boom := errors.New("boom")
		_, err := store.Update(ctx, "rollback", func(s *session.Session) error {
			s.Board[8] = game.Human
			return boom
		})
		assert.ErrorIs(t, err, boom)

		got, err := store.Find(ctx, "rollback")
		require.NoError(t, err)
		assert.Equal(t, s.Board, got.Board)
	})

	t.Run("Update missing", func(t *testing.T) {
		_, err := store.Update(ctx, "missing", func(s *session.Session) error { return nil })
		assert.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("Concurrent updates are serialised", func(t *testing.T) {
		require.NoError(t, store.Create(ctx, &session.Session{ID: "counter", LastComputerMove: 0}))

		var wg sync.WaitGroup
		for range 4 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := store.Update(ctx, "counter", func(s *session.Session) error {
					s.LastComputerMove++
					return nil
				})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		got, err := store.Find(ctx, "counter")
		require.NoError(t, err)
		assert.Equal(t, 4, got.LastComputerMove)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Create(ctx, newSession("delete")))
		require.NoError(t, store.Delete(ctx, "delete"))

		_, err := store.Find(ctx, "delete")
		assert.ErrorIs(t, err, session.ErrNotFound)
		assert.ErrorIs(t, store.Delete(ctx, "delete"), session.ErrNotFound)
	})
}

func TestMemorySessionRepository(t *testing.T) {
	runStoreTests(t, NewMemorySessionRepository())
}

func TestRedisSessionRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	connStr, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(connStr)
	require.NoError(t, err)

	rdb := redis.NewClient(opts)
	t.Cleanup(func() { rdb.Close() })

	repo := NewRedisSessionRepository(rdb, time.Minute)
	runStoreTests(t, repo)

	t.Run("Writes refresh the TTL", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, newSession("ttl")))
		ttl, err := rdb.TTL(ctx, sessionKey("ttl")).Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
		assert.LessOrEqual(t, ttl, time.Minute)
	})
}
