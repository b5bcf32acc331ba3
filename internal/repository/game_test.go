package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe3d/internal/apperror"
	"github.com/rocketscienceinc/tictactoe3d/internal/entity"
	"github.com/rocketscienceinc/tictactoe3d/internal/tictactoe"
)

var errBoom = errors.New("boom")

func TestGameRepository_Create(t *testing.T) {
	ctx := context.Background()
	repo := NewGameRepository()

	// Given: a stored game
	require.NoError(t, repo.Create(ctx, tictactoe.NewGame("g1")))

	// When: a game with the same id is created
	err := repo.Create(ctx, tictactoe.NewGame("g1"))

	// Then: it is rejected
	require.ErrorIs(t, err, apperror.ErrGameAlreadyExists)
	assert.Equal(t, 1, repo.Count())
}

func TestGameRepository_UpdateAndView(t *testing.T) {
	ctx := context.Background()

	t.Run("Update mutates the stored game", func(t *testing.T) {
		repo := NewGameRepository()
		require.NoError(t, repo.Create(ctx, tictactoe.NewGame("g1")))

		err := repo.Update(ctx, "g1", func(game *tictactoe.Game) error {
			_, err := game.JoinPlayer("p1")
			return err
		})
		require.NoError(t, err)

		var players []entity.Player
		err = repo.View(ctx, "g1", func(game *tictactoe.Game) error {
			players = game.Players()
			return nil
		})
		require.NoError(t, err)
		assert.Len(t, players, 1)
	})

	t.Run("Callback error is returned", func(t *testing.T) {
		repo := NewGameRepository()
		require.NoError(t, repo.Create(ctx, tictactoe.NewGame("g1")))

		err := repo.Update(ctx, "g1", func(*tictactoe.Game) error { return errBoom })

		require.ErrorIs(t, err, errBoom)
	})

	t.Run("Unknown game", func(t *testing.T) {
		repo := NewGameRepository()

		err := repo.Update(ctx, "nope", func(*tictactoe.Game) error { return nil })
		require.ErrorIs(t, err, apperror.ErrGameNotFound)

		err = repo.View(ctx, "nope", func(*tictactoe.Game) error { return nil })
		require.ErrorIs(t, err, apperror.ErrGameNotFound)
	})

	t.Run("Canceled context", func(t *testing.T) {
		repo := NewGameRepository()
		require.NoError(t, repo.Create(ctx, tictactoe.NewGame("g1")))

		canceled, cancel := context.WithCancel(ctx)
		cancel()

		err := repo.Update(canceled, "g1", func(*tictactoe.Game) error { return nil })
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestGameRepository_SerializesMutations(t *testing.T) {
	ctx := context.Background()
	repo := NewGameRepository()
	require.NoError(t, repo.Create(ctx, tictactoe.NewGame("g1")))
	require.NoError(t, repo.Update(ctx, "g1", func(game *tictactoe.Game) error {
		_, err := game.JoinPlayer("solo")
		return err
	}))

	// When: every cell is played concurrently by the solo player
	var wg sync.WaitGroup
	for z := 0; z < entity.BoardSize; z++ {
		for y := 0; y < entity.BoardSize; y++ {
			for x := 0; x < entity.BoardSize; x++ {
				wg.Add(1)
				go func(pos entity.Position) {
					defer wg.Done()
					_ = repo.Update(ctx, "g1", func(game *tictactoe.Game) error {
						player, _ := game.Player("solo")
						_, err := game.MakeMove(player, pos)
						return err
					})
				}(entity.Position{X: x, Y: y, Z: z})
			}
		}
	}
	wg.Wait()

	// Then: the game reached a consistent finished state
	var state entity.GameSnapshot
	require.NoError(t, repo.View(ctx, "g1", func(game *tictactoe.Game) error {
		state = game.Serialize()
		return nil
	}))
	assert.True(t, state.IsFinished)
	assert.True(t, state.Winner.IsSymbol())
}

func TestGameRepository_DeleteByID(t *testing.T) {
	ctx := context.Background()
	repo := NewGameRepository()
	require.NoError(t, repo.Create(ctx, tictactoe.NewGame("g1")))

	require.NoError(t, repo.DeleteByID(ctx, "g1"))
	require.ErrorIs(t, repo.DeleteByID(ctx, "g1"), apperror.ErrGameNotFound)
	assert.Zero(t, repo.Count())
}

func TestGameRepository_DeleteIdle(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	now := start

	repo := newGameRepository(func() time.Time { return now })
	require.NoError(t, repo.Create(ctx, tictactoe.NewGame("old")))
	require.NoError(t, repo.Create(ctx, tictactoe.NewGame("busy")))

	// Given: only "busy" is used after an hour
	now = start.Add(time.Hour)
	require.NoError(t, repo.Update(ctx, "busy", func(*tictactoe.Game) error { return nil }))

	// When: games idle since before 30 minutes in are evicted
	evicted := repo.DeleteIdle(ctx, start.Add(30*time.Minute))

	// Then: only "old" is gone
	assert.Equal(t, []string{"old"}, evicted)
	assert.Equal(t, 1, repo.Count())
}
