package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe3d/internal/apperror"
	"github.com/rocketscienceinc/tictactoe3d/internal/tictactoe"
)

// GameRepository keeps games in memory. Every access to a game goes through the
// game's own mutex, so at most one call touches an instance at a time.
type GameRepository interface {
	Create(ctx context.Context, game *tictactoe.Game) error
	Update(ctx context.Context, id string, fn func(game *tictactoe.Game) error) error
	View(ctx context.Context, id string, fn func(game *tictactoe.Game) error) error
	DeleteByID(ctx context.Context, id string) error
	DeleteIdle(ctx context.Context, before time.Time) []string
	Count() int
}

type record struct {
	mu        sync.Mutex
	game      *tictactoe.Game
	updatedAt time.Time
}

type memoryGames struct {
	mu    sync.RWMutex
	games map[string]*record
	now   func() time.Time
}

func NewGameRepository() GameRepository {
	return newGameRepository(time.Now)
}

func newGameRepository(now func() time.Time) *memoryGames {
	return &memoryGames{
		games: make(map[string]*record),
		now:   now,
	}
}

func (that *memoryGames) Create(_ context.Context, game *tictactoe.Game) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, exists := that.games[game.ID()]; exists {
		return fmt.Errorf("%w: %s", apperror.ErrGameAlreadyExists, game.ID())
	}

	that.games[game.ID()] = &record{game: game, updatedAt: that.now()}

	return nil
}

// Update runs fn under the game's lock and marks the game as recently used.
func (that *memoryGames) Update(ctx context.Context, id string, fn func(game *tictactoe.Game) error) error {
	return that.with(ctx, id, true, fn)
}

// View runs fn under the game's lock. Reads share the lock with mutations so a
// reader never sees a move half applied.
func (that *memoryGames) View(ctx context.Context, id string, fn func(game *tictactoe.Game) error) error {
	return that.with(ctx, id, false, fn)
}

func (that *memoryGames) with(ctx context.Context, id string, touch bool, fn func(game *tictactoe.Game) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rec, err := that.get(id)
	if err != nil {
		return err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if touch {
		rec.updatedAt = that.now()
	}

	return fn(rec.game)
}

func (that *memoryGames) get(id string) (*record, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	rec, ok := that.games[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrGameNotFound, id)
	}

	return rec, nil
}

func (that *memoryGames) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.games[id]; !ok {
		return fmt.Errorf("%w: %s", apperror.ErrGameNotFound, id)
	}

	delete(that.games, id)

	return nil
}

// DeleteIdle evicts games not updated since before and returns their ids.
func (that *memoryGames) DeleteIdle(_ context.Context, before time.Time) []string {
	that.mu.Lock()
	defer that.mu.Unlock()

	var evicted []string
	for id, rec := range that.games {
		rec.mu.Lock()
		idle := rec.updatedAt.Before(before)
		rec.mu.Unlock()

		if idle {
			delete(that.games, id)
			evicted = append(evicted, id)
		}
	}

	return evicted
}

func (that *memoryGames) Count() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.games)
}
