package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tictactoe3d/internal/entity"
)

const subscriberBuffer = 16

type subscriber struct {
	ch        chan entity.Event
	done      chan struct{}
	closeOnce sync.Once
}

func (that *subscriber) close() {
	that.closeOnce.Do(func() {
		close(that.ch)
		close(that.done)
	})
}

// Hub fans events out to subscribers of the same process.
// A subscriber whose buffer is full is dropped rather than blocking the publisher.
type Hub struct {
	logger *slog.Logger

	mu   sync.Mutex
	subs map[string]map[*subscriber]struct{}
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger: logger.With("component", "events.hub"),
		subs:   make(map[string]map[*subscriber]struct{}),
	}
}

func (that *Hub) Publish(_ context.Context, event entity.Event) error {
	gameID := event.Payload.GameID

	// sends never block, so holding the lock keeps them ordered against close
	that.mu.Lock()
	defer that.mu.Unlock()

	for sub := range that.subs[gameID] {
		select {
		case sub.ch <- event:
		default:
			that.logger.Warn("dropping slow subscriber", "gameID", gameID)
			that.removeLocked(gameID, sub)
		}
	}

	return nil
}

// Subscribe returns a channel of events for gameID. The channel is closed when ctx
// ends, when unsubscribe is called, or when the subscriber falls behind.
func (that *Hub) Subscribe(ctx context.Context, gameID string) (<-chan entity.Event, func(), error) {
	sub := &subscriber{
		ch:   make(chan entity.Event, subscriberBuffer),
		done: make(chan struct{}),
	}

	that.mu.Lock()
	set := that.subs[gameID]
	if set == nil {
		set = make(map[*subscriber]struct{})
		that.subs[gameID] = set
	}
	set[sub] = struct{}{}
	that.mu.Unlock()

	unsubscribe := func() { that.remove(gameID, sub) }

	go func() {
		select {
		case <-ctx.Done():
			unsubscribe()
		case <-sub.done:
		}
	}()

	return sub.ch, unsubscribe, nil
}

func (that *Hub) remove(gameID string, sub *subscriber) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.removeLocked(gameID, sub)
}

func (that *Hub) removeLocked(gameID string, sub *subscriber) {
	if set, ok := that.subs[gameID]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(that.subs, gameID)
		}
	}

	sub.close()
}

// Subscribers returns how many subscribers watch gameID.
func (that *Hub) Subscribers(gameID string) int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.subs[gameID])
}
