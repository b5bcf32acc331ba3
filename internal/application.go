package application

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/tictactoe3d/internal/config"
	"github.com/rocketscienceinc/tictactoe3d/internal/entity"
	"github.com/rocketscienceinc/tictactoe3d/internal/events"
	"github.com/rocketscienceinc/tictactoe3d/internal/repository"
	"github.com/rocketscienceinc/tictactoe3d/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe3d/internal/usecase"
	"github.com/rocketscienceinc/tictactoe3d/transport/rest"
	"github.com/rocketscienceinc/tictactoe3d/transport/websocket"
)

type eventBus interface {
	Publish(ctx context.Context, event entity.Event) error
	Subscribe(ctx context.Context, gameID string) (<-chan entity.Event, func(), error)
}

// RunApp - runs the application until SIGINT or SIGTERM.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bus, closeBus, err := newEventBus(ctx, logger, conf)
	if err != nil {
		return err
	}
	defer closeBus()

	gameRepo := repository.NewGameRepository()
	gameManager := usecase.NewGameManager(logger, gameRepo, bus, conf.Registry.IdleTTL)

	wsServer := websocket.New(logger, gameManager, bus, conf.WebSocket.PingInterval)
	router := rest.NewRouter(logger, gameManager, wsServer, conf.CORS.AllowedOrigins)

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("Starting HTTP server", "port", conf.HTTPPort, "events", conf.Events.Driver)
		if err := rest.Start(ctx, conf.HTTPPort, router); err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}

		return nil
	})

	group.Go(func() error {
		runSweeper(ctx, gameManager, conf.Registry.SweepInterval)
		return nil
	})

	if err = group.Wait(); err != nil {
		return err
	}

	log.Info("Application context canceled, shutting down")

	return nil
}

func newEventBus(ctx context.Context, logger *slog.Logger, conf *config.Config) (eventBus, func(), error) {
	if conf.Events.Driver != config.EventsDriverRedis {
		return events.NewHub(logger), func() {}, nil
	}

	client, err := storage.NewRedis(ctx, conf.Redis.GetRedisAddr())
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis: %w", err)
	}

	closeFn := func() {
		if err := client.Close(); err != nil {
			logger.Error("could not close redis client", "error", err)
		}
	}

	return events.NewRedisBus(logger, client), closeFn, nil
}

type idleEvictor interface {
	EvictIdle(ctx context.Context, now time.Time) []string
}

func runSweeper(ctx context.Context, evictor idleEvictor, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			evictor.EvictIdle(ctx, now)
		}
	}
}
