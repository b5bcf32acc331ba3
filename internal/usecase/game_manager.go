package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/tictactoe3d/internal/apperror"
	"github.com/rocketscienceinc/tictactoe3d/internal/entity"
	"github.com/rocketscienceinc/tictactoe3d/internal/pkg"
	"github.com/rocketscienceinc/tictactoe3d/internal/tictactoe"
)

type gameRepo interface {
	Create(ctx context.Context, game *tictactoe.Game) error
	Update(ctx context.Context, id string, fn func(game *tictactoe.Game) error) error
	View(ctx context.Context, id string, fn func(game *tictactoe.Game) error) error
	DeleteIdle(ctx context.Context, before time.Time) []string
}

type eventPublisher interface {
	Publish(ctx context.Context, event entity.Event) error
}

type CreateResult struct {
	GameID string
	Player entity.Player
	State  entity.GameSnapshot
}

type JoinResult struct {
	Player entity.Player
	State  entity.GameSnapshot
}

type LeaveResult struct {
	Remaining []entity.Player
	State     entity.GameSnapshot
}

// MoveRequest identifies the mover by Symbol, then ClientID. Both may be empty
// when a single player is seated.
type MoveRequest struct {
	GameID   string
	ClientID string
	Symbol   entity.Cell
	X, Y, Z  int
}

type GameManager struct {
	logger    *slog.Logger
	gameRepo  gameRepo
	publisher eventPublisher
	idleTTL   time.Duration
}

func NewGameManager(logger *slog.Logger, gameRepo gameRepo, publisher eventPublisher, idleTTL time.Duration) *GameManager {
	return &GameManager{
		logger: logger.With("component", "usecase.game"),

		gameRepo:  gameRepo,
		publisher: publisher,
		idleTTL:   idleTTL,
	}
}

func (that *GameManager) CreateGame(ctx context.Context, clientID string) (CreateResult, error) {
	log := that.logger.With("method", "CreateGame")

	if clientID == "" {
		clientID = pkg.GenerateClientID()
	}

	game := tictactoe.NewGame(pkg.GenerateGameID())

	player, err := game.JoinPlayer(clientID)
	if err != nil {
		return CreateResult{}, fmt.Errorf("failed to seat creator: %w", err)
	}

	if err = that.gameRepo.Create(ctx, game); err != nil {
		return CreateResult{}, fmt.Errorf("failed to create game: %w", err)
	}

	state := game.Serialize()
	log.Info("game created", "gameID", game.ID(), "clientID", clientID)

	that.publish(ctx, entity.Event{
		Type: entity.EventPlayerJoined,
		Payload: entity.EventPayload{
			GameID:   game.ID(),
			ClientID: clientID,
			Player:   player.Symbol,
			State:    &state,
		},
	})

	return CreateResult{GameID: game.ID(), Player: player, State: state}, nil
}

func (that *GameManager) JoinGame(ctx context.Context, gameID, clientID string) (JoinResult, error) {
	log := that.logger.With("method", "JoinGame")

	if clientID == "" {
		clientID = pkg.GenerateClientID()
	}

	var (
		result JoinResult
		joined bool
	)

	err := that.gameRepo.Update(ctx, gameID, func(game *tictactoe.Game) error {
		_, seated := game.Player(clientID)

		player, err := game.JoinPlayer(clientID)
		if err != nil {
			return err
		}

		joined = !seated
		result = JoinResult{Player: player, State: game.Serialize()}

		return nil
	})
	if err != nil {
		return JoinResult{}, fmt.Errorf("failed to join game: %w", err)
	}

	if joined {
		log.Info("player joined", "gameID", gameID, "clientID", clientID, "symbol", result.Player.Symbol)

		that.publish(ctx, entity.Event{
			Type: entity.EventPlayerJoined,
			Payload: entity.EventPayload{
				GameID:   gameID,
				ClientID: clientID,
				Player:   result.Player.Symbol,
				State:    &result.State,
			},
		})
	}

	return result, nil
}

func (that *GameManager) MakeMove(ctx context.Context, req MoveRequest) (entity.MoveOutcome, error) {
	log := that.logger.With("method", "MakeMove")

	pos := entity.Position{X: req.X, Y: req.Y, Z: req.Z}

	var (
		outcome entity.MoveOutcome
		mover   entity.Player
	)

	err := that.gameRepo.Update(ctx, req.GameID, func(game *tictactoe.Game) error {
		player, ok := resolveMover(game, req)
		if !ok {
			return apperror.ErrInvalidPlayer
		}

		moved, err := game.MakeMove(player, pos)
		if err != nil {
			return err
		}

		mover = player
		outcome = moved

		return nil
	})
	if err != nil {
		log.Debug("move rejected", "gameID", req.GameID, "position", pos.String(), "error", err)
		return entity.MoveOutcome{}, fmt.Errorf("failed to make move: %w", err)
	}

	log.Info("move accepted", "gameID", req.GameID, "position", pos.String(), "nextTurn", outcome.State.CurrentTurn)

	// the symbol placed is the one whose turn it was, which differs from the
	// mover's own symbol when a lone player plays both sides
	placed := outcome.State.Board[pos.Z][pos.Y][pos.X]

	that.publish(ctx, entity.Event{
		Type: entity.EventMoveMade,
		Payload: entity.EventPayload{
			GameID:   req.GameID,
			ClientID: mover.ID,
			Player:   placed,
			Position: &pos,
			State:    &outcome.State,
		},
	})

	if outcome.IsFinished {
		log.Info("game finished", "gameID", req.GameID, "winner", outcome.Winner)

		that.publish(ctx, entity.Event{
			Type: entity.EventGameOver,
			Payload: entity.EventPayload{
				GameID: req.GameID,
				Player: outcome.Winner,
				State:  &outcome.State,
			},
		})
	}

	return outcome, nil
}

func resolveMover(game *tictactoe.Game, req MoveRequest) (entity.Player, bool) {
	if req.Symbol != entity.EmptyCell {
		if player, ok := game.PlayerBySymbol(req.Symbol); ok {
			return player, true
		}
	}

	if req.ClientID != "" {
		if player, ok := game.Player(req.ClientID); ok {
			return player, true
		}
	}

	if players := game.Players(); len(players) == 1 {
		return players[0], true
	}

	return entity.Player{}, false
}

func (that *GameManager) LeaveGame(ctx context.Context, gameID, clientID string) (LeaveResult, error) {
	log := that.logger.With("method", "LeaveGame")

	if clientID == "" {
		return LeaveResult{}, apperror.ErrMissingClientID
	}

	var (
		result LeaveResult
		symbol entity.Cell
	)

	err := that.gameRepo.Update(ctx, gameID, func(game *tictactoe.Game) error {
		player, _ := game.Player(clientID)

		if err := game.RemovePlayer(clientID); err != nil {
			return err
		}

		symbol = player.Symbol
		result = LeaveResult{Remaining: game.Players(), State: game.Serialize()}

		return nil
	})
	if err != nil {
		return LeaveResult{}, fmt.Errorf("failed to leave game: %w", err)
	}

	log.Info("player left", "gameID", gameID, "clientID", clientID, "remaining", len(result.Remaining))

	that.publish(ctx, entity.Event{
		Type: entity.EventPlayerLeft,
		Payload: entity.EventPayload{
			GameID:   gameID,
			ClientID: clientID,
			Player:   symbol,
			State:    &result.State,
		},
	})

	return result, nil
}

func (that *GameManager) GetState(ctx context.Context, gameID string) (entity.GameSnapshot, error) {
	var state entity.GameSnapshot

	err := that.gameRepo.View(ctx, gameID, func(game *tictactoe.Game) error {
		state = game.Serialize()
		return nil
	})
	if err != nil {
		return entity.GameSnapshot{}, fmt.Errorf("failed to get state: %w", err)
	}

	return state, nil
}

// EvictIdle drops every game that has not been mutated within the idle TTL of now.
func (that *GameManager) EvictIdle(ctx context.Context, now time.Time) []string {
	evicted := that.gameRepo.DeleteIdle(ctx, now.Add(-that.idleTTL))
	if len(evicted) > 0 {
		that.logger.Info("evicted idle games", "method", "EvictIdle", "count", len(evicted))
	}

	return evicted
}

func (that *GameManager) publish(ctx context.Context, event entity.Event) {
	if err := that.publisher.Publish(ctx, event); err != nil {
		that.logger.Error("failed to publish event",
			"type", event.Type, "gameID", event.Payload.GameID, "error", err)
	}
}
