package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/tictactoe3d/internal/entity"
	"github.com/rocketscienceinc/tictactoe3d/internal/pkg"
	"github.com/rocketscienceinc/tictactoe3d/internal/usecase"
)

var errInvalidBody = errors.New("invalid request body")

type gameUseCase interface {
	CreateGame(ctx context.Context, clientID string) (usecase.CreateResult, error)
	JoinGame(ctx context.Context, gameID, clientID string) (usecase.JoinResult, error)
	MakeMove(ctx context.Context, req usecase.MoveRequest) (entity.MoveOutcome, error)
	LeaveGame(ctx context.Context, gameID, clientID string) (usecase.LeaveResult, error)
	GetState(ctx context.Context, gameID string) (entity.GameSnapshot, error)
}

type createResponse struct {
	Success bool                `json:"success"`
	GameID  string              `json:"gameId"`
	Player  entity.Cell         `json:"player"`
	State   entity.GameSnapshot `json:"state"`
}

type joinResponse struct {
	Success bool                `json:"success"`
	Player  entity.Cell         `json:"player"`
	State   entity.GameSnapshot `json:"state"`
}

type moveResponse struct {
	Success    bool                `json:"success"`
	Winner     entity.Cell         `json:"winner"`
	IsFinished bool                `json:"isFinished"`
	State      entity.GameSnapshot `json:"state"`
}

type leaveResponse struct {
	Success   bool                `json:"success"`
	Remaining []entity.Player     `json:"remaining"`
	State     entity.GameSnapshot `json:"state"`
}

type moveRequest struct {
	Player entity.Cell `json:"player"`
	X      any         `json:"x"`
	Y      any         `json:"y"`
	Z      any         `json:"z"`
}

type gameHandler struct {
	logger *slog.Logger
	game   gameUseCase
}

func newGameHandler(logger *slog.Logger, game gameUseCase) *gameHandler {
	return &gameHandler{
		logger: logger.With("component", "rest.game"),
		game:   game,
	}
}

func (that *gameHandler) create(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "create")

	result, err := that.game.CreateGame(r.Context(), r.URL.Query().Get("clientId"))
	if err != nil {
		writeError(log, w, err)
		return
	}

	writeJSON(log, w, http.StatusOK, createResponse{
		Success: true,
		GameID:  result.GameID,
		Player:  result.Player.Symbol,
		State:   result.State,
	})
}

func (that *gameHandler) join(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "join")

	result, err := that.game.JoinGame(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("clientId"))
	if err != nil {
		writeError(log, w, err)
		return
	}

	writeJSON(log, w, http.StatusOK, joinResponse{
		Success: true,
		Player:  result.Player.Symbol,
		State:   result.State,
	})
}

func (that *gameHandler) move(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "move")

	var body moveRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(log, w, errInvalidBody)
		return
	}

	outcome, err := that.game.MakeMove(r.Context(), usecase.MoveRequest{
		GameID:   chi.URLParam(r, "id"),
		ClientID: r.URL.Query().Get("clientId"),
		Symbol:   body.Player,
		X:        pkg.ParseCoordinate(body.X),
		Y:        pkg.ParseCoordinate(body.Y),
		Z:        pkg.ParseCoordinate(body.Z),
	})
	if err != nil {
		writeError(log, w, err)
		return
	}

	writeJSON(log, w, http.StatusOK, moveResponse{
		Success:    true,
		Winner:     outcome.Winner,
		IsFinished: outcome.IsFinished,
		State:      outcome.State,
	})
}

func (that *gameHandler) state(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "state")

	state, err := that.game.GetState(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(log, w, err)
		return
	}

	writeJSON(log, w, http.StatusOK, state)
}

func (that *gameHandler) leave(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "leave")

	result, err := that.game.LeaveGame(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("clientId"))
	if err != nil {
		writeError(log, w, err)
		return
	}

	writeJSON(log, w, http.StatusOK, leaveResponse{
		Success:   true,
		Remaining: result.Remaining,
		State:     result.State,
	})
}

// requestLogger logs every request at debug level.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request served", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
		})
	}
}
