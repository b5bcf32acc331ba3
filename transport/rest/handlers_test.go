package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe3d/internal/apperror"
	"github.com/rocketscienceinc/tictactoe3d/internal/entity"
	"github.com/rocketscienceinc/tictactoe3d/internal/events"
	"github.com/rocketscienceinc/tictactoe3d/internal/repository"
	"github.com/rocketscienceinc/tictactoe3d/internal/usecase"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	manager := usecase.NewGameManager(logger, repository.NewGameRepository(), events.NewHub(logger), time.Hour)

	return NewRouter(logger, manager, nil, []string{"*"})
}

func do(t *testing.T, router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))

	return out
}

func createGame(t *testing.T, router http.Handler, clientID string) createResponse {
	t.Helper()

	rec := do(t, router, http.MethodPost, "/api/game?clientId="+clientID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	return decode[createResponse](t, rec)
}

func TestPing(t *testing.T) {
	// Given: A router
	router := newTestRouter(t)

	// When: Pinging
	rec := do(t, router, http.MethodGet, "/ping", "")

	// Then: It answers pong
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestGameAPI_CreateAndJoin(t *testing.T) {
	// Given: A router
	router := newTestRouter(t)

	// When: alice creates a game
	created := createGame(t, router, "alice")

	// Then: She is X on an empty board
	assert.True(t, created.Success)
	assert.True(t, strings.HasPrefix(created.GameID, "game-"))
	assert.Equal(t, entity.SymbolX, created.Player)
	assert.Equal(t, entity.SymbolX, created.State.CurrentTurn)

	// When: bob joins
	rec := do(t, router, http.MethodPost, "/api/game/"+created.GameID+"/join?clientId=bob", "")

	// Then: He is O
	require.Equal(t, http.StatusOK, rec.Code)
	joined := decode[joinResponse](t, rec)
	assert.Equal(t, entity.SymbolO, joined.Player)
	assert.Len(t, joined.State.Players, 2)

	// When: carol tries to join
	rec = do(t, router, http.MethodPost, "/api/game/"+created.GameID+"/join?clientId=carol", "")

	// Then: The game is full
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "game full", decode[errorResponse](t, rec).Error)
}

func TestGameAPI_JoinUnknownGame(t *testing.T) {
	// Given: A router without games
	router := newTestRouter(t)

	// When: Joining a missing game
	rec := do(t, router, http.MethodPost, "/api/game/game-missing/join?clientId=bob", "")

	// Then: 404
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "game not found", decode[errorResponse](t, rec).Error)
}

func TestGameAPI_Move(t *testing.T) {
	t.Run("Solo game plays to a win", func(t *testing.T) {
		// Given: A solo game
		router := newTestRouter(t)
		created := createGame(t, router, "alice")
		target := "/api/game/" + created.GameID + "/move?clientId=alice"

		// When: The lone player fills the x axis for X, with O on another row
		moves := []string{
			`{"player":"X","x":0,"y":0,"z":0}`,
			`{"player":"O","x":0,"y":2,"z":2}`,
			`{"player":"X","x":1,"y":0,"z":0}`,
			`{"player":"O","x":1,"y":2,"z":2}`,
		}
		for _, body := range moves {
			rec := do(t, router, http.MethodPost, target, body)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		}

		rec := do(t, router, http.MethodPost, target, `{"player":"X","x":2,"y":0,"z":0}`)

		// Then: X wins
		require.Equal(t, http.StatusOK, rec.Code)
		moved := decode[moveResponse](t, rec)
		assert.True(t, moved.Success)
		assert.True(t, moved.IsFinished)
		assert.Equal(t, entity.SymbolX, moved.Winner)
		assert.Equal(t, entity.SymbolX, moved.State.Board[0][0][2])

		// And: The next move is refused
		rec = do(t, router, http.MethodPost, target, `{"x":2,"y":2,"z":2}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, apperror.ErrGameAlreadyFinished.Error(), decode[errorResponse](t, rec).Error)
	})

	tests := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{name: "out of range", body: `{"x":3,"y":0,"z":0}`, status: http.StatusBadRequest, message: apperror.ErrInvalidCoordinates.Error()},
		{name: "fractional coordinate", body: `{"x":0.5,"y":0,"z":0}`, status: http.StatusBadRequest, message: apperror.ErrInvalidCoordinates.Error()},
		{name: "missing coordinate", body: `{"x":0,"y":0}`, status: http.StatusBadRequest, message: apperror.ErrInvalidCoordinates.Error()},
		{name: "numeric strings", body: `{"x":"1","y":"1","z":"1"}`, status: http.StatusOK},
		{name: "broken json", body: `{"x":`, status: http.StatusBadRequest, message: errInvalidBody.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given: A solo game
			router := newTestRouter(t)
			created := createGame(t, router, "alice")

			// When: A move is posted
			rec := do(t, router, http.MethodPost, "/api/game/"+created.GameID+"/move?clientId=alice", tt.body)

			// Then: The status and message match
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.message != "" {
				assert.Equal(t, tt.message, decode[errorResponse](t, rec).Error)
			}
		})
	}

	t.Run("Occupied cell", func(t *testing.T) {
		// Given: A solo game with the centre taken
		router := newTestRouter(t)
		created := createGame(t, router, "alice")
		target := "/api/game/" + created.GameID + "/move"
		require.Equal(t, http.StatusOK, do(t, router, http.MethodPost, target, `{"x":1,"y":1,"z":1}`).Code)

		// When: The centre is played again
		rec := do(t, router, http.MethodPost, target, `{"x":1,"y":1,"z":1}`)

		// Then: 400 cell occupied
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, apperror.ErrCellOccupied.Error(), decode[errorResponse](t, rec).Error)
	})

	t.Run("Stranger in a full game", func(t *testing.T) {
		// Given: A two-player game
		router := newTestRouter(t)
		created := createGame(t, router, "alice")
		require.Equal(t, http.StatusOK, do(t, router, http.MethodPost, "/api/game/"+created.GameID+"/join?clientId=bob", "").Code)

		// When: An unknown client moves without a symbol
		rec := do(t, router, http.MethodPost, "/api/game/"+created.GameID+"/move?clientId=mallory", `{"x":0,"y":0,"z":0}`)

		// Then: 400 invalid player
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, apperror.ErrInvalidPlayer.Error(), decode[errorResponse](t, rec).Error)
	})
}

func TestGameAPI_StateAndLeave(t *testing.T) {
	// Given: A two-player game
	router := newTestRouter(t)
	created := createGame(t, router, "alice")
	require.Equal(t, http.StatusOK, do(t, router, http.MethodPost, "/api/game/"+created.GameID+"/join?clientId=bob", "").Code)

	// When: Reading the state
	rec := do(t, router, http.MethodGet, "/api/game/"+created.GameID+"/state", "")

	// Then: The snapshot lists both players
	require.Equal(t, http.StatusOK, rec.Code)
	state := decode[entity.GameSnapshot](t, rec)
	assert.Equal(t, created.GameID, state.ID)
	assert.Len(t, state.Players, 2)

	// When: Leaving without a client id
	rec = do(t, router, http.MethodPost, "/api/game/"+created.GameID+"/leave", "")

	// Then: 400 missing clientId
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperror.ErrMissingClientID.Error(), decode[errorResponse](t, rec).Error)

	// When: alice leaves
	rec = do(t, router, http.MethodPost, "/api/game/"+created.GameID+"/leave?clientId=alice", "")

	// Then: bob remains
	require.Equal(t, http.StatusOK, rec.Code)
	left := decode[leaveResponse](t, rec)
	assert.True(t, left.Success)
	assert.Equal(t, []entity.Player{{ID: "bob", Symbol: entity.SymbolO}}, left.Remaining)

	// And: State of a missing game is 404
	rec = do(t, router, http.MethodGet, "/api/game/game-missing/state", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGameAPI_CORS(t *testing.T) {
	// Given: A router allowing every origin
	router := newTestRouter(t)

	// When: A preflight request arrives
	req := httptest.NewRequest(http.MethodOptions, "/api/game", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// Then: The origin is allowed
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{err: fmt.Errorf("wrapped: %w", apperror.ErrGameNotFound), status: http.StatusNotFound},
		{err: apperror.ErrSessionFull, status: http.StatusConflict},
		{err: apperror.ErrNotPlayersTurn, status: http.StatusBadRequest},
		{err: apperror.ErrPlayerNotFound, status: http.StatusBadRequest},
		{err: errors.New("boom"), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			status, _ := statusFor(tt.err)
			assert.Equal(t, tt.status, status)
		})
	}
}
