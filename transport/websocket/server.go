package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe3d/internal/apperror"
	"github.com/rocketscienceinc/tictactoe3d/internal/entity"
	"github.com/rocketscienceinc/tictactoe3d/internal/pkg"
	"github.com/rocketscienceinc/tictactoe3d/internal/usecase"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 4096
	replyBuffer    = 8
)

var errInvalidMessage = errors.New("invalid message")

type gameUseCase interface {
	GetState(ctx context.Context, gameID string) (entity.GameSnapshot, error)
	MakeMove(ctx context.Context, req usecase.MoveRequest) (entity.MoveOutcome, error)
}

type eventSubscriber interface {
	Subscribe(ctx context.Context, gameID string) (<-chan entity.Event, func(), error)
}

// Server pushes game events to clients watching a game and accepts moves from them.
type Server struct {
	logger *slog.Logger

	game   gameUseCase
	events eventSubscriber

	upgrader     websocket.Upgrader
	pingInterval time.Duration
}

func New(logger *slog.Logger, game gameUseCase, events eventSubscriber, pingInterval time.Duration) *Server {
	return &Server{
		logger: logger.With("component", "websocket"),
		game:   game,
		events: events,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// origins are policed by the CORS layer of the HTTP router
			CheckOrigin: func(*http.Request) bool { return true },
		},
		pingInterval: pingInterval,
	}
}

// ServeHTTP upgrades GET /ws?gameId=&clientId= for a player seated in the game and
// serves the connection until either side goes away.
func (that *Server) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	gameID := req.URL.Query().Get("gameId")
	clientID := req.URL.Query().Get("clientId")

	log := that.logger.With("method", "ServeHTTP", "gameID", gameID, "clientID", clientID)

	if gameID == "" {
		http.Error(writer, "missing gameId", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithCancel(req.Context())
	defer cancel()

	// subscribe before reading the snapshot so no event after it is missed
	events, unsubscribe, err := that.events.Subscribe(ctx, gameID)
	if err != nil {
		log.Error("failed to subscribe", "error", err)
		http.Error(writer, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	defer unsubscribe()

	state, err := that.game.GetState(ctx, gameID)
	if err != nil {
		if errors.Is(err, apperror.ErrGameNotFound) {
			http.Error(writer, apperror.ErrGameNotFound.Error(), http.StatusNotFound)
			return
		}

		log.Error("failed to load game", "error", err)
		http.Error(writer, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// only seated players get a push channel
	if !seated(state, clientID) {
		http.Error(writer, apperror.ErrPlayerNotFound.Error(), http.StatusForbidden)
		return
	}

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	log.Info("websocket connection established")

	client := &connection{
		gameID:   gameID,
		clientID: clientID,
		conn:     conn,
		replies:  make(chan entity.Event, replyBuffer),
	}

	go func() {
		defer cancel()

		if err := that.readLoop(ctx, client); err != nil {
			log.Debug("read loop stopped", "error", err)
		}
	}()

	initial := entity.Event{
		Type: entity.EventPlayerJoined,
		Payload: entity.EventPayload{
			GameID:   gameID,
			ClientID: clientID,
			State:    &state,
		},
	}

	if err = that.writeLoop(ctx, client, initial, events); err != nil {
		log.Debug("write loop stopped", "error", err)
	}

	log.Info("websocket connection closed")
}

func seated(state entity.GameSnapshot, clientID string) bool {
	for _, player := range state.Players {
		if player.ID == clientID {
			return true
		}
	}

	return false
}

type connection struct {
	gameID   string
	clientID string
	conn     *websocket.Conn
	replies  chan entity.Event
}

// readLoop handles client messages. Only the write loop writes to the connection.
func (that *Server) readLoop(ctx context.Context, client *connection) error {
	client.conn.SetReadLimit(maxMessageSize)
	_ = client.conn.SetReadDeadline(time.Now().Add(that.pongWait()))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(that.pongWait()))
	})

	for {
		_, data, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				return fmt.Errorf("failed to read message: %w", err)
			}

			return nil
		}

		var msg Message
		if err = json.Unmarshal(data, &msg); err != nil {
			that.reply(ctx, client, errorEvent(client.gameID, client.clientID, errInvalidMessage))
			continue
		}

		that.handleMessage(ctx, client, &msg)
	}
}

func (that *Server) handleMessage(ctx context.Context, client *connection, msg *Message) {
	log := that.logger.With("method", "handleMessage", "gameID", client.gameID, "clientID", client.clientID)

	if msg.Type != actionMakeMove {
		that.reply(ctx, client, errorEvent(client.gameID, client.clientID, fmt.Errorf("unknown message type %q", msg.Type)))
		return
	}

	_, err := that.game.MakeMove(ctx, usecase.MoveRequest{
		GameID:   client.gameID,
		ClientID: client.clientID,
		Symbol:   msg.Payload.Player,
		X:        pkg.ParseCoordinate(msg.Payload.X),
		Y:        pkg.ParseCoordinate(msg.Payload.Y),
		Z:        pkg.ParseCoordinate(msg.Payload.Z),
	})
	if err != nil {
		log.Debug("move rejected", "error", err)
		that.reply(ctx, client, errorEvent(client.gameID, client.clientID, err))
	}
}

func (that *Server) reply(ctx context.Context, client *connection, event entity.Event) {
	select {
	case client.replies <- event:
	case <-ctx.Done():
	}
}

func (that *Server) writeLoop(ctx context.Context, client *connection, initial entity.Event, events <-chan entity.Event) error {
	ticker := time.NewTicker(that.pingInterval)
	defer ticker.Stop()

	if err := that.write(client, initial); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			_ = client.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return nil
		case event, ok := <-events:
			if !ok {
				return errors.New("event stream closed")
			}

			if err := that.write(client, event); err != nil {
				return err
			}
		case event := <-client.replies:
			if err := that.write(client, event); err != nil {
				return err
			}
		case <-ticker.C:
			_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return fmt.Errorf("failed to ping: %w", err)
			}
		}
	}
}

func (that *Server) write(client *connection, event entity.Event) error {
	_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))

	if err := client.conn.WriteJSON(event); err != nil {
		return fmt.Errorf("failed to write %s: %w", event.Type, err)
	}

	return nil
}

// pongWait is how long a silent peer is tolerated; it must exceed the ping interval.
func (that *Server) pongWait() time.Duration {
	return that.pingInterval * 2
}
