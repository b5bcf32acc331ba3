package websocket

import (
	"github.com/rocketscienceinc/tictactoe3d/internal/entity"
)

const actionMakeMove = "MAKE_MOVE"

// Message is what a client sends. Server messages are entity.Event.
type Message struct {
	Type    string      `json:"type"`
	Payload MovePayload `json:"payload"`
}

// MovePayload keeps coordinates loosely typed; malformed values become invalid
// coordinates instead of decode failures.
type MovePayload struct {
	X      any         `json:"x"`
	Y      any         `json:"y"`
	Z      any         `json:"z"`
	Player entity.Cell `json:"player"`
}

func errorEvent(gameID, clientID string, err error) entity.Event {
	return entity.Event{
		Type: entity.EventError,
		Payload: entity.EventPayload{
			GameID:   gameID,
			ClientID: clientID,
			Error:    err.Error(),
		},
	}
}
