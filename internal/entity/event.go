package entity

type EventType string

const (
	EventMoveMade     EventType = "MOVE_MADE"
	EventPlayerJoined EventType = "PLAYER_JOINED"
	EventPlayerLeft   EventType = "PLAYER_LEFT"
	EventGameOver     EventType = "GAME_OVER"
	EventError        EventType = "ERROR"
)

// Event is pushed to every client watching a game after a state change.
type Event struct {
	Type    EventType    `json:"type"`
	Payload EventPayload `json:"payload"`
}

type EventPayload struct {
	GameID   string        `json:"gameId"`
	ClientID string        `json:"clientId,omitempty"`
	Player   Cell          `json:"player,omitempty"`
	Position *Position     `json:"position,omitempty"`
	State    *GameSnapshot `json:"state,omitempty"`
	Error    string        `json:"error,omitempty"`
}
