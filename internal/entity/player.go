package entity

// Player is a registered participant. Symbol never changes after assignment.
type Player struct {
	ID     string `json:"id"`
	Symbol Cell   `json:"symbol"`
}
