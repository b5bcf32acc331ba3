package pkg

import "github.com/google/uuid"

const gamePrefix = "game-"

// GenerateGameID returns a fresh game id, e.g. game-1b4e28ba-2fa1-11d2-883f-0016d3cca427.
func GenerateGameID() string {
	return gamePrefix + uuid.NewString()
}

func GenerateClientID() string {
	return uuid.NewString()
}
