package tictactoe

import (
	"fmt"
	"slices"

	"github.com/rocketscienceinc/tictactoe3d/internal/apperror"
	"github.com/rocketscienceinc/tictactoe3d/internal/entity"
)

const maxPlayers = 2

// Session tracks who plays and whose turn it is. It knows nothing about the board.
type Session struct {
	players     []entity.Player
	currentTurn entity.Cell
}

func NewSession() *Session {
	return &Session{
		players:     make([]entity.Player, 0, maxPlayers),
		currentTurn: entity.SymbolX,
	}
}

// AddPlayer registers clientID, or returns the existing player on rejoin.
// The symbol is whichever one is not currently held, X first.
func (that *Session) AddPlayer(clientID string) (entity.Player, error) {
	if player, ok := that.FindByID(clientID); ok {
		return player, nil
	}

	if len(that.players) >= maxPlayers {
		return entity.Player{}, fmt.Errorf("%w: %d players", apperror.ErrSessionFull, len(that.players))
	}

	symbol := entity.SymbolX
	if _, taken := that.FindBySymbol(entity.SymbolX); taken {
		symbol = entity.SymbolO
	}

	player := entity.Player{ID: clientID, Symbol: symbol}
	that.players = append(that.players, player)

	return player, nil
}

// RemovePlayer frees the player's symbol. The current turn is left as is.
func (that *Session) RemovePlayer(clientID string) error {
	idx := slices.IndexFunc(that.players, func(p entity.Player) bool { return p.ID == clientID })
	if idx < 0 {
		return fmt.Errorf("%w: %s", apperror.ErrPlayerNotFound, clientID)
	}

	that.players = slices.Delete(that.players, idx, idx+1)

	return nil
}

func (that *Session) IsSolo() bool {
	return len(that.players) == 1
}

func (that *Session) Len() int {
	return len(that.players)
}

func (that *Session) CurrentTurn() entity.Cell {
	return that.currentTurn
}

func (that *Session) ToggleTurn() {
	that.currentTurn = that.currentTurn.Opponent()
}

func (that *Session) FindBySymbol(symbol entity.Cell) (entity.Player, bool) {
	for _, player := range that.players {
		if player.Symbol == symbol {
			return player, true
		}
	}

	return entity.Player{}, false
}

func (that *Session) FindByID(clientID string) (entity.Player, bool) {
	for _, player := range that.players {
		if player.ID == clientID {
			return player, true
		}
	}

	return entity.Player{}, false
}

// Players returns a copy of the players in join order.
func (that *Session) Players() []entity.Player {
	return slices.Clone(that.players)
}
