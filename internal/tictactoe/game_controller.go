package tictactoe

import (
	"fmt"
	"time"

	"github.com/rocketscienceinc/tictactoe3d/internal/apperror"
	"github.com/rocketscienceinc/tictactoe3d/internal/entity"
)

// Game composes the board, the session and win detection for one match.
//
// Game does no locking. Callers must serialize MakeMove, JoinPlayer and
// RemovePlayer per instance, and Serialize must not run concurrently with them.
type Game struct {
	id        string
	createdAt time.Time

	board     *entity.Board
	session   *Session
	catalogue *Catalogue

	winner   entity.Cell
	finished bool
}

func NewGame(id string) *Game {
	return &Game{
		id:        id,
		createdAt: time.Now().UTC(),
		board:     entity.NewBoard(),
		session:   NewSession(),
		catalogue: StandardCatalogue(),
		winner:    entity.EmptyCell,
	}
}

func (that *Game) ID() string {
	return that.id
}

func (that *Game) IsFinished() bool {
	return that.finished
}

func (that *Game) IsSolo() bool {
	return that.session.IsSolo()
}

func (that *Game) CurrentTurn() entity.Cell {
	return that.session.CurrentTurn()
}

func (that *Game) JoinPlayer(clientID string) (entity.Player, error) {
	return that.session.AddPlayer(clientID)
}

func (that *Game) RemovePlayer(clientID string) error {
	return that.session.RemovePlayer(clientID)
}

func (that *Game) Player(clientID string) (entity.Player, bool) {
	return that.session.FindByID(clientID)
}

func (that *Game) PlayerBySymbol(symbol entity.Cell) (entity.Player, bool) {
	return that.session.FindBySymbol(symbol)
}

func (that *Game) Players() []entity.Player {
	return that.session.Players()
}

// MakeMove validates and applies a move. Checks run in a fixed order and nothing
// is mutated before all of them pass.
func (that *Game) MakeMove(player entity.Player, pos entity.Position) (entity.MoveOutcome, error) {
	if that.finished {
		return entity.MoveOutcome{}, apperror.ErrGameAlreadyFinished
	}

	if !that.board.IsValid(pos) {
		return entity.MoveOutcome{}, fmt.Errorf("%w: %s", apperror.ErrInvalidCoordinates, pos)
	}

	symbol, err := ResolveSymbolToPlay(that.session, player)
	if err != nil {
		return entity.MoveOutcome{}, err
	}

	empty, err := that.board.IsEmpty(pos)
	if err != nil {
		return entity.MoveOutcome{}, fmt.Errorf("check cell: %w", err)
	}

	if !empty {
		return entity.MoveOutcome{}, fmt.Errorf("%w: %s", apperror.ErrCellOccupied, pos)
	}

	if err = that.board.Set(pos, symbol); err != nil {
		return entity.MoveOutcome{}, fmt.Errorf("apply move: %w", err)
	}

	that.updateGameStatus()

	return entity.MoveOutcome{
		Winner:     that.winner,
		IsFinished: that.finished,
		State:      that.Serialize(),
	}, nil
}

// ResolveSymbolToPlay returns the symbol a move by player places on the board.
// A lone player plays whichever side is due; otherwise the player's own symbol
// must be the one due.
func ResolveSymbolToPlay(session *Session, player entity.Player) (entity.Cell, error) {
	turn := session.CurrentTurn()

	if session.IsSolo() {
		return turn, nil
	}

	if player.Symbol != turn {
		return entity.EmptyCell, fmt.Errorf("%w: %s to play", apperror.ErrNotPlayersTurn, turn)
	}

	return player.Symbol, nil
}

// updateGameStatus finishes the game on a win or a full board, otherwise passes the turn.
func (that *Game) updateGameStatus() {
	if winner := CheckWinner(that.board, that.catalogue); winner != entity.EmptyCell {
		that.winner = winner
		that.finished = true
		return
	}

	if that.board.IsFull() {
		that.finished = true
		return
	}

	that.session.ToggleTurn()
}

// Serialize returns a deep copy of the game state.
func (that *Game) Serialize() entity.GameSnapshot {
	return entity.GameSnapshot{
		ID:          that.id,
		CreatedAt:   that.createdAt,
		Board:       that.board.Snapshot(),
		Players:     that.session.Players(),
		IsFinished:  that.finished,
		Winner:      that.winner,
		CurrentTurn: that.session.CurrentTurn(),
	}
}
