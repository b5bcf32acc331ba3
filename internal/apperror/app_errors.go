package apperror

import "errors"

var (
	ErrInvalidCoordinates  = errors.New("invalid coordinates")
	ErrCellOccupied        = errors.New("cell already occupied")
	ErrNotPlayersTurn      = errors.New("not your turn")
	ErrGameAlreadyFinished = errors.New("game is already finished")
	ErrSessionFull         = errors.New("game full")
	ErrPlayerNotFound      = errors.New("player not found")
	ErrOutOfRange          = errors.New("coordinates out of range")

	ErrGameNotFound      = errors.New("game not found")
	ErrGameAlreadyExists = errors.New("game already exists")
	ErrMissingClientID   = errors.New("missing clientId")
	ErrInvalidPlayer     = errors.New("invalid player or not part of this game")
)
