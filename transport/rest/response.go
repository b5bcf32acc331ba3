package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rocketscienceinc/tictactoe3d/internal/apperror"
)

type errorResponse struct {
	Error string `json:"error"`
}

var badRequestErrors = []error{
	apperror.ErrInvalidCoordinates,
	apperror.ErrCellOccupied,
	apperror.ErrNotPlayersTurn,
	apperror.ErrGameAlreadyFinished,
	apperror.ErrPlayerNotFound,
	apperror.ErrOutOfRange,
	apperror.ErrMissingClientID,
	apperror.ErrInvalidPlayer,
	errInvalidBody,
}

// statusFor maps a domain error to its HTTP status and the message shown to clients.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, apperror.ErrGameNotFound):
		return http.StatusNotFound, apperror.ErrGameNotFound.Error()
	case errors.Is(err, apperror.ErrSessionFull):
		return http.StatusConflict, apperror.ErrSessionFull.Error()
	}

	for _, known := range badRequestErrors {
		if errors.Is(err, known) {
			return http.StatusBadRequest, known.Error()
		}
	}

	return http.StatusInternalServerError, "Internal Server Error"
}

func writeJSON(log *slog.Logger, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("failed to write response", "error", err)
	}
}

func writeError(log *slog.Logger, w http.ResponseWriter, err error) {
	status, message := statusFor(err)

	if status == http.StatusInternalServerError {
		log.Error("request failed", "error", err)
	} else {
		log.Warn("request rejected", "status", status, "error", err)
	}

	writeJSON(log, w, status, errorResponse{Error: message})
}
