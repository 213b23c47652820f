// Package respond writes JSON bodies and maps domain errors to status codes.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/MrJamesThe3rd/tally/internal/auth"
	"github.com/MrJamesThe3rd/tally/internal/catalog"
	"github.com/MrJamesThe3rd/tally/internal/collector"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
)

type errorResponse struct {
	Error string `json:"error"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Error writes err with the status its kind maps to. Unknown errors are logged
// and reported as a generic 500.
func Error(w http.ResponseWriter, err error) {
	status := Status(err)

	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
		msg = "internal error"
	}

	JSON(w, status, errorResponse{Error: msg})
}

// BadRequest is for bodies and parameters that could not be read at all.
func BadRequest(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func Status(err error) int {
	switch {
	case errors.Is(err, ledger.ErrValidation), errors.Is(err, collector.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, catalog.ErrInvalidBarcode), errors.Is(err, auth.ErrMissingCredentials):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrNotFound), errors.Is(err, collector.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrCeilingRequired):
		return http.StatusConflict
	case errors.Is(err, catalog.ErrNetwork):
		return http.StatusBadGateway
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
