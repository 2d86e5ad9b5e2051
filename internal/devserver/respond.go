package devserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"sace/internal/errdefs"
	"sace/internal/logging"
)

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorJSON(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"message": message})
}

func writeMessage(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, map[string]string{"message": message})
}

func mapErr(err error) int {
	switch {
	case errors.Is(err, errdefs.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, errdefs.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, errdefs.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, errdefs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errdefs.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail answers with a message derived from err. Internal errors are logged
// and never echoed.
func fail(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	code := mapErr(err)
	if code == http.StatusInternalServerError {
		if logger, ok := logging.GetFromContext(r.Context()); ok {
			logger.Error(r.Context(), "request failed", zap.String("path", r.URL.Path), zap.Error(err))
		}
		writeErrorJSON(w, code, fallback)
		return
	}
	writeErrorJSON(w, code, errdefs.Message(err, fallback))
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errdefs.Invalid("invalid request body")
	}
	return nil
}
