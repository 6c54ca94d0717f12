// Package handlers implements the StampCard HTTP API: the public catalog
// read endpoints, the admin catalog mutation endpoints, and the business
// and loyalty-card endpoints backed by PostgreSQL.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"stampcard/internal/manifest"
)

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

// writeError writes a JSON error body with the given status.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// catalogError maps catalog operation errors to HTTP responses. Lock
// timeouts are transient, so they carry a Retry-After hint.
func catalogError(w http.ResponseWriter, err error) {
	var ve *manifest.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": ve.Error(),
			"field": ve.Field,
		})
	case errors.Is(err, manifest.ErrDuplicateID):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, manifest.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, manifest.ErrLockTimeout):
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusServiceUnavailable, "catalog busy, retry shortly")
	default:
		slog.Error("catalog operation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// Health reports process liveness. Dependency state is not probed here;
// degraded services already log on startup.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
