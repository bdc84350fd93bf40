// Package respond writes JSON bodies and the error envelope shared by every
// endpoint.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/dom/roleplay-api/internal/domain"
	"go.uber.org/zap"
)

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// NoContent writes an empty 204.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error writes err as {code, message, status}. Errors that are not a
// *domain.Error are logged and reported as a bare 500.
func Error(w http.ResponseWriter, log *zap.Logger, err error) {
	if appErr, ok := domain.AsError(err); ok {
		JSON(w, appErr.Status, appErr)
		return
	}

	log.Error("unhandled error", zap.Error(err))
	JSON(w, http.StatusInternalServerError, domain.NewError(
		http.StatusInternalServerError, domain.CodeInternal, "internal server error"))
}
