package handler

import (
	"net/http"
	"time"

	"github.com/actuallystonmai/product-composite-service/internal/domain"
)

// errorInfo maps an error kind to its HTTP status and body. ok is false for
// kinds that have no dedicated mapping.
func errorInfo(kind domain.ErrorKind, path, message string, now time.Time) (status int, body ErrorBody, ok bool) {
	switch kind {
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindInvalidInput:
		status = http.StatusUnprocessableEntity
	default:
		return 0, ErrorBody{}, false
	}

	return status, ErrorBody{
		Timestamp:  now.UTC().Format(time.RFC3339),
		Path:       path,
		HTTPStatus: status,
		Error:      http.StatusText(status),
		Message:    message,
	}, true
}

func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	if status, body, ok := errorInfo(domain.KindOf(err), r.URL.Path, err.Error(), h.now()); ok {
		writeJSON(w, status, body)
		return
	}

	h.log.Error("request failed",
		"path", r.URL.Path,
		"kind", domain.KindOf(err).String(),
		"request_id", requestID(r),
		"error", err,
	)
	writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
}
