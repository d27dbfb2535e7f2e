package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/actuallystonmai/product-composite-service/internal/logger"
	"github.com/actuallystonmai/product-composite-service/internal/service"
)

type Handler struct {
	service *service.Service
	log     *logger.Logger
	now     func() time.Time
}

func NewHandler(svc *service.Service, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{service: svc, log: log.With("component", "handler"), now: time.Now}
}

// write JSON response
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writes JSON error response.
func writeError(w http.ResponseWriter, status int, errCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:   errCode,
		Message: message,
	})
}
