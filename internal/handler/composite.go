package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/actuallystonmai/product-composite-service/internal/domain"
)

// GET /product-composite/{productId}
func (h *Handler) GetProductComposite(w http.ResponseWriter, r *http.Request) {
	productID, err := parseProductID(chi.URLParam(r, "productId"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	agg, err := h.service.GetProduct(r.Context(), productID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, agg)
}

func parseProductID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.InvalidInput("Invalid productId: %s", raw)
	}
	if id < 1 {
		return 0, domain.InvalidInput("Invalid productId: %d", id)
	}
	return id, nil
}

func requestID(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}
