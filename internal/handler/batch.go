package handler

import (
	"net/http"
	"strings"

	"github.com/actuallystonmai/product-composite-service/internal/domain"
)

const maxBatchIDs = 50

// GET /product-composite?ids=1,2,3
func (h *Handler) GetProductComposites(w http.ResponseWriter, r *http.Request) {
	ids, err := parseProductIDs(r.URL.Query().Get("ids"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	result, err := h.service.GetProducts(r.Context(), ids)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func parseProductIDs(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, domain.InvalidInput("ids parameter is required")
	}

	parts := strings.Split(raw, ",")
	if len(parts) > maxBatchIDs {
		return nil, domain.InvalidInput("at most %d product ids are allowed, got %d", maxBatchIDs, len(parts))
	}

	ids := make([]int, 0, len(parts))
	for _, part := range parts {
		id, err := parseProductID(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
