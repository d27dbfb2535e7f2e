// Package upstream talks to the product, recommendation and review services.
package upstream

import (
	"context"

	"github.com/actuallystonmai/product-composite-service/internal/domain"
)

// Gateway is the contract the composite service consumes.
//
// GetProduct returns an error wrapping domain.ErrProductNotFound when the
// product does not exist. GetRecommendations and GetReviews return a non-nil
// slice on success, empty when there is nothing for the product.
type Gateway interface {
	GetProduct(ctx context.Context, productID int) (*domain.Product, error)
	GetRecommendations(ctx context.Context, productID int) ([]domain.Recommendation, error)
	GetReviews(ctx context.Context, productID int) ([]domain.Review, error)
}
