package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/actuallystonmai/product-composite-service/internal/domain"
)

// Get single product
func (r *Repository) GetProduct(ctx context.Context, productID int) (*domain.Product, error) {
	p := &domain.Product{ServiceAddress: r.address}

	err := r.pool.QueryRow(ctx,
		`SELECT product_id, name, weight FROM products WHERE product_id = $1`,
		productID,
	).Scan(&p.ProductID, &p.Name, &p.Weight)

	if err != nil {
		return nil, productQueryError(productID, err)
	}

	return p, nil
}

// productQueryError turns a missing row into ErrProductNotFound and any other
// query failure into an upstream failure.
func productQueryError(productID int, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("product id=%d: %w", productID, domain.ErrProductNotFound)
	}
	return domain.UpstreamFailure(err, "query product id=%d: %v", productID, err)
}
