package repository

import (
	"context"

	"github.com/actuallystonmai/product-composite-service/internal/domain"
)

func (r *Repository) GetReviews(ctx context.Context, productID int) ([]domain.Review, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT product_id, review_id, author, subject, content
		FROM reviews
		WHERE product_id = $1
		ORDER BY review_id`, productID,
	)
	if err != nil {
		return nil, domain.UpstreamFailure(err, "query reviews for product %d: %v", productID, err)
	}
	defer rows.Close()

	items := []domain.Review{}
	for rows.Next() {
		rev := domain.Review{ServiceAddress: r.address}
		if err := rows.Scan(&rev.ProductID, &rev.ReviewID, &rev.Author, &rev.Subject, &rev.Content); err != nil {
			return nil, domain.UpstreamFailure(err, "scan review: %v", err)
		}
		items = append(items, rev)
	}

	if err := rows.Err(); err != nil {
		return nil, domain.UpstreamFailure(err, "iterate over reviews: %v", err)
	}
	return items, nil
}
