package repository

import (
	"context"

	"github.com/actuallystonmai/product-composite-service/internal/domain"
)

func (r *Repository) GetRecommendations(ctx context.Context, productID int) ([]domain.Recommendation, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT product_id, recommendation_id, author, rate, content
		FROM recommendations
		WHERE product_id = $1
		ORDER BY recommendation_id`, productID,
	)
	if err != nil {
		return nil, domain.UpstreamFailure(err, "query recommendations for product %d: %v", productID, err)
	}
	defer rows.Close()

	items := []domain.Recommendation{}
	for rows.Next() {
		rec := domain.Recommendation{ServiceAddress: r.address}
		if err := rows.Scan(&rec.ProductID, &rec.RecommendationID, &rec.Author, &rec.Rate, &rec.Content); err != nil {
			return nil, domain.UpstreamFailure(err, "scan recommendation: %v", err)
		}
		items = append(items, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, domain.UpstreamFailure(err, "iterate over recommendations: %v", err)
	}
	return items, nil
}
