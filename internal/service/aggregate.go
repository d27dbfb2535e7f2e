package service

import "github.com/actuallystonmai/product-composite-service/internal/domain"

// Compose merges a product with its recommendations and reviews.
//
// A nil recommendations or reviews slice means the collection is absent and
// leaves the matching summaries nil. A non-nil empty slice yields an empty
// summary list. The address of each collection is taken from its first
// element, or "" when there is none.
func Compose(product domain.Product, recommendations []domain.Recommendation, reviews []domain.Review, localAddress string) domain.ProductAggregate {
	var recSummaries *[]domain.RecommendationSummary
	if recommendations != nil {
		summaries := make([]domain.RecommendationSummary, 0, len(recommendations))
		for _, r := range recommendations {
			summaries = append(summaries, domain.RecommendationSummary{
				ProductID: r.ProductID,
				Author:    r.Author,
				Rate:      r.Rate,
			})
		}
		recSummaries = &summaries
	}

	var reviewSummaries *[]domain.ReviewSummary
	if reviews != nil {
		summaries := make([]domain.ReviewSummary, 0, len(reviews))
		for _, r := range reviews {
			summaries = append(summaries, domain.ReviewSummary{
				ReviewID: r.ReviewID,
				Author:   r.Author,
				Subject:  r.Subject,
			})
		}
		reviewSummaries = &summaries
	}

	reviewAddress := ""
	if len(reviews) > 0 {
		reviewAddress = reviews[0].ServiceAddress
	}
	recommendationAddress := ""
	if len(recommendations) > 0 {
		recommendationAddress = recommendations[0].ServiceAddress
	}

	return domain.ProductAggregate{
		ProductID:       product.ProductID,
		Name:            product.Name,
		Weight:          product.Weight,
		Recommendations: recSummaries,
		Reviews:         reviewSummaries,
		ServiceAddresses: domain.ServiceAddresses{
			Composite:      localAddress,
			Product:        product.ServiceAddress,
			Review:         reviewAddress,
			Recommendation: recommendationAddress,
		},
	}
}
