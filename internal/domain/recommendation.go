package domain

type Recommendation struct {
	ProductID        int    `json:"productId"`
	RecommendationID int    `json:"recommendationId"`
	Author           string `json:"author"`
	Rate             int    `json:"rate"`
	Content          string `json:"content"`
	ServiceAddress   string `json:"serviceAddress"`
}

// RecommendationSummary keeps the caller-facing part of a Recommendation.
// Its id is the product id of the source record.
type RecommendationSummary struct {
	ProductID int    `json:"productId"`
	Author    string `json:"author"`
	Rate      int    `json:"rate"`
}
