package domain

// ServiceAddresses records which instance answered each part of an aggregate.
type ServiceAddresses struct {
	Composite      string `json:"cmp"`
	Product        string `json:"pro"`
	Review         string `json:"rev"`
	Recommendation string `json:"rec"`
}

// ProductAggregate is the merged view returned by the composite service.
// A nil Recommendations or Reviews means the collection was not available,
// which is different from a pointer to an empty slice.
type ProductAggregate struct {
	ProductID        int                      `json:"productId"`
	Name             string                   `json:"name"`
	Weight           int                      `json:"weight"`
	Recommendations  *[]RecommendationSummary `json:"recommendations,omitempty"`
	Reviews          *[]ReviewSummary         `json:"reviews,omitempty"`
	ServiceAddresses ServiceAddresses         `json:"serviceAddresses"`
}

type BatchStatus string

const (
	StatusSuccess BatchStatus = "success"
	StatusFailed  BatchStatus = "failed"
)

type BatchProductResult struct {
	ProductID int               `json:"productId"`
	Status    BatchStatus       `json:"status"`
	Product   *ProductAggregate `json:"product,omitempty"`
	Error     string            `json:"error,omitempty"`
	Message   string            `json:"message,omitempty"`
}

type BatchSummary struct {
	SuccessCount     int   `json:"success_count"`
	FailedCount      int   `json:"failed_count"`
	ProcessingTimeMs int64 `json:"processing_time_ms"`
}

type BatchResponse struct {
	Results []BatchProductResult `json:"results"`
	Summary BatchSummary         `json:"summary"`
}
