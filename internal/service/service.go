package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/actuallystonmai/product-composite-service/internal/domain"
	"github.com/actuallystonmai/product-composite-service/internal/logger"
	"github.com/actuallystonmai/product-composite-service/internal/serviceaddr"
	"github.com/actuallystonmai/product-composite-service/internal/upstream"
)

const defaultBatchConcurrency = 10

type Options struct {
	// DegradeOnPartialFailure leaves recommendations or reviews absent when
	// their upstream call fails, instead of failing the whole request.
	DegradeOnPartialFailure bool
	BatchConcurrency        int
}

type Service struct {
	gateway upstream.Gateway
	address serviceaddr.Provider
	log     *logger.Logger
	tracer  trace.Tracer

	degrade          bool
	batchConcurrency int
}

func NewService(gateway upstream.Gateway, address serviceaddr.Provider, log *logger.Logger, opts Options) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	concurrency := opts.BatchConcurrency
	if concurrency < 1 {
		concurrency = defaultBatchConcurrency
	}
	return &Service{
		gateway:          gateway,
		address:          address,
		log:              log.With("component", "service"),
		tracer:           otel.Tracer("product-composite/service"),
		degrade:          opts.DegradeOnPartialFailure,
		batchConcurrency: concurrency,
	}
}

// GetProduct fetches the product, its recommendations and its reviews
// concurrently and composes them. A missing product fails the request with a
// NotFound error and the other two results are discarded.
func (s *Service) GetProduct(ctx context.Context, productID int) (*domain.ProductAggregate, error) {
	ctx, span := s.tracer.Start(ctx, "composite.GetProduct",
		trace.WithAttributes(attribute.Int("product.id", productID)))
	defer span.End()

	agg, err := s.getProduct(ctx, productID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return agg, nil
}

func (s *Service) getProduct(ctx context.Context, productID int) (*domain.ProductAggregate, error) {
	var (
		product         *domain.Product
		recommendations []domain.Recommendation
		reviews         []domain.Review
		productErr      error
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		product, productErr = s.fetchProduct(gctx, productID)
		return productErr
	})

	g.Go(func() error {
		recs, err := s.gateway.GetRecommendations(gctx, productID)
		if err != nil {
			if s.tolerate(gctx, "recommendations", productID, err) {
				return nil
			}
			return fmt.Errorf("fetch recommendations: %w", err)
		}
		recommendations = recs
		return nil
	})

	g.Go(func() error {
		revs, err := s.gateway.GetReviews(gctx, productID)
		if err != nil {
			if s.tolerate(gctx, "reviews", productID, err) {
				return nil
			}
			return fmt.Errorf("fetch reviews: %w", err)
		}
		reviews = revs
		return nil
	})

	// A missing product always wins. Otherwise Wait reports the first failure,
	// not the cancellation it caused in the other calls.
	err := g.Wait()
	if domain.IsNotFound(productErr) {
		return nil, productErr
	}
	if err != nil {
		return nil, err
	}

	agg := Compose(*product, recommendations, reviews, s.address.Address())
	return &agg, nil
}

func (s *Service) fetchProduct(ctx context.Context, productID int) (*domain.Product, error) {
	product, err := s.gateway.GetProduct(ctx, productID)
	if err != nil && !errors.Is(err, domain.ErrProductNotFound) {
		return nil, fmt.Errorf("fetch product: %w", err)
	}
	if product == nil {
		return nil, domain.NotFound("No product found for product id: %d", productID)
	}
	return product, nil
}

// tolerate reports whether a failed collection call may be dropped from the
// aggregate under the configured policy.
func (s *Service) tolerate(ctx context.Context, collection string, productID int, err error) bool {
	if !s.degrade || ctx.Err() != nil {
		return false
	}
	s.log.Warn("upstream call failed, leaving collection absent",
		"collection", collection,
		"product_id", productID,
		"error", err,
	)
	return true
}

// GetProducts composes several products with bounded concurrency. Failures
// are reported per product; the call itself only fails on an empty id list.
func (s *Service) GetProducts(ctx context.Context, productIDs []int) (*domain.BatchResponse, error) {
	if len(productIDs) == 0 {
		return nil, domain.InvalidInput("at least one product id is required")
	}
	start := time.Now()

	results := make([]domain.BatchProductResult, len(productIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchConcurrency)

	for i, id := range productIDs {
		g.Go(func() error {
			results[i] = s.processProductForBatch(gctx, id)
			return nil
		})
	}
	_ = g.Wait()

	successCount := 0
	failedCount := 0
	for _, r := range results {
		if r.Status == domain.StatusSuccess {
			successCount++
		} else {
			failedCount++
		}
	}

	return &domain.BatchResponse{
		Results: results,
		Summary: domain.BatchSummary{
			SuccessCount:     successCount,
			FailedCount:      failedCount,
			ProcessingTimeMs: time.Since(start).Milliseconds(),
		},
	}, nil
}

func (s *Service) processProductForBatch(ctx context.Context, productID int) domain.BatchProductResult {
	agg, err := s.GetProduct(ctx, productID)
	if err != nil {
		s.log.Warn("batch: composite failed", "product_id", productID, "error", err)
		code, msg := categorizeError(err)
		return domain.BatchProductResult{
			ProductID: productID,
			Status:    domain.StatusFailed,
			Error:     code,
			Message:   msg,
		}
	}

	return domain.BatchProductResult{
		ProductID: productID,
		Status:    domain.StatusSuccess,
		Product:   agg,
	}
}

// categorizeError maps an error kind to the code and message reported for a
// failed product in a batch response.
func categorizeError(err error) (string, string) {
	switch domain.KindOf(err) {
	case domain.KindNotFound, domain.KindInvalidInput:
		return domain.KindOf(err).String(), err.Error()
	case domain.KindUpstreamFailure:
		return "upstream_failure", "an upstream service failed to respond"
	}
	return "internal_error", "an unexpected error occurred"
}
