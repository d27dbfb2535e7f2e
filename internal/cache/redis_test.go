package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/actuallystonmai/product-composite-service/internal/domain"
)

type stubGateway struct {
	productCalls        int
	recommendationCalls int
	reviewCalls         int
}

func (s *stubGateway) GetProduct(ctx context.Context, productID int) (*domain.Product, error) {
	s.productCalls++
	if productID == 404 {
		return nil, domain.ErrProductNotFound
	}
	return &domain.Product{ProductID: productID, Name: "name", Weight: 1, ServiceAddress: "product-1"}, nil
}

func (s *stubGateway) GetRecommendations(ctx context.Context, productID int) ([]domain.Recommendation, error) {
	s.recommendationCalls++
	return []domain.Recommendation{}, nil
}

func (s *stubGateway) GetReviews(ctx context.Context, productID int) ([]domain.Review, error) {
	s.reviewCalls++
	return []domain.Review{{ProductID: productID, ReviewID: 1}}, nil
}

// unreachableRedis points at a port nothing listens on so every command fails fast.
func unreachableRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestBuildKey(t *testing.T) {
	if got := buildKey("product", 42); got != "composite:product:42" {
		t.Errorf("unexpected key %s", got)
	}
}

func TestFallsThroughWhenRedisDown(t *testing.T) {
	client := unreachableRedis()
	defer client.Close()

	next := &stubGateway{}
	g := NewGateway(client, next, time.Minute, nil)
	ctx := context.Background()

	p, err := g.GetProduct(ctx, 1)
	if err != nil {
		t.Fatalf("GetProduct failed: %v", err)
	}
	if p.ServiceAddress != "product-1" {
		t.Errorf("unexpected product %+v", p)
	}
	if next.productCalls != 1 {
		t.Errorf("expected wrapped gateway to be called once, got %d", next.productCalls)
	}

	recs, err := g.GetRecommendations(ctx, 1)
	if err != nil || recs == nil || len(recs) != 0 {
		t.Errorf("expected empty recommendations, got %v, %v", recs, err)
	}

	reviews, err := g.GetReviews(ctx, 1)
	if err != nil || len(reviews) != 1 {
		t.Errorf("expected one review, got %v, %v", reviews, err)
	}
}

func TestNotFoundPassesThrough(t *testing.T) {
	client := unreachableRedis()
	defer client.Close()

	g := NewGateway(client, &stubGateway{}, 0, nil)
	if _, err := g.GetProduct(context.Background(), 404); !errors.Is(err, domain.ErrProductNotFound) {
		t.Errorf("expected ErrProductNotFound, got %v", err)
	}
	if g.ttl != defaultTTL {
		t.Errorf("expected default ttl, got %s", g.ttl)
	}
}

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestServesProductFromCache(t *testing.T) {
	mr, client := newMiniRedis(t)
	next := &stubGateway{}
	g := NewGateway(client, next, time.Minute, nil)
	ctx := context.Background()

	first, err := g.GetProduct(ctx, 1)
	if err != nil {
		t.Fatalf("first GetProduct failed: %v", err)
	}
	if !mr.Exists("composite:product:1") {
		t.Fatal("expected product to be written to cache")
	}
	if ttl := mr.TTL("composite:product:1"); ttl != time.Minute {
		t.Errorf("expected ttl of 1m, got %s", ttl)
	}

	second, err := g.GetProduct(ctx, 1)
	if err != nil {
		t.Fatalf("second GetProduct failed: %v", err)
	}
	if next.productCalls != 1 {
		t.Errorf("expected second call to be served from cache, wrapped gateway called %d times", next.productCalls)
	}
	if *first != *second {
		t.Errorf("cached product differs: %+v vs %+v", first, second)
	}
}

func TestCachedEmptyCollectionStaysPresent(t *testing.T) {
	mr, client := newMiniRedis(t)
	next := &stubGateway{}
	g := NewGateway(client, next, time.Minute, nil)
	ctx := context.Background()

	if _, err := g.GetRecommendations(ctx, 1); err != nil {
		t.Fatalf("first GetRecommendations failed: %v", err)
	}
	if got, _ := mr.Get("composite:recommendations:1"); got != "[]" {
		t.Fatalf("expected [] in cache, got %q", got)
	}

	recs, err := g.GetRecommendations(ctx, 1)
	if err != nil {
		t.Fatalf("second GetRecommendations failed: %v", err)
	}
	if recs == nil || len(recs) != 0 {
		t.Errorf("expected empty, non-nil recommendations, got %#v", recs)
	}
	if next.recommendationCalls != 1 {
		t.Errorf("expected cache hit, wrapped gateway called %d times", next.recommendationCalls)
	}

	for i := 0; i < 2; i++ {
		reviews, err := g.GetReviews(ctx, 1)
		if err != nil || len(reviews) != 1 {
			t.Fatalf("expected one review, got %v, %v", reviews, err)
		}
	}
	if next.reviewCalls != 1 {
		t.Errorf("expected cache hit for reviews, wrapped gateway called %d times", next.reviewCalls)
	}
}

func TestNotFoundIsNotCached(t *testing.T) {
	mr, client := newMiniRedis(t)
	next := &stubGateway{}
	g := NewGateway(client, next, time.Minute, nil)

	for i := 0; i < 2; i++ {
		if _, err := g.GetProduct(context.Background(), 404); !errors.Is(err, domain.ErrProductNotFound) {
			t.Fatalf("expected ErrProductNotFound, got %v", err)
		}
	}
	if mr.Exists("composite:product:404") {
		t.Error("missing product should not be cached")
	}
	if next.productCalls != 2 {
		t.Errorf("expected every lookup to reach the wrapped gateway, got %d", next.productCalls)
	}
}
