package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/actuallystonmai/product-composite-service/internal/domain"
	"github.com/actuallystonmai/product-composite-service/internal/logger"
	"github.com/actuallystonmai/product-composite-service/internal/upstream"
)

const defaultTTL = 10 * time.Minute

// Gateway is a read-through cache in front of another upstream.Gateway.
// Redis failures are logged and fall through to the wrapped gateway.
// Missing products are never cached.
type Gateway struct {
	client *redis.Client
	next   upstream.Gateway
	ttl    time.Duration
	log    *logger.Logger
}

var _ upstream.Gateway = (*Gateway)(nil)

func NewGateway(client *redis.Client, next upstream.Gateway, ttl time.Duration, log *logger.Logger) *Gateway {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Gateway{client: client, next: next, ttl: ttl, log: log.With("component", "cache")}
}

func buildKey(kind string, productID int) string {
	return fmt.Sprintf("composite:%s:%d", kind, productID)
}

func (g *Gateway) GetProduct(ctx context.Context, productID int) (*domain.Product, error) {
	key := buildKey("product", productID)

	var cached domain.Product
	if g.get(ctx, key, &cached) {
		return &cached, nil
	}

	p, err := g.next.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	g.set(ctx, key, p)
	return p, nil
}

func (g *Gateway) GetRecommendations(ctx context.Context, productID int) ([]domain.Recommendation, error) {
	key := buildKey("recommendations", productID)

	var cached []domain.Recommendation
	if g.get(ctx, key, &cached) && cached != nil {
		return cached, nil
	}

	recs, err := g.next.GetRecommendations(ctx, productID)
	if err != nil {
		return nil, err
	}
	g.set(ctx, key, recs)
	return recs, nil
}

func (g *Gateway) GetReviews(ctx context.Context, productID int) ([]domain.Review, error) {
	key := buildKey("reviews", productID)

	var cached []domain.Review
	if g.get(ctx, key, &cached) && cached != nil {
		return cached, nil
	}

	reviews, err := g.next.GetReviews(ctx, productID)
	if err != nil {
		return nil, err
	}
	g.set(ctx, key, reviews)
	return reviews, nil
}

// Ping connectivity
func (g *Gateway) Ping(ctx context.Context) error {
	return g.client.Ping(ctx).Err()
}

func (g *Gateway) get(ctx context.Context, key string, out any) bool {
	val, err := g.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		g.log.Warn("cache get failed", "key", key, "error", err)
		return false
	}
	if err := json.Unmarshal(val, out); err != nil {
		g.log.Warn("cache entry unreadable", "key", key, "error", err)
		return false
	}
	return true
}

func (g *Gateway) set(ctx context.Context, key string, v any) {
	val, err := json.Marshal(v)
	if err != nil {
		g.log.Warn("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := g.client.Set(ctx, key, val, g.ttl).Err(); err != nil {
		g.log.Warn("cache set failed", "key", key, "error", err)
	}
}
