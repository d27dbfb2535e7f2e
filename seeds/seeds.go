package seeds

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/actuallystonmai/product-composite-service/internal/domain"
	"github.com/actuallystonmai/product-composite-service/internal/logger"
)

const (
	productCount = 20

	// Products at these ids are seeded without recommendations or reviews,
	// so the empty-collection path can be exercised by hand.
	noRecommendationsID = 13
	noReviewsID         = 17
)

var (
	authors  = []string{"alice", "bob", "carol", "dave", "erin", "frank"}
	subjects = []string{"Great value", "Broke after a week", "Does the job", "Would buy again", "Too heavy"}
	adjs     = []string{"Compact", "Deluxe", "Rugged", "Portable", "Classic"}
	nouns    = []string{"Kettle", "Backpack", "Lamp", "Headphones", "Tent", "Blender"}
)

// Dataset is the full seed generated from a fixed random source.
type Dataset struct {
	Products        []domain.Product
	Recommendations []domain.Recommendation
	Reviews         []domain.Review
}

func Setup(ctx context.Context, pool *pgxpool.Pool, log *logger.Logger) error {
	data := Generate(rand.New(rand.NewSource(42)), productCount)

	// Truncate existing data before insert
	log.Info("[seed] truncating existing data")
	if _, err := pool.Exec(ctx, `TRUNCATE reviews, recommendations, products CASCADE`); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	log.Info("[seed] inserting products", "count", len(data.Products))
	if err := insertProducts(ctx, pool, data.Products); err != nil {
		return fmt.Errorf("seed products: %w", err)
	}

	log.Info("[seed] inserting recommendations", "count", len(data.Recommendations))
	if err := insertRecommendations(ctx, pool, data.Recommendations); err != nil {
		return fmt.Errorf("seed recommendations: %w", err)
	}

	log.Info("[seed] inserting reviews", "count", len(data.Reviews))
	if err := insertReviews(ctx, pool, data.Reviews); err != nil {
		return fmt.Errorf("seed reviews: %w", err)
	}

	log.Info("[seed] seeding complete")
	return nil
}

func Generate(rng *rand.Rand, n int) Dataset {
	var data Dataset

	for id := 1; id <= n; id++ {
		data.Products = append(data.Products, domain.Product{
			ProductID: id,
			Name:      fmt.Sprintf("%s %s", adjs[rng.Intn(len(adjs))], nouns[rng.Intn(len(nouns))]),
			Weight:    rng.Intn(5000) + 100,
		})

		if id != noRecommendationsID {
			count := weightedCount(rng)
			for i := 1; i <= count; i++ {
				data.Recommendations = append(data.Recommendations, domain.Recommendation{
					ProductID:        id,
					RecommendationID: i,
					Author:           authors[rng.Intn(len(authors))],
					Rate:             rng.Intn(5) + 1,
					Content:          fmt.Sprintf("recommendation %d for product %d", i, id),
				})
			}
		}

		if id != noReviewsID {
			count := weightedCount(rng)
			for i := 1; i <= count; i++ {
				data.Reviews = append(data.Reviews, domain.Review{
					ProductID: id,
					ReviewID:  i,
					Author:    authors[rng.Intn(len(authors))],
					Subject:   subjects[rng.Intn(len(subjects))],
					Content:   fmt.Sprintf("review %d for product %d", i, id),
				})
			}
		}
	}

	return data
}

func insertProducts(ctx context.Context, pool *pgxpool.Pool, products []domain.Product) error {
	rows := []string{}
	args := []any{}
	for _, p := range products {
		base := len(args)
		rows = append(rows, fmt.Sprintf("($%d, $%d, $%d)", base+1, base+2, base+3))
		args = append(args, p.ProductID, p.Name, p.Weight)
	}
	return insert(ctx, pool, "INSERT INTO products (product_id, name, weight) VALUES ", rows, args)
}

func insertRecommendations(ctx context.Context, pool *pgxpool.Pool, recs []domain.Recommendation) error {
	rows := []string{}
	args := []any{}
	for _, r := range recs {
		base := len(args)
		rows = append(rows, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4, base+5))
		args = append(args, r.ProductID, r.RecommendationID, r.Author, r.Rate, r.Content)
	}
	return insert(ctx, pool,
		"INSERT INTO recommendations (product_id, recommendation_id, author, rate, content) VALUES ", rows, args)
}

func insertReviews(ctx context.Context, pool *pgxpool.Pool, reviews []domain.Review) error {
	rows := []string{}
	args := []any{}
	for _, r := range reviews {
		base := len(args)
		rows = append(rows, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4, base+5))
		args = append(args, r.ProductID, r.ReviewID, r.Author, r.Subject, r.Content)
	}
	return insert(ctx, pool,
		"INSERT INTO reviews (product_id, review_id, author, subject, content) VALUES ", rows, args)
}

func insert(ctx context.Context, pool *pgxpool.Pool, prefix string, rows []string, args []any) error {
	if len(rows) == 0 {
		return nil
	}
	_, err := pool.Exec(ctx, prefix+strings.Join(rows, ", "), args...)
	return err
}

// weightedCount picks 0-3 child records, skewed towards 1-2.
func weightedCount(rng *rand.Rand) int {
	weights := []float64{0.1, 0.4, 0.35, 0.15}
	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := rng.Float64() * total
	cumulative := 0.0
	for i, w := range weights {
		cumulative += w
		if r <= cumulative {
			return i
		}
	}
	return len(weights) - 1
}
