// Package repository implements upstream.Gateway on top of PostgreSQL, for
// running the composite service without the three backing services.
package repository

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/actuallystonmai/product-composite-service/internal/upstream"
)

type Repository struct {
	pool    *pgxpool.Pool
	address string
}

var _ upstream.Gateway = (*Repository)(nil)

// New returns a Repository that reports the database host as the service
// address of every record it reads.
func New(pool *pgxpool.Pool) *Repository {
	cc := pool.Config().ConnConfig
	return &Repository{pool: pool, address: fmt.Sprintf("postgres/%s:%d", cc.Host, cc.Port)}
}
