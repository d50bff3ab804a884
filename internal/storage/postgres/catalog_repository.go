package postgres

import (
	"context"
	"fmt"

	"github.com/cfblade77/Devforge-sub000/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CatalogRepository serves the simple key-based gig and user reads the order
// pipeline depends on. Listing management is not handled here.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

func (r *CatalogRepository) GetGig(ctx context.Context, gigID int64) (domain.Gig, error) {
	const query = `
SELECT id, seller_id, title, description, category, delivery_days, features, price_cents, currency, created_at
FROM gigs WHERE id = $1`

	var g domain.Gig
	err := r.pool.QueryRow(ctx, query, gigID).Scan(
		&g.ID, &g.SellerID, &g.Title, &g.Description, &g.Category,
		&g.DeliveryDays, &g.Features, &g.PriceCents, &g.Currency, &g.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Gig{}, domain.ErrGigNotFound
		}
		return domain.Gig{}, fmt.Errorf("get gig: %w", err)
	}
	return g, nil
}

func (r *CatalogRepository) GetUser(ctx context.Context, userID int64) (domain.User, error) {
	const query = `SELECT id, name, COALESCE(hosting_token, '') FROM users WHERE id = $1`

	var u domain.User
	err := r.pool.QueryRow(ctx, query, userID).Scan(&u.ID, &u.Name, &u.HostingToken)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}
