package postgres

import (
	"context"
	"fmt"

	"github.com/cfblade77/Devforge-sub000/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const orderColumns = `id, buyer_id, gig_id, price_cents, currency, payment_handle,
confirmation_token, completed, completed_at, repo_name, repo_url, repo_created, created_at`

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// FindOpenOrder returns the open order for the buyer/gig pair, or nil. The
// partial unique index guarantees there is at most one.
func (r *OrderRepository) FindOpenOrder(ctx context.Context, buyerID, gigID int64) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
WHERE buyer_id = $1 AND gig_id = $2 AND NOT completed`

	o, err := r.scanOrder(r.queryRow(ctx, query, buyerID, gigID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find open order: %w", err)
	}
	return &o, nil
}

// Create inserts a new open order. A concurrent duplicate submission loses to
// the partial unique index and surfaces as ErrDuplicateOpenOrder.
func (r *OrderRepository) Create(ctx context.Context, order domain.Order) (domain.Order, error) {
	query := `
INSERT INTO orders (buyer_id, gig_id, price_cents, currency, payment_handle, confirmation_token, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + orderColumns

	o, err := r.scanOrder(r.queryRow(ctx, query,
		order.BuyerID, order.GigID, order.PriceCents, order.Currency,
		order.PaymentHandle, order.ConfirmationToken, order.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Order{}, domain.ErrDuplicateOpenOrder
		}
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}
	return o, nil
}

// ReissueHandle replaces the payment handle of a still-open order.
func (r *OrderRepository) ReissueHandle(ctx context.Context, orderID int64, handle string) (domain.Order, error) {
	query := `
UPDATE orders SET payment_handle = $2
WHERE id = $1 AND NOT completed
RETURNING ` + orderColumns

	o, err := r.scanOrder(r.queryRow(ctx, query, orderID, handle))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("reissue handle: %w", err)
	}
	return o, nil
}

func (r *OrderRepository) GetByID(ctx context.Context, orderID int64) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	o, err := r.scanOrder(r.queryRow(ctx, query, orderID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &o, nil
}

// FindByPaymentHandle matches on the stored core handle; callers strip any
// client-side secret suffix first.
func (r *OrderRepository) FindByPaymentHandle(ctx context.Context, handle string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE payment_handle = $1
ORDER BY id DESC LIMIT 1`

	o, err := r.scanOrder(r.queryRow(ctx, query, handle))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find order by handle: %w", err)
	}
	return &o, nil
}

// MarkCompleted transitions the order to completed exactly once. A second
// call returns the stored record unchanged and performs no write.
func (r *OrderRepository) MarkCompleted(ctx context.Context, orderID int64, finalHandle string) (domain.Order, error) {
	var out domain.Order
	err := withTx(ctx, r.pool, func(txCtx context.Context) error {
		current, err := r.getForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}
		if current.Completed {
			out = current
			return nil
		}

		query := `
UPDATE orders SET completed = TRUE, completed_at = NOW(), payment_handle = $2
WHERE id = $1
RETURNING ` + orderColumns

		out, err = r.scanOrder(r.queryRow(txCtx, query, orderID, finalHandle))
		if err != nil {
			return fmt.Errorf("mark completed: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return out, nil
}

// AttachRepository records the provisioned repository exactly once; a no-op
// once repo_created is set.
func (r *OrderRepository) AttachRepository(ctx context.Context, orderID int64, name, url string) (domain.Order, error) {
	var out domain.Order
	err := withTx(ctx, r.pool, func(txCtx context.Context) error {
		current, err := r.getForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}
		if current.RepoCreated {
			out = current
			return nil
		}

		query := `
UPDATE orders SET repo_name = $2, repo_url = $3, repo_created = TRUE
WHERE id = $1
RETURNING ` + orderColumns

		out, err = r.scanOrder(r.queryRow(txCtx, query, orderID, name, url))
		if err != nil {
			return fmt.Errorf("attach repository: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return out, nil
}

func (r *OrderRepository) getForUpdate(ctx context.Context, orderID int64) (domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`

	o, err := r.scanOrder(r.queryRow(ctx, query, orderID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("get order for update: %w", err)
	}
	return o, nil
}

func (r *OrderRepository) scanOrder(row pgx.Row) (domain.Order, error) {
	var o domain.Order
	err := row.Scan(
		&o.ID, &o.BuyerID, &o.GigID, &o.PriceCents, &o.Currency, &o.PaymentHandle,
		&o.ConfirmationToken, &o.Completed, &o.CompletedAt,
		&o.RepoName, &o.RepoURL, &o.RepoCreated, &o.CreatedAt,
	)
	return o, err
}

func (r *OrderRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
