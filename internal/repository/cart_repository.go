package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/feelmycode/parabole/internal/model"
	"github.com/feelmycode/parabole/internal/service"
	"github.com/feelmycode/parabole/pkg/database"
)

const cartLineQuery = `
	SELECT ci.id, p.id, p.name, p.price, p.remains, p.thumbnail_img, ci.cnt, s.id, s.store_name
	FROM cart_items ci
	JOIN products p ON p.id = ci.product_id
	JOIN sellers s ON s.id = p.seller_id`

// CartRepository provides data access for cart items.
type CartRepository struct {
	pool database.TxQuerier
}

// NewCartRepository creates a new CartRepository with the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// NewCartRepositoryWithPool creates a CartRepository over any TxQuerier.
// This is primarily used for testing.
func NewCartRepositoryWithPool(pool database.TxQuerier) *CartRepository {
	return &CartRepository{pool: pool}
}

func scanCartLine(row scanner) (*model.CartLine, error) {
	var l model.CartLine
	err := row.Scan(
		&l.CartItemID, &l.ProductID, &l.ProductName, &l.Price, &l.Remains,
		&l.ThumbnailImg, &l.Cnt, &l.SellerID, &l.StoreName,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Upsert puts a product in the user's cart. When the product is already
// there the counts are added together. item.Cnt holds the resulting count.
func (r *CartRepository) Upsert(ctx context.Context, item *model.CartItem) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO cart_items (user_id, product_id, cnt)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, product_id) DO UPDATE SET cnt = cart_items.cnt + EXCLUDED.cnt
		 RETURNING id, cnt, created_at`,
		item.UserID, item.ProductID, item.Cnt,
	).Scan(&item.ID, &item.Cnt, &item.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert cart item: %w", err)
	}
	return nil
}

// GetByID retrieves a cart item.
// Returns service.ErrCartItemNotFound if it doesn't exist.
func (r *CartRepository) GetByID(ctx context.Context, id int64) (*model.CartItem, error) {
	var item model.CartItem
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, product_id, cnt, created_at FROM cart_items WHERE id = $1`, id,
	).Scan(&item.ID, &item.UserID, &item.ProductID, &item.Cnt, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrCartItemNotFound
		}
		return nil, fmt.Errorf("get cart item %d: %w", id, err)
	}
	return &item, nil
}

// UpdateCnt replaces the count of a cart item.
func (r *CartRepository) UpdateCnt(ctx context.Context, id int64, cnt int) error {
	tag, err := r.pool.Exec(ctx, `UPDATE cart_items SET cnt = $2 WHERE id = $1`, id, cnt)
	if err != nil {
		return fmt.Errorf("update cart item %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrCartItemNotFound
	}
	return nil
}

// Delete removes a cart item.
func (r *CartRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete cart item %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrCartItemNotFound
	}
	return nil
}

// ListByUser returns the user's cart lines for live products, newest first.
func (r *CartRepository) ListByUser(ctx context.Context, userID int64) ([]model.CartLine, error) {
	return r.queryLines(ctx, r.pool,
		cartLineQuery+` WHERE ci.user_id = $1 AND NOT p.is_deleted ORDER BY ci.id DESC`, userID)
}

// GetByIDsForUser returns the lines among ids that belong to the user.
// Callers compare the result length with ids to detect foreign or missing items.
func (r *CartRepository) GetByIDsForUser(ctx context.Context, tx database.TxQuerier, userID int64, ids []int64) ([]model.CartLine, error) {
	return r.queryLines(ctx, tx,
		cartLineQuery+` WHERE ci.user_id = $1 AND ci.id = ANY($2) ORDER BY ci.id`, userID, ids)
}

func (r *CartRepository) queryLines(ctx context.Context, q database.TxQuerier, query string, args ...any) ([]model.CartLine, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list cart lines: %w", err)
	}
	defer rows.Close()

	lines := []model.CartLine{}
	for rows.Next() {
		l, err := scanCartLine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart rows: %w", err)
	}
	return lines, nil
}

// DeleteByIDs removes ordered cart items within a transaction.
func (r *CartRepository) DeleteByIDs(ctx context.Context, tx database.TxQuerier, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE id = ANY($1)`, ids); err != nil {
		return fmt.Errorf("delete cart items: %w", err)
	}
	return nil
}
