package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/feelmycode/parabole/internal/model"
	"github.com/feelmycode/parabole/internal/service"
	"github.com/feelmycode/parabole/pkg/database"
)

const productColumns = `id, seller_id, name, category, price, remains, thumbnail_img, description, is_deleted, created_at, updated_at`

// ProductRepository provides data access for products using pgx.
type ProductRepository struct {
	pool database.TxQuerier
}

// NewProductRepository creates a new ProductRepository with the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// NewProductRepositoryWithPool creates a ProductRepository over any TxQuerier.
// This is primarily used for testing.
func NewProductRepositoryWithPool(pool database.TxQuerier) *ProductRepository {
	return &ProductRepository{pool: pool}
}

func scanProduct(row scanner) (*model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID,
		&p.SellerID,
		&p.Name,
		&p.Category,
		&p.Price,
		&p.Remains,
		&p.ThumbnailImg,
		&p.Description,
		&p.IsDeleted,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Insert stores a new product and fills ID and timestamps.
func (r *ProductRepository) Insert(ctx context.Context, p *model.Product) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO products (seller_id, name, category, price, remains, thumbnail_img, description)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		p.SellerID, p.Name, p.Category, p.Price, p.Remains, p.ThumbnailImg, p.Description,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID retrieves a product that has not been deleted.
// Returns service.ErrProductNotFound otherwise.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1 AND NOT is_deleted`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}

// GetForUpdate retrieves a product with a row lock (SELECT FOR UPDATE).
// Deleted products are returned too so stock can still be restored to them.
// Returns service.ErrProductNotFound if the product doesn't exist.
func (r *ProductRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, id int64) (*model.Product, error) {
	p, err := scanProduct(tx.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product for update %d: %w", id, err)
	}
	return p, nil
}

// Update replaces the editable fields of a live product. The stock counter
// is left alone; p.Remains is refreshed from the row.
func (r *ProductRepository) Update(ctx context.Context, p *model.Product) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE products
		 SET name = $2, category = $3, price = $4, thumbnail_img = $5, description = $6, updated_at = NOW()
		 WHERE id = $1 AND NOT is_deleted
		 RETURNING remains, updated_at`,
		p.ID, p.Name, p.Category, p.Price, p.ThumbnailImg, p.Description,
	).Scan(&p.Remains, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return service.ErrProductNotFound
		}
		return fmt.Errorf("update product %d: %w", p.ID, err)
	}
	return nil
}

// SetRemains writes the stock counter. Must be called within a transaction
// after locking the row with GetForUpdate.
func (r *ProductRepository) SetRemains(ctx context.Context, tx database.TxQuerier, id, remains int64) error {
	_, err := tx.Exec(ctx,
		`UPDATE products SET remains = $2, updated_at = NOW() WHERE id = $1`, id, remains)
	if err != nil {
		return fmt.Errorf("set remains for product %d: %w", id, err)
	}
	return nil
}

// SoftDelete hides a product from listings and lookups.
func (r *ProductRepository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET is_deleted = TRUE, updated_at = NOW() WHERE id = $1 AND NOT is_deleted`, id)
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrProductNotFound
	}
	return nil
}

// List returns one page of live products matching filter, newest first,
// together with the total number of matches.
func (r *ProductRepository) List(ctx context.Context, f model.ProductFilter) ([]model.Product, int64, error) {
	conds := []string{"NOT is_deleted"}
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.SellerID != 0 {
		add("seller_id = $%d", f.SellerID)
	}
	if f.ProductName != "" {
		add("name ILIKE '%%' || $%d || '%%'", f.ProductName)
	}
	if f.Category != "" {
		add("category = $%d", f.Category)
	}

	args = append(args, f.Size, f.Page*f.Size)
	query := fmt.Sprintf(
		`SELECT %s, COUNT(*) OVER() FROM products WHERE %s ORDER BY id DESC LIMIT $%d OFFSET $%d`,
		productColumns, strings.Join(conds, " AND "), len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	var total int64
	for rows.Next() {
		var p model.Product
		err := rows.Scan(
			&p.ID, &p.SellerID, &p.Name, &p.Category, &p.Price, &p.Remains,
			&p.ThumbnailImg, &p.Description, &p.IsDeleted, &p.CreatedAt, &p.UpdatedAt,
			&total,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate products rows: %w", err)
	}
	return products, total, nil
}

// NamesBySeller returns up to limit product names of a seller, oldest first.
func (r *ProductRepository) NamesBySeller(ctx context.Context, sellerID int64, limit int) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT name FROM products WHERE seller_id = $1 AND NOT is_deleted ORDER BY id LIMIT $2`,
		sellerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list product names for seller %d: %w", sellerID, err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan product name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product names: %w", err)
	}
	return names, nil
}
