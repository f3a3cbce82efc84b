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

const sellerColumns = `id, user_id, store_name, business_no, created_at`

// SellerRepository provides data access for sellers using pgx.
type SellerRepository struct {
	pool database.TxQuerier
}

// NewSellerRepository creates a new SellerRepository with the given pool.
func NewSellerRepository(pool *pgxpool.Pool) *SellerRepository {
	return &SellerRepository{pool: pool}
}

// NewSellerRepositoryWithPool creates a SellerRepository over any TxQuerier.
func NewSellerRepositoryWithPool(pool database.TxQuerier) *SellerRepository {
	return &SellerRepository{pool: pool}
}

func scanSeller(row scanner) (*model.Seller, error) {
	var s model.Seller
	if err := row.Scan(&s.ID, &s.UserID, &s.StoreName, &s.BusinessNo, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// Insert stores a seller profile.
// Returns service.ErrSellerExists when the user already has one and
// service.ErrStoreNameExists when the store name is taken.
func (r *SellerRepository) Insert(ctx context.Context, s *model.Seller) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO sellers (user_id, store_name, business_no)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		s.UserID, s.StoreName, s.BusinessNo,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		if constraint, ok := uniqueConstraint(err); ok {
			if constraint == "sellers_store_name_key" {
				return service.ErrStoreNameExists
			}
			return service.ErrSellerExists
		}
		return fmt.Errorf("insert seller: %w", err)
	}
	return nil
}

func (r *SellerRepository) getOne(ctx context.Context, where string, arg any) (*model.Seller, error) {
	s, err := scanSeller(r.pool.QueryRow(ctx, `SELECT `+sellerColumns+` FROM sellers WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrSellerNotFound
		}
		return nil, fmt.Errorf("get seller: %w", err)
	}
	return s, nil
}

// GetByID retrieves a seller by id.
func (r *SellerRepository) GetByID(ctx context.Context, id int64) (*model.Seller, error) {
	return r.getOne(ctx, `id = $1`, id)
}

// GetByUserID retrieves the seller profile of a user.
func (r *SellerRepository) GetByUserID(ctx context.Context, userID int64) (*model.Seller, error) {
	return r.getOne(ctx, `user_id = $1`, userID)
}

// GetByStoreName retrieves a seller by exact store name.
func (r *SellerRepository) GetByStoreName(ctx context.Context, storeName string) (*model.Seller, error) {
	return r.getOne(ctx, `store_name = $1`, storeName)
}

// FindByStoreNameLike returns the oldest seller whose store name contains
// fragment or is contained in it.
func (r *SellerRepository) FindByStoreNameLike(ctx context.Context, fragment string) (*model.Seller, error) {
	return r.getOne(ctx,
		`(store_name ILIKE '%' || $1 || '%' OR $1 ILIKE '%' || store_name || '%') ORDER BY id LIMIT 1`,
		fragment)
}

// GetByIDs returns the sellers with the given ids keyed by id. Missing ids are skipped.
func (r *SellerRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*model.Seller, error) {
	sellers := make(map[int64]*model.Seller, len(ids))
	if len(ids) == 0 {
		return sellers, nil
	}

	rows, err := r.pool.Query(ctx, `SELECT `+sellerColumns+` FROM sellers WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("get sellers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		s, err := scanSeller(rows)
		if err != nil {
			return nil, fmt.Errorf("scan seller: %w", err)
		}
		sellers[s.ID] = s
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sellers rows: %w", err)
	}
	return sellers, nil
}
