package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/feelmycode/parabole/internal/model"
	"github.com/feelmycode/parabole/internal/service"
	"github.com/feelmycode/parabole/pkg/database"
)

const couponColumns = `id, seller_id, name, type, discount_value, remains, expires_at, created_at`

const userCouponViewQuery = `
	SELECT uc.id, uc.serial_no, uc.coupon_id, uc.user_id, uc.used, uc.acquired_at, uc.used_at,
	       c.seller_id, c.name, c.type, c.discount_value, c.expires_at
	FROM user_coupons uc
	JOIN coupons c ON c.id = uc.coupon_id`

// CouponRepository provides data access for coupons and the copies users hold.
type CouponRepository struct {
	pool database.TxQuerier
}

// NewCouponRepository creates a new CouponRepository with the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// NewCouponRepositoryWithPool creates a CouponRepository over any TxQuerier.
// This is primarily used for testing.
func NewCouponRepositoryWithPool(pool database.TxQuerier) *CouponRepository {
	return &CouponRepository{pool: pool}
}

func scanCoupon(row scanner) (*model.Coupon, error) {
	var c model.Coupon
	err := row.Scan(&c.ID, &c.SellerID, &c.Name, &c.Type, &c.DiscountValue, &c.Remains, &c.ExpiresAt, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func scanUserCouponView(row scanner) (*model.UserCouponView, error) {
	var v model.UserCouponView
	err := row.Scan(
		&v.ID, &v.SerialNo, &v.CouponID, &v.UserID, &v.Used, &v.AcquiredAt, &v.UsedAt,
		&v.SellerID, &v.Name, &v.Type, &v.DiscountValue, &v.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Insert stores a new coupon template.
func (r *CouponRepository) Insert(ctx context.Context, c *model.Coupon) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO coupons (seller_id, name, type, discount_value, remains, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		c.SellerID, c.Name, c.Type, c.DiscountValue, c.Remains, c.ExpiresAt,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert coupon: %w", err)
	}
	return nil
}

// GetByID retrieves a coupon template.
// Returns service.ErrCouponNotFound if it doesn't exist.
func (r *CouponRepository) GetByID(ctx context.Context, id int64) (*model.Coupon, error) {
	c, err := scanCoupon(r.pool.QueryRow(ctx, `SELECT `+couponColumns+` FROM coupons WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrCouponNotFound
		}
		return nil, fmt.Errorf("get coupon %d: %w", id, err)
	}
	return c, nil
}

// GetForUpdate retrieves a coupon with a row lock (SELECT FOR UPDATE).
// Must be called within a transaction.
func (r *CouponRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, id int64) (*model.Coupon, error) {
	c, err := scanCoupon(tx.QueryRow(ctx, `SELECT `+couponColumns+` FROM coupons WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrCouponNotFound
		}
		return nil, fmt.Errorf("get coupon for update %d: %w", id, err)
	}
	return c, nil
}

// SetRemains writes the remaining copies counter of a locked coupon.
func (r *CouponRepository) SetRemains(ctx context.Context, tx database.TxQuerier, id, remains int64) error {
	_, err := tx.Exec(ctx, `UPDATE coupons SET remains = $2 WHERE id = $1`, id, remains)
	if err != nil {
		return fmt.Errorf("set remains for coupon %d: %w", id, err)
	}
	return nil
}

// ListBySeller returns the coupon templates of a seller, newest first.
func (r *CouponRepository) ListBySeller(ctx context.Context, sellerID int64) ([]model.Coupon, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+couponColumns+` FROM coupons WHERE seller_id = $1 ORDER BY id DESC`, sellerID)
	if err != nil {
		return nil, fmt.Errorf("list coupons for seller %d: %w", sellerID, err)
	}
	defer rows.Close()

	coupons := []model.Coupon{}
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, fmt.Errorf("scan coupon: %w", err)
		}
		coupons = append(coupons, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate coupons rows: %w", err)
	}
	return coupons, nil
}

// InsertUserCoupon hands one copy of a coupon to a user.
func (r *CouponRepository) InsertUserCoupon(ctx context.Context, tx database.TxQuerier, uc *model.UserCoupon) error {
	err := tx.QueryRow(ctx,
		`INSERT INTO user_coupons (serial_no, coupon_id, user_id)
		 VALUES ($1, $2, $3)
		 RETURNING id, acquired_at`,
		uc.SerialNo, uc.CouponID, uc.UserID,
	).Scan(&uc.ID, &uc.AcquiredAt)
	if err != nil {
		return fmt.Errorf("insert user coupon: %w", err)
	}
	return nil
}

// GetUserCouponBySerialForUpdate locks a held coupon by serial number and
// returns it joined with its template.
func (r *CouponRepository) GetUserCouponBySerialForUpdate(ctx context.Context, tx database.TxQuerier, serialNo uuid.UUID) (*model.UserCouponView, error) {
	v, err := scanUserCouponView(tx.QueryRow(ctx,
		userCouponViewQuery+` WHERE uc.serial_no = $1 FOR UPDATE OF uc`, serialNo))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrCouponNotFound
		}
		return nil, fmt.Errorf("get user coupon %s: %w", serialNo, err)
	}
	return v, nil
}

// GetUserCouponByID retrieves a held coupon joined with its template.
func (r *CouponRepository) GetUserCouponByID(ctx context.Context, id int64) (*model.UserCouponView, error) {
	v, err := scanUserCouponView(r.pool.QueryRow(ctx, userCouponViewQuery+` WHERE uc.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrCouponNotFound
		}
		return nil, fmt.Errorf("get user coupon %d: %w", id, err)
	}
	return v, nil
}

// MarkUserCouponUsed flips the used flag. Marking unused clears used_at.
func (r *CouponRepository) MarkUserCouponUsed(ctx context.Context, tx database.TxQuerier, id int64, used bool) error {
	_, err := tx.Exec(ctx,
		`UPDATE user_coupons
		 SET used = $2, used_at = CASE WHEN $2 THEN NOW() ELSE NULL END
		 WHERE id = $1`,
		id, used)
	if err != nil {
		return fmt.Errorf("mark user coupon %d: %w", id, err)
	}
	return nil
}

// ListUserCoupons returns the coupons a user holds, newest first.
func (r *CouponRepository) ListUserCoupons(ctx context.Context, userID int64, unusedOnly bool) ([]model.UserCouponView, error) {
	query := userCouponViewQuery + ` WHERE uc.user_id = $1`
	if unusedOnly {
		query += ` AND NOT uc.used`
	}
	query += ` ORDER BY uc.id DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list user coupons for user %d: %w", userID, err)
	}
	defer rows.Close()

	views := []model.UserCouponView{}
	for rows.Next() {
		v, err := scanUserCouponView(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user coupon: %w", err)
		}
		views = append(views, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user coupons rows: %w", err)
	}
	return views, nil
}
