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

const (
	orderColumns = `id, order_no, user_id, state, pay_state, receiver_name, receiver_phone, address_simple,
		address_detail, delivery_comment, total_price, discount_price, created_at, updated_at`
	orderInfoColumns = `id, order_id, product_id, seller_id, product_name, product_cnt, product_price,
		product_thumbnail_img, user_coupon_id, discount_price`
)

// OrderRepository provides data access for orders and their lines.
type OrderRepository struct {
	pool database.TxQuerier
}

// NewOrderRepository creates a new OrderRepository with the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// NewOrderRepositoryWithPool creates an OrderRepository over any TxQuerier.
// This is primarily used for testing.
func NewOrderRepositoryWithPool(pool database.TxQuerier) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func scanOrder(row scanner) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID,
		&o.OrderNo,
		&o.UserID,
		&o.State,
		&o.PayState,
		&o.ReceiverName,
		&o.ReceiverPhone,
		&o.AddressSimple,
		&o.AddressDetail,
		&o.DeliveryComment,
		&o.TotalPrice,
		&o.DiscountPrice,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func scanOrderInfo(row scanner) (*model.OrderInfo, error) {
	var i model.OrderInfo
	err := row.Scan(
		&i.ID, &i.OrderID, &i.ProductID, &i.SellerID, &i.ProductName, &i.ProductCnt,
		&i.ProductPrice, &i.ProductThumbnailImg, &i.UserCouponID, &i.DiscountPrice,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// Insert stores an order and its lines within a transaction.
func (r *OrderRepository) Insert(ctx context.Context, tx database.TxQuerier, o *model.Order) error {
	err := tx.QueryRow(ctx,
		`INSERT INTO orders (order_no, user_id, state, pay_state, receiver_name, receiver_phone,
		                     address_simple, address_detail, delivery_comment, total_price, discount_price)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id, created_at, updated_at`,
		o.OrderNo, o.UserID, o.State, o.PayState, o.ReceiverName, o.ReceiverPhone,
		o.AddressSimple, o.AddressDetail, o.DeliveryComment, o.TotalPrice, o.DiscountPrice,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for idx := range o.Infos {
		info := &o.Infos[idx]
		info.OrderID = o.ID
		err := tx.QueryRow(ctx,
			`INSERT INTO order_infos (order_id, product_id, seller_id, product_name, product_cnt,
			                          product_price, product_thumbnail_img, user_coupon_id, discount_price)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 RETURNING id`,
			info.OrderID, info.ProductID, info.SellerID, info.ProductName, info.ProductCnt,
			info.ProductPrice, info.ProductThumbnailImg, info.UserCouponID, info.DiscountPrice,
		).Scan(&info.ID)
		if err != nil {
			return fmt.Errorf("insert order info for product %d: %w", info.ProductID, err)
		}
	}
	return nil
}

// GetByID retrieves an order with its lines.
// Returns service.ErrOrderNotFound if it doesn't exist.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	return r.getOne(ctx, r.pool, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

// GetForUpdate locks an order row and loads its lines. Must be called within a transaction.
func (r *OrderRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, id int64) (*model.Order, error) {
	return r.getOne(ctx, tx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id)
}

func (r *OrderRepository) getOne(ctx context.Context, q database.TxQuerier, query string, id int64) (*model.Order, error) {
	o, err := scanOrder(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}

	infos, err := r.queryInfos(ctx, q, `SELECT `+orderInfoColumns+` FROM order_infos WHERE order_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	o.Infos = infos
	return o, nil
}

func (r *OrderRepository) queryInfos(ctx context.Context, q database.TxQuerier, query string, args ...any) ([]model.OrderInfo, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query order infos: %w", err)
	}
	defer rows.Close()

	infos := []model.OrderInfo{}
	for rows.Next() {
		info, err := scanOrderInfo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order info: %w", err)
		}
		infos = append(infos, *info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order infos rows: %w", err)
	}
	return infos, nil
}

// ListByUser returns the user's orders with their lines, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders for user %d: %w", userID, err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders rows: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]int64, len(orders))
	index := make(map[int64]int, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		index[orders[i].ID] = i
		orders[i].Infos = []model.OrderInfo{}
	}
	infos, err := r.queryInfos(ctx, r.pool,
		`SELECT `+orderInfoColumns+` FROM order_infos WHERE order_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, err
	}
	for _, info := range infos {
		if i, ok := index[info.OrderID]; ok {
			orders[i].Infos = append(orders[i].Infos, info)
		}
	}
	return orders, nil
}

// SetState moves a locked order to a new state.
func (r *OrderRepository) SetState(ctx context.Context, tx database.TxQuerier, id int64, state model.OrderState) error {
	_, err := tx.Exec(ctx, `UPDATE orders SET state = $2, updated_at = NOW() WHERE id = $1`, id, state)
	if err != nil {
		return fmt.Errorf("set state of order %d: %w", id, err)
	}
	return nil
}
