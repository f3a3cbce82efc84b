package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/feelmycode/parabole/internal/model"
	"github.com/feelmycode/parabole/pkg/database"
)

// TxBeginner defines the interface for beginning transactions.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// UserRepositoryInterface defines the interface for user data access.
type UserRepositoryInterface interface {
	Insert(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// SellerRepositoryInterface defines the interface for seller data access.
type SellerRepositoryInterface interface {
	Insert(ctx context.Context, s *model.Seller) error
	GetByID(ctx context.Context, id int64) (*model.Seller, error)
	GetByUserID(ctx context.Context, userID int64) (*model.Seller, error)
	GetByStoreName(ctx context.Context, storeName string) (*model.Seller, error)
	FindByStoreNameLike(ctx context.Context, fragment string) (*model.Seller, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*model.Seller, error)
}

// ProductRepositoryInterface defines the interface for product data access.
type ProductRepositoryInterface interface {
	Insert(ctx context.Context, p *model.Product) error
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	GetForUpdate(ctx context.Context, tx database.TxQuerier, id int64) (*model.Product, error)
	Update(ctx context.Context, p *model.Product) error
	SetRemains(ctx context.Context, tx database.TxQuerier, id, remains int64) error
	SoftDelete(ctx context.Context, id int64) error
	List(ctx context.Context, f model.ProductFilter) ([]model.Product, int64, error)
	NamesBySeller(ctx context.Context, sellerID int64, limit int) ([]string, error)
}

// CouponRepositoryInterface defines the interface for coupon data access.
type CouponRepositoryInterface interface {
	Insert(ctx context.Context, c *model.Coupon) error
	GetByID(ctx context.Context, id int64) (*model.Coupon, error)
	GetForUpdate(ctx context.Context, tx database.TxQuerier, id int64) (*model.Coupon, error)
	SetRemains(ctx context.Context, tx database.TxQuerier, id, remains int64) error
	ListBySeller(ctx context.Context, sellerID int64) ([]model.Coupon, error)
	InsertUserCoupon(ctx context.Context, tx database.TxQuerier, uc *model.UserCoupon) error
	GetUserCouponBySerialForUpdate(ctx context.Context, tx database.TxQuerier, serialNo uuid.UUID) (*model.UserCouponView, error)
	GetUserCouponByID(ctx context.Context, id int64) (*model.UserCouponView, error)
	MarkUserCouponUsed(ctx context.Context, tx database.TxQuerier, id int64, used bool) error
	ListUserCoupons(ctx context.Context, userID int64, unusedOnly bool) ([]model.UserCouponView, error)
}

// EventRepositoryInterface defines the interface for event data access.
type EventRepositoryInterface interface {
	Insert(ctx context.Context, tx database.TxQuerier, e *model.Event) error
	GetByID(ctx context.Context, id int64) (*model.Event, error)
	GetForUpdate(ctx context.Context, tx database.TxQuerier, id int64) (*model.Event, error)
	List(ctx context.Context, f model.EventFilter, now time.Time) ([]model.Event, error)
	ListBySeller(ctx context.Context, sellerID int64) ([]model.Event, error)
	HasOverlap(ctx context.Context, sellerID int64, start, end time.Time) (bool, error)
	SetCancelled(ctx context.Context, tx database.TxQuerier, id int64) error
	SetDrawn(ctx context.Context, tx database.TxQuerier, id int64) error
	SetPrizeStock(ctx context.Context, tx database.TxQuerier, prizeID, stock int64) error
}

// ParticipantRepositoryInterface defines the interface for event entry data access.
type ParticipantRepositoryInterface interface {
	Insert(ctx context.Context, tx database.TxQuerier, p *model.EventParticipant) error
	GetByUserAndEvent(ctx context.Context, q database.TxQuerier, userID, eventID int64) (*model.EventParticipant, error)
	ListByEvent(ctx context.Context, q database.TxQuerier, eventID int64) ([]model.EventParticipant, error)
	AssignPrize(ctx context.Context, tx database.TxQuerier, participantID, prizeID int64) error
}

// CartRepositoryInterface defines the interface for cart data access.
type CartRepositoryInterface interface {
	Upsert(ctx context.Context, item *model.CartItem) error
	GetByID(ctx context.Context, id int64) (*model.CartItem, error)
	UpdateCnt(ctx context.Context, id int64, cnt int) error
	Delete(ctx context.Context, id int64) error
	ListByUser(ctx context.Context, userID int64) ([]model.CartLine, error)
	GetByIDsForUser(ctx context.Context, tx database.TxQuerier, userID int64, ids []int64) ([]model.CartLine, error)
	DeleteByIDs(ctx context.Context, tx database.TxQuerier, ids []int64) error
}

// OrderRepositoryInterface defines the interface for order data access.
type OrderRepositoryInterface interface {
	Insert(ctx context.Context, tx database.TxQuerier, o *model.Order) error
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	GetForUpdate(ctx context.Context, tx database.TxQuerier, id int64) (*model.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Order, error)
	SetState(ctx context.Context, tx database.TxQuerier, id int64, state model.OrderState) error
}
