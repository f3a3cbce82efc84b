package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/feelmycode/parabole/internal/model"
)

var hundred = decimal.NewFromInt(100)

// CouponService manages seller coupon templates and the copies users hold.
type CouponService struct {
	coupons CouponRepositoryInterface
	sellers SellerRepositoryInterface
	now     func() time.Time
}

// NewCouponService creates a new CouponService.
func NewCouponService(coupons CouponRepositoryInterface, sellers SellerRepositoryInterface) *CouponService {
	return &CouponService{coupons: coupons, sellers: sellers, now: time.Now}
}

// Create issues a coupon template for the caller's store.
// Rate coupons take a percentage in (0, 100]; amount coupons a positive value.
func (s *CouponService) Create(ctx context.Context, userID int64, req *model.CouponRequest) (*model.Coupon, error) {
	if req == nil || req.Remains == nil {
		return nil, ErrInvalidRequest
	}
	if !req.DiscountValue.IsPositive() {
		return nil, ErrInvalidDiscount
	}
	if req.Type == model.CouponTypeRate && req.DiscountValue.GreaterThan(hundred) {
		return nil, ErrInvalidDiscount
	}
	expiresAt, err := time.Parse(model.DateTimeLayout, req.ExpiresAt)
	if err != nil {
		return nil, ErrInvalidRequest
	}
	if !expiresAt.After(s.now()) {
		return nil, ErrCouponExpired
	}

	seller, err := sellerOf(ctx, s.sellers, userID)
	if err != nil {
		return nil, err
	}

	coupon := &model.Coupon{
		SellerID:      seller.ID,
		Name:          strings.TrimSpace(req.Name),
		Type:          req.Type,
		DiscountValue: req.DiscountValue,
		Remains:       *req.Remains,
		ExpiresAt:     expiresAt,
	}
	if err := s.coupons.Insert(ctx, coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

// Get returns a coupon template.
func (s *CouponService) Get(ctx context.Context, id int64) (*model.Coupon, error) {
	return s.coupons.GetByID(ctx, id)
}

// ListMine returns every coupon the user holds, used or not.
func (s *CouponService) ListMine(ctx context.Context, userID int64) ([]model.UserCouponView, error) {
	return s.coupons.ListUserCoupons(ctx, userID, false)
}

// ListBySeller returns the templates issued by the caller's store.
func (s *CouponService) ListBySeller(ctx context.Context, userID int64) ([]model.Coupon, error) {
	seller, err := sellerOf(ctx, s.sellers, userID)
	if err != nil {
		return nil, err
	}
	coupons, err := s.coupons.ListBySeller(ctx, seller.ID)
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}
	return coupons, nil
}
