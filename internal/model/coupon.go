package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CouponType selects how DiscountValue is applied.
type CouponType string

const (
	// CouponTypeRate discounts a percentage of the subtotal.
	CouponTypeRate CouponType = "RATE"
	// CouponTypeAmount discounts a fixed amount.
	CouponTypeAmount CouponType = "AMOUNT"
)

// Coupon is a seller-issued discount template. Remains counts the copies
// that can still be handed out.
type Coupon struct {
	ID            int64           `json:"id"`
	SellerID      int64           `json:"sellerId"`
	Name          string          `json:"name"`
	Type          CouponType      `json:"type"`
	DiscountValue decimal.Decimal `json:"discountValue"`
	Remains       int64           `json:"remains"`
	ExpiresAt     time.Time       `json:"expiresAt"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// Discount returns the amount taken off subtotal, never more than subtotal.
// Rate coupons round down to a whole currency unit.
func (c *Coupon) Discount(subtotal int64) int64 {
	if subtotal <= 0 {
		return 0
	}
	sub := decimal.NewFromInt(subtotal)
	var off decimal.Decimal
	switch c.Type {
	case CouponTypeRate:
		off = sub.Mul(c.DiscountValue).Div(decimal.NewFromInt(100)).Floor()
	case CouponTypeAmount:
		off = c.DiscountValue.Floor()
	default:
		return 0
	}
	if off.GreaterThan(sub) {
		return subtotal
	}
	if off.IsNegative() {
		return 0
	}
	return off.IntPart()
}

// UserCoupon is one copy of a coupon held by a user.
type UserCoupon struct {
	ID         int64      `json:"id"`
	SerialNo   uuid.UUID  `json:"serialNo"`
	CouponID   int64      `json:"couponId"`
	UserID     int64      `json:"userId"`
	Used       bool       `json:"used"`
	AcquiredAt time.Time  `json:"acquiredAt"`
	UsedAt     *time.Time `json:"usedAt,omitempty"`
}

// UserCouponView joins a held coupon with its template.
type UserCouponView struct {
	UserCoupon
	SellerID      int64           `json:"sellerId"`
	Name          string          `json:"name"`
	Type          CouponType      `json:"type"`
	DiscountValue decimal.Decimal `json:"discountValue"`
	ExpiresAt     time.Time       `json:"expiresAt"`
}

// CouponRequest is the DTO for POST /api/v1/coupon.
type CouponRequest struct {
	Name          string          `json:"name" validate:"required,notblank,max=255"`
	Type          CouponType      `json:"type" validate:"required,oneof=RATE AMOUNT"`
	DiscountValue decimal.Decimal `json:"discountValue"`
	Remains       *int64          `json:"remains" validate:"required,gte=1"`
	ExpiresAt     string          `json:"expiresAt" validate:"required,datetime=2006-01-02 15:04:05"`
}
