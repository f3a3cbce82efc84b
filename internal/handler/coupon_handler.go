package handler

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/feelmycode/parabole/internal/model"
)

// CouponServiceInterface defines the coupon operations used by CouponHandler.
type CouponServiceInterface interface {
	Create(ctx context.Context, userID int64, req *model.CouponRequest) (*model.Coupon, error)
	Get(ctx context.Context, id int64) (*model.Coupon, error)
	ListMine(ctx context.Context, userID int64) ([]model.UserCouponView, error)
	ListBySeller(ctx context.Context, userID int64) ([]model.Coupon, error)
}

// CouponHandler handles HTTP requests for coupon operations.
type CouponHandler struct {
	service   CouponServiceInterface
	validator *validator.Validate
}

// NewCouponHandler creates a new CouponHandler with the given service and validator.
func NewCouponHandler(svc CouponServiceInterface, v *validator.Validate) *CouponHandler {
	return &CouponHandler{service: svc, validator: v}
}

// Create handles POST /api/v1/coupon.
func (h *CouponHandler) Create(c *fiber.Ctx) error {
	var req model.CouponRequest
	if err := decode(c, h.validator, &req); err != nil {
		return respondError(c, err)
	}

	coupon, err := h.service.Create(c.Context(), currentUser(c), &req)
	if err != nil {
		return respondError(c, err)
	}

	log.Info().
		Int64("coupon_id", coupon.ID).
		Int64("seller_id", coupon.SellerID).
		Str("type", string(coupon.Type)).
		Int64("remains", coupon.Remains).
		Msg("coupon created")

	return respond(c, fiber.StatusCreated, "coupon created", coupon)
}

// Get handles GET /api/v1/coupon/:id.
func (h *CouponHandler) Get(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	coupon, err := h.service.Get(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "coupon found", coupon)
}

// ListMine handles GET /api/v1/coupon/user.
func (h *CouponHandler) ListMine(c *fiber.Ctx) error {
	coupons, err := h.service.ListMine(c.Context(), currentUser(c))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "coupons found", coupons)
}

// ListBySeller handles GET /api/v1/coupon/seller.
func (h *CouponHandler) ListBySeller(c *fiber.Ctx) error {
	coupons, err := h.service.ListBySeller(c.Context(), currentUser(c))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "coupons found", coupons)
}
