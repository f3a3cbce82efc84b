package handler

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/feelmycode/parabole/internal/model"
	"github.com/feelmycode/parabole/internal/service"
)

// SellerServiceInterface defines the store operations used by SellerHandler.
type SellerServiceInterface interface {
	Register(ctx context.Context, req *model.SellerRegisterRequest) (*model.Seller, error)
	GetByUserID(ctx context.Context, userID int64) (*model.Seller, error)
}

// SellerHandler handles store registration.
type SellerHandler struct {
	service   SellerServiceInterface
	validator *validator.Validate
}

// NewSellerHandler creates a new SellerHandler with the given service and validator.
func NewSellerHandler(svc SellerServiceInterface, v *validator.Validate) *SellerHandler {
	return &SellerHandler{service: svc, validator: v}
}

// Register handles POST /api/v1/seller, the step after a seller signs up
// and signs in. userId must be the signed-in user.
func (h *SellerHandler) Register(c *fiber.Ctx) error {
	var req model.SellerRegisterRequest
	if err := decode(c, h.validator, &req); err != nil {
		return respondError(c, err)
	}
	if req.UserID != currentUser(c) {
		return respondError(c, service.ErrForeignAccount)
	}

	seller, err := h.service.Register(c.Context(), &req)
	if err != nil {
		return respondError(c, err)
	}

	log.Info().
		Int64("seller_id", seller.ID).
		Int64("user_id", seller.UserID).
		Str("store_name", seller.StoreName).
		Msg("seller registered")

	return respond(c, fiber.StatusCreated, "seller registered", seller)
}

// Get handles GET /api/v1/seller for the signed-in seller.
func (h *SellerHandler) Get(c *fiber.Ctx) error {
	seller, err := h.service.GetByUserID(c.Context(), currentUser(c))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "seller found", seller)
}
