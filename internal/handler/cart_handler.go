package handler

import (
	"context"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/feelmycode/parabole/internal/model"
)

// CartServiceInterface defines the cart operations used by CartHandler.
type CartServiceInterface interface {
	AddItem(ctx context.Context, userID int64, req *model.CartAddItemRequest) (*model.CartItem, error)
	UpdateCnt(ctx context.Context, userID int64, req *model.CartItemUpdateRequest) error
	Delete(ctx context.Context, userID, cartItemID int64) error
	List(ctx context.Context, userID int64) ([]model.CartGroupResponse, error)
}

// CartHandler handles HTTP requests for the signed-in user's cart.
type CartHandler struct {
	service   CartServiceInterface
	validator *validator.Validate
}

// NewCartHandler creates a new CartHandler with the given service and validator.
func NewCartHandler(svc CartServiceInterface, v *validator.Validate) *CartHandler {
	return &CartHandler{service: svc, validator: v}
}

// AddItem handles POST /api/v1/cart/product/add.
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	var req model.CartAddItemRequest
	if err := decode(c, h.validator, &req); err != nil {
		return respondError(c, err)
	}

	item, err := h.service.AddItem(c.Context(), currentUser(c), &req)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusCreated, "product added to cart", item)
}

// Delete handles DELETE /api/v1/cart/delete?cartItemId=.
func (h *CartHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Query("cartItemId"), 10, 64)
	if err != nil || id <= 0 {
		return respond(c, fiber.StatusBadRequest, "invalid request: cartItemId must be a positive integer", nil)
	}

	if err := h.service.Delete(c.Context(), currentUser(c), id); err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "cart item deleted", nil)
}

// UpdateCnt handles PATCH /api/v1/cart/update/cnt.
func (h *CartHandler) UpdateCnt(c *fiber.Ctx) error {
	var req model.CartItemUpdateRequest
	if err := decode(c, h.validator, &req); err != nil {
		return respondError(c, err)
	}

	if err := h.service.UpdateCnt(c.Context(), currentUser(c), &req); err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "cart item updated", nil)
}

// List handles GET /api/v1/cart/list.
func (h *CartHandler) List(c *fiber.Ctx) error {
	groups, err := h.service.List(c.Context(), currentUser(c))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "cart found", groups)
}
