package handler

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/feelmycode/parabole/internal/model"
)

// OrderServiceInterface defines the checkout operations used by OrderHandler.
type OrderServiceInterface interface {
	Place(ctx context.Context, userID int64, req *model.OrderRequest) (*model.OrderDetailResponse, error)
	List(ctx context.Context, userID int64) ([]model.OrderDetailResponse, error)
	Get(ctx context.Context, userID, orderID int64) (*model.OrderDetailResponse, error)
	Cancel(ctx context.Context, userID, orderID int64) error
}

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service   OrderServiceInterface
	validator *validator.Validate
}

// NewOrderHandler creates a new OrderHandler with the given service and validator.
func NewOrderHandler(svc OrderServiceInterface, v *validator.Validate) *OrderHandler {
	return &OrderHandler{service: svc, validator: v}
}

// Place handles POST /api/v1/order.
func (h *OrderHandler) Place(c *fiber.Ctx) error {
	var req model.OrderRequest
	if err := decode(c, h.validator, &req); err != nil {
		return respondError(c, err)
	}

	order, err := h.service.Place(c.Context(), currentUser(c), &req)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusCreated, "order placed", order)
}

// List handles GET /api/v1/order.
func (h *OrderHandler) List(c *fiber.Ctx) error {
	orders, err := h.service.List(c.Context(), currentUser(c))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "orders found", orders)
}

// Get handles GET /api/v1/order/:id.
func (h *OrderHandler) Get(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	order, err := h.service.Get(c.Context(), currentUser(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "order found", order)
}

// Cancel handles DELETE /api/v1/order/:id.
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	userID := currentUser(c)
	if err := h.service.Cancel(c.Context(), userID, id); err != nil {
		return respondError(c, err)
	}

	log.Info().Int64("order_id", id).Int64("user_id", userID).Msg("order cancelled")
	return respond(c, fiber.StatusOK, "order cancelled", nil)
}
