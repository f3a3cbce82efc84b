package handler

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/feelmycode/parabole/internal/model"
)

// ProductServiceInterface defines the catalog operations used by ProductHandler.
type ProductServiceInterface interface {
	Create(ctx context.Context, userID int64, req *model.ProductRequest) (*model.Product, error)
	Get(ctx context.Context, id int64) (*model.ProductDetail, error)
	Update(ctx context.Context, userID, id int64, req *model.ProductUpdateRequest) (*model.Product, error)
	Delete(ctx context.Context, userID, id int64) error
	AdjustRemains(ctx context.Context, userID, id, delta int64) (*model.Product, error)
	List(ctx context.Context, f model.ProductFilter) (*model.ProductPage, error)
	NamesByStore(ctx context.Context, storeName string) ([]string, error)
}

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	service   ProductServiceInterface
	validator *validator.Validate
}

// NewProductHandler creates a new ProductHandler with the given service and validator.
func NewProductHandler(svc ProductServiceInterface, v *validator.Validate) *ProductHandler {
	return &ProductHandler{service: svc, validator: v}
}

type productListQuery struct {
	SellerID    int64  `query:"sellerId"`
	StoreName   string `query:"storeName"`
	ProductName string `query:"productName"`
	Category    string `query:"category"`
	Page        int    `query:"page"`
	Size        int    `query:"size"`
}

// Create handles POST /api/v1/product.
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var req model.ProductRequest
	if err := decode(c, h.validator, &req); err != nil {
		return respondError(c, err)
	}

	product, err := h.service.Create(c.Context(), currentUser(c), &req)
	if err != nil {
		return respondError(c, err)
	}

	log.Info().
		Int64("product_id", product.ID).
		Int64("seller_id", product.SellerID).
		Int64("remains", product.Remains).
		Msg("product created")

	return respond(c, fiber.StatusCreated, "product created", product)
}

// Get handles GET /api/v1/product/:id.
func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	product, err := h.service.Get(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "product found", product)
}

// List handles GET /api/v1/product/list.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	var q productListQuery
	if err := c.QueryParser(&q); err != nil {
		return respond(c, fiber.StatusBadRequest, "invalid request: malformed query", nil)
	}

	page, err := h.service.List(c.Context(), model.ProductFilter{
		SellerID:    q.SellerID,
		StoreName:   strings.TrimSpace(q.StoreName),
		ProductName: strings.TrimSpace(q.ProductName),
		Category:    strings.TrimSpace(q.Category),
		Page:        q.Page,
		Size:        q.Size,
	})
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "products found", page)
}

// NamesByStore handles GET /api/v1/product/store?storeName=.
func (h *ProductHandler) NamesByStore(c *fiber.Ctx) error {
	storeName := strings.TrimSpace(c.Query("storeName"))
	if storeName == "" {
		return respond(c, fiber.StatusBadRequest, "invalid request: storeName is required", nil)
	}

	names, err := h.service.NamesByStore(c.Context(), storeName)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "products found", names)
}

// Update handles PUT /api/v1/product/:id.
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req model.ProductUpdateRequest
	if err := decode(c, h.validator, &req); err != nil {
		return respondError(c, err)
	}

	product, err := h.service.Update(c.Context(), currentUser(c), id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "product updated", product)
}

// Delete handles DELETE /api/v1/product/:id.
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	if err := h.service.Delete(c.Context(), currentUser(c), id); err != nil {
		return respondError(c, err)
	}

	log.Info().Int64("product_id", id).Msg("product deleted")
	return respond(c, fiber.StatusOK, "product deleted", nil)
}

// AdjustRemains handles PATCH /api/v1/product/:id/remains.
func (h *ProductHandler) AdjustRemains(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req model.ProductRemainsRequest
	if err := decode(c, h.validator, &req); err != nil {
		return respondError(c, err)
	}

	product, err := h.service.AdjustRemains(c.Context(), currentUser(c), id, *req.Stock)
	if err != nil {
		return respondError(c, err)
	}

	log.Info().
		Int64("product_id", id).
		Int64("delta", *req.Stock).
		Int64("remains", product.Remains).
		Msg("product stock adjusted")

	return respond(c, fiber.StatusOK, "product stock adjusted", product)
}
