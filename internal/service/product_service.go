package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/feelmycode/parabole/internal/model"
	"github.com/feelmycode/parabole/pkg/database"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	storeNameCount  = 3
)

// ProductService provides business logic for the product catalog.
type ProductService struct {
	pool     TxBeginner
	products ProductRepositoryInterface
	sellers  SellerRepositoryInterface
}

// NewProductService creates a new ProductService with the given pool and repositories.
func NewProductService(pool *pgxpool.Pool, products ProductRepositoryInterface, sellers SellerRepositoryInterface) *ProductService {
	return &ProductService{pool: pool, products: products, sellers: sellers}
}

// NewProductServiceWithTxBeginner creates a ProductService with a custom TxBeginner.
// Primarily used for testing.
func NewProductServiceWithTxBeginner(pool TxBeginner, products ProductRepositoryInterface, sellers SellerRepositoryInterface) *ProductService {
	return &ProductService{pool: pool, products: products, sellers: sellers}
}

// Create adds a product to the catalog of the caller's store.
// Returns ErrNotSeller if the caller has no store.
func (s *ProductService) Create(ctx context.Context, userID int64, req *model.ProductRequest) (*model.Product, error) {
	if req == nil || req.Price == nil || req.Remains == nil {
		return nil, ErrInvalidRequest
	}

	seller, err := sellerOf(ctx, s.sellers, userID)
	if err != nil {
		return nil, err
	}

	product := &model.Product{SellerID: seller.ID}
	applyProductRequest(product, req)
	if err := s.products.Insert(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func applyProductRequest(p *model.Product, req *model.ProductRequest) {
	p.Name = strings.TrimSpace(req.Name)
	p.Category = req.Category
	p.Price = *req.Price
	p.Remains = *req.Remains
	p.ThumbnailImg = req.ThumbnailImg
	p.Description = req.Description
}

// Get returns a live product together with its store name.
func (s *ProductService) Get(ctx context.Context, id int64) (*model.ProductDetail, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	seller, err := s.sellers.GetByID(ctx, product.SellerID)
	if err != nil {
		return nil, fmt.Errorf("get seller of product %d: %w", id, err)
	}
	return &model.ProductDetail{Product: *product, StoreName: seller.StoreName}, nil
}

// owned loads a product and checks it belongs to the caller's store.
func (s *ProductService) owned(ctx context.Context, userID, productID int64) (*model.Product, error) {
	seller, err := sellerOf(ctx, s.sellers, userID)
	if err != nil {
		return nil, err
	}
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.SellerID != seller.ID {
		return nil, ErrNotProductOwner
	}
	return product, nil
}

// Update replaces a product's attributes except its stock. Only the owning
// seller may do so.
func (s *ProductService) Update(ctx context.Context, userID, id int64, req *model.ProductUpdateRequest) (*model.Product, error) {
	if req == nil || req.Price == nil {
		return nil, ErrInvalidRequest
	}
	product, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	product.Name = strings.TrimSpace(req.Name)
	product.Category = req.Category
	product.Price = *req.Price
	product.ThumbnailImg = req.ThumbnailImg
	product.Description = req.Description
	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// Delete hides a product from the catalog. Only the owning seller may do so.
func (s *ProductService) Delete(ctx context.Context, userID, id int64) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	return s.products.SoftDelete(ctx, id)
}

// AdjustRemains adds delta (which may be negative) to a product's stock
// under a row lock. Returns ErrInsufficientStock when the result would be
// negative. userID must own the product.
func (s *ProductService) AdjustRemains(ctx context.Context, userID, id, delta int64) (*model.Product, error) {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return nil, err
	}

	var product *model.Product
	err := database.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		p, err := s.products.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		remains := p.Remains + delta
		if remains < 0 {
			return ErrInsufficientStock
		}
		if err := s.products.SetRemains(ctx, tx, id, remains); err != nil {
			return err
		}
		p.Remains = remains
		product = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// List returns one page of the catalog. A store name filter resolves to
// the matching seller; an unknown store yields an empty page.
func (s *ProductService) List(ctx context.Context, f model.ProductFilter) (*model.ProductPage, error) {
	if f.Page < 0 {
		f.Page = 0
	}
	if f.Size <= 0 {
		f.Size = defaultPageSize
	}
	if f.Size > maxPageSize {
		f.Size = maxPageSize
	}

	page := &model.ProductPage{Items: []model.Product{}, Page: f.Page, Size: f.Size}
	if f.StoreName != "" {
		seller, err := s.sellers.GetByStoreName(ctx, f.StoreName)
		if err != nil {
			if errors.Is(err, ErrSellerNotFound) {
				return page, nil
			}
			return nil, fmt.Errorf("resolve store: %w", err)
		}
		if f.SellerID != 0 && f.SellerID != seller.ID {
			return page, nil
		}
		f.SellerID = seller.ID
	}

	items, total, err := s.products.List(ctx, f)
	if err != nil {
		return nil, err
	}
	page.Items = items
	page.Total = total
	return page, nil
}

// NamesByStore returns up to three product names of the first store whose
// name matches storeName loosely.
func (s *ProductService) NamesByStore(ctx context.Context, storeName string) ([]string, error) {
	storeName = strings.TrimSpace(storeName)
	if storeName == "" {
		return nil, ErrInvalidRequest
	}
	seller, err := s.sellers.FindByStoreNameLike(ctx, storeName)
	if err != nil {
		return nil, err
	}
	return s.products.NamesBySeller(ctx, seller.ID, storeNameCount)
}
