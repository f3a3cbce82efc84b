package service

import (
	"context"
	"fmt"
	"time"

	"github.com/feelmycode/parabole/internal/model"
)

// CartService manages shopping carts.
type CartService struct {
	carts    CartRepositoryInterface
	products ProductRepositoryInterface
	coupons  CouponRepositoryInterface
	now      func() time.Time
}

// NewCartService creates a new CartService.
func NewCartService(carts CartRepositoryInterface, products ProductRepositoryInterface, coupons CouponRepositoryInterface) *CartService {
	return &CartService{carts: carts, products: products, coupons: coupons, now: time.Now}
}

// AddItem puts a live product in the user's cart. Adding a product that is
// already there increases its count.
func (s *CartService) AddItem(ctx context.Context, userID int64, req *model.CartAddItemRequest) (*model.CartItem, error) {
	if req == nil || req.Cnt < 1 {
		return nil, ErrInvalidRequest
	}
	if _, err := s.products.GetByID(ctx, req.ProductID); err != nil {
		return nil, err
	}

	item := &model.CartItem{UserID: userID, ProductID: req.ProductID, Cnt: req.Cnt}
	if err := s.carts.Upsert(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// ownedItem loads a cart item and hides items of other users as not found.
func (s *CartService) ownedItem(ctx context.Context, userID, cartItemID int64) (*model.CartItem, error) {
	item, err := s.carts.GetByID(ctx, cartItemID)
	if err != nil {
		return nil, err
	}
	if item.UserID != userID {
		return nil, ErrCartItemNotFound
	}
	return item, nil
}

// UpdateCnt replaces the count of one of the user's cart items.
func (s *CartService) UpdateCnt(ctx context.Context, userID int64, req *model.CartItemUpdateRequest) error {
	if req == nil || req.Cnt < 1 {
		return ErrInvalidRequest
	}
	if _, err := s.ownedItem(ctx, userID, req.CartItemID); err != nil {
		return err
	}
	return s.carts.UpdateCnt(ctx, req.CartItemID, req.Cnt)
}

// Delete removes one of the user's cart items.
func (s *CartService) Delete(ctx context.Context, userID, cartItemID int64) error {
	if _, err := s.ownedItem(ctx, userID, cartItemID); err != nil {
		return err
	}
	return s.carts.Delete(ctx, cartItemID)
}

// List returns the user's cart grouped by seller. Groups follow the order
// of their newest item; each carries the user's usable coupons of that seller.
func (s *CartService) List(ctx context.Context, userID int64) ([]model.CartGroupResponse, error) {
	lines, err := s.carts.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	held, err := s.coupons.ListUserCoupons(ctx, userID, true)
	if err != nil {
		return nil, fmt.Errorf("list user coupons: %w", err)
	}

	now := s.now()
	couponsBySeller := make(map[int64][]model.UserCouponView)
	for _, c := range held {
		if c.ExpiresAt.After(now) {
			couponsBySeller[c.SellerID] = append(couponsBySeller[c.SellerID], c)
		}
	}

	groups := []model.CartGroupResponse{}
	index := make(map[int64]int)
	for _, line := range lines {
		i, ok := index[line.SellerID]
		if !ok {
			coupons := couponsBySeller[line.SellerID]
			if coupons == nil {
				coupons = []model.UserCouponView{}
			}
			groups = append(groups, model.CartGroupResponse{
				SellerID:  line.SellerID,
				StoreName: line.StoreName,
				Items:     []model.CartLine{},
				Coupons:   coupons,
			})
			i = len(groups) - 1
			index[line.SellerID] = i
		}
		groups[i].Items = append(groups[i].Items, line)
	}
	return groups, nil
}
