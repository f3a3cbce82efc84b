package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/feelmycode/parabole/internal/model"
)

// SellerService manages store profiles.
type SellerService struct {
	users   UserRepositoryInterface
	sellers SellerRepositoryInterface
}

// NewSellerService creates a new SellerService.
func NewSellerService(users UserRepositoryInterface, sellers SellerRepositoryInterface) *SellerService {
	return &SellerService{users: users, sellers: sellers}
}

// Register attaches a store profile to a user holding the seller role.
// Returns ErrNotSeller for plain users, ErrSellerExists when the user
// already has a store and ErrStoreNameExists when the name is taken.
func (s *SellerService) Register(ctx context.Context, req *model.SellerRegisterRequest) (*model.Seller, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}

	user, err := s.users.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user.Role != model.RoleSeller {
		return nil, ErrNotSeller
	}

	seller := &model.Seller{
		UserID:     user.ID,
		StoreName:  strings.TrimSpace(req.StoreName),
		BusinessNo: req.BusinessNo,
	}
	if err := s.sellers.Insert(ctx, seller); err != nil {
		return nil, err
	}
	return seller, nil
}

// GetByUserID returns the store profile of a user.
func (s *SellerService) GetByUserID(ctx context.Context, userID int64) (*model.Seller, error) {
	return s.sellers.GetByUserID(ctx, userID)
}

// GetByStoreName returns the store with exactly this name.
func (s *SellerService) GetByStoreName(ctx context.Context, storeName string) (*model.Seller, error) {
	return s.sellers.GetByStoreName(ctx, storeName)
}

// sellerOf resolves the store profile acting for userID.
// Returns ErrNotSeller when the user has none.
func sellerOf(ctx context.Context, sellers SellerRepositoryInterface, userID int64) (*model.Seller, error) {
	seller, err := sellers.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrSellerNotFound) {
			return nil, ErrNotSeller
		}
		return nil, fmt.Errorf("get seller: %w", err)
	}
	return seller, nil
}
