package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/feelmycode/parabole/internal/auth"
	"github.com/feelmycode/parabole/internal/model"
)

// TokenIssuerInterface issues access tokens for signed-in users.
type TokenIssuerInterface interface {
	Issue(userID int64) (string, error)
}

// UserService provides account registration and sign-in.
type UserService struct {
	users  UserRepositoryInterface
	tokens TokenIssuerInterface
}

// NewUserService creates a new UserService.
func NewUserService(users UserRepositoryInterface, tokens TokenIssuerInterface) *UserService {
	return &UserService{users: users, tokens: tokens}
}

// Signup registers an account with a bcrypt-hashed password.
// Returns ErrEmailExists if the email is already registered.
func (s *UserService) Signup(ctx context.Context, req *model.SignupRequest) (*model.User, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}
	if req.Role != model.RoleUser && req.Role != model.RoleSeller {
		return nil, ErrInvalidRequest
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
		Phone:        req.Phone,
		Role:         req.Role,
	}
	if err := s.users.Insert(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Signin checks credentials and issues an access token.
// Unknown emails and wrong passwords both return ErrInvalidCredentials.
func (s *UserService) Signin(ctx context.Context, req *model.SigninRequest) (*model.SigninResponse, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}

	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := auth.ComparePassword(user.PasswordHash, req.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &model.SigninResponse{Token: token, UserID: user.ID, Role: user.Role.String()}, nil
}

// CheckRole returns the role of the account registered with email.
func (s *UserService) CheckRole(ctx context.Context, email string) (model.Role, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return 0, err
	}
	return user.Role, nil
}

// GetByID retrieves an account.
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}
