package model

import "time"

// Role distinguishes buyers from store owners.
type Role int

const (
	RoleUser   Role = 1
	RoleSeller Role = 2
)

// String returns the role name used in API responses.
func (r Role) String() string {
	switch r {
	case RoleUser:
		return "USER"
	case RoleSeller:
		return "SELLER"
	default:
		return "UNKNOWN"
	}
}

// User is a registered account.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Seller is the store profile attached to a user with the seller role.
type Seller struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"userId"`
	StoreName  string    `json:"storeName"`
	BusinessNo string    `json:"businessNo"`
	CreatedAt  time.Time `json:"createdAt"`
}

// SignupRequest is the DTO for POST /api/v1/user.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=4,max=72"`
	Name     string `json:"name" validate:"required,notblank,max=100"`
	Phone    string `json:"phone" validate:"max=30"`
	Role     Role   `json:"role" validate:"required,oneof=1 2"`
}

// SigninRequest is the DTO for signing in.
type SigninRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=72"`
}

// SigninResponse carries the issued access token.
type SigninResponse struct {
	Token  string `json:"token"`
	UserID int64  `json:"userId"`
	Role   string `json:"role"`
}

// SellerRegisterRequest is the DTO for POST /api/v1/seller.
type SellerRegisterRequest struct {
	UserID     int64  `json:"userId" validate:"required,gt=0"`
	StoreName  string `json:"storeName" validate:"required,notblank,max=100"`
	BusinessNo string `json:"businessNo" validate:"max=30"`
}
