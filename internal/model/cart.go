package model

import "time"

// CartItem is a product a user intends to buy.
type CartItem struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	ProductID int64     `json:"productId"`
	Cnt       int       `json:"cnt"`
	CreatedAt time.Time `json:"createdAt"`
}

// CartLine is a cart item joined with its product and seller.
type CartLine struct {
	CartItemID   int64  `json:"cartItemId"`
	ProductID    int64  `json:"productId"`
	ProductName  string `json:"productName"`
	Price        int64  `json:"price"`
	Remains      int64  `json:"remains"`
	ThumbnailImg string `json:"thumbnailImg"`
	Cnt          int    `json:"cnt"`
	SellerID     int64  `json:"sellerId"`
	StoreName    string `json:"storeName"`
}

// CartGroupResponse is the cart content of one seller plus the user's
// unused coupons for that seller.
type CartGroupResponse struct {
	SellerID  int64            `json:"sellerId"`
	StoreName string           `json:"storeName"`
	Items     []CartLine       `json:"items"`
	Coupons   []UserCouponView `json:"coupons"`
}

// CartAddItemRequest is the DTO for POST /api/v1/cart/product/add.
type CartAddItemRequest struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Cnt       int   `json:"cnt" validate:"required,gt=0,lte=999"`
}

// CartItemUpdateRequest is the DTO for PATCH /api/v1/cart/update/cnt.
type CartItemUpdateRequest struct {
	CartItemID int64 `json:"cartItemId" validate:"required,gt=0"`
	Cnt        int   `json:"cnt" validate:"required,gt=0,lte=999"`
}
