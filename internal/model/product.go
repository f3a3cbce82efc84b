package model

import "time"

// Product is a catalog entry owned by a seller. Remains is the stock counter.
type Product struct {
	ID           int64     `json:"id"`
	SellerID     int64     `json:"sellerId"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	Price        int64     `json:"price"`
	Remains      int64     `json:"remains"`
	ThumbnailImg string    `json:"thumbnailImg"`
	Description  string    `json:"description"`
	IsDeleted    bool      `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ProductDetail is a product together with the name of the store selling it.
type ProductDetail struct {
	Product
	StoreName string `json:"storeName"`
}

// ProductRequest is the DTO for creating or replacing a product.
type ProductRequest struct {
	Name         string `json:"name" validate:"required,notblank,max=255"`
	Category     string `json:"category" validate:"max=50"`
	Price        *int64 `json:"price" validate:"required,gte=0"`
	Remains      *int64 `json:"remains" validate:"required,gte=0"`
	ThumbnailImg string `json:"thumbnailImg" validate:"max=2048"`
	Description  string `json:"description" validate:"max=10000"`
}

// ProductUpdateRequest is the DTO for PUT /api/v1/product/:id. Stock is
// changed only through ProductRemainsRequest.
type ProductUpdateRequest struct {
	Name         string `json:"name" validate:"required,notblank,max=255"`
	Category     string `json:"category" validate:"max=50"`
	Price        *int64 `json:"price" validate:"required,gte=0"`
	ThumbnailImg string `json:"thumbnailImg" validate:"max=2048"`
	Description  string `json:"description" validate:"max=10000"`
}

// ProductRemainsRequest adds (positive) or removes (negative) stock.
type ProductRemainsRequest struct {
	Stock *int64 `json:"stock" validate:"required,ne=0"`
}

// ProductFilter narrows product listings. Zero values mean "any".
type ProductFilter struct {
	SellerID    int64
	StoreName   string
	ProductName string
	Category    string
	Page        int
	Size        int
}

// ProductPage is one page of a product listing.
type ProductPage struct {
	Items []Product `json:"items"`
	Page  int       `json:"page"`
	Size  int       `json:"size"`
	Total int64     `json:"total"`
}
