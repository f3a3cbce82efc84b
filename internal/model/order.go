package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderState tracks payment and cancellation.
type OrderState string

const (
	// OrderStateOrdered waits for a bank transfer.
	OrderStateOrdered   OrderState = "ORDERED"
	OrderStatePaid      OrderState = "PAID"
	OrderStateCancelled OrderState = "CANCELLED"
)

// PayState is the payment method chosen at checkout.
type PayState string

const (
	PayCard           PayState = "CARD"
	PayBankTransfer   PayState = "BANK_TRANSFER"
	PayPhone          PayState = "PHONE"
	PayVirtualAccount PayState = "VIRTUAL_ACCOUNT"
	PayKakaoPay       PayState = "KAKAO_PAY"
	PayToss           PayState = "TOSS"
	PayWithoutBank    PayState = "WITHOUT_BANK"
	PayNaverPay       PayState = "NAVER_PAY"
)

// Order is a placed checkout. Infos snapshot the purchased lines.
type Order struct {
	ID              int64       `json:"id"`
	OrderNo         uuid.UUID   `json:"orderNo"`
	UserID          int64       `json:"userId"`
	State           OrderState  `json:"state"`
	PayState        PayState    `json:"payState"`
	ReceiverName    string      `json:"receiverName"`
	ReceiverPhone   string      `json:"receiverPhone"`
	AddressSimple   string      `json:"addressSimple"`
	AddressDetail   string      `json:"addressDetail"`
	DeliveryComment string      `json:"deliveryComment"`
	TotalPrice      int64       `json:"totalPrice"`
	DiscountPrice   int64       `json:"discountPrice"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
	Infos           []OrderInfo `json:"infos"`
}

// OrderInfo is one purchased product line.
type OrderInfo struct {
	ID                  int64  `json:"id"`
	OrderID             int64  `json:"orderId"`
	ProductID           int64  `json:"productId"`
	SellerID            int64  `json:"sellerId"`
	ProductName         string `json:"productName"`
	ProductCnt          int    `json:"productCnt"`
	ProductPrice        int64  `json:"productPrice"`
	ProductThumbnailImg string `json:"productThumbnailImg"`
	UserCouponID        *int64 `json:"userCouponId,omitempty"`
	DiscountPrice       int64  `json:"discountPrice"`
}

// OrderGroupResponse is the part of an order sold by one seller.
type OrderGroupResponse struct {
	SellerID  int64           `json:"sellerId"`
	StoreName string          `json:"storeName"`
	Infos     []OrderInfo     `json:"infos"`
	Coupon    *UserCouponView `json:"coupon,omitempty"`
}

// OrderDetailResponse is an order with its lines grouped by seller.
type OrderDetailResponse struct {
	*Order
	Groups []OrderGroupResponse `json:"groups"`
}

// OrderRequest is the DTO for POST /api/v1/order.
type OrderRequest struct {
	Groups          []OrderGroupRequest `json:"groups" validate:"required,min=1,dive"`
	PayState        PayState            `json:"payState" validate:"required,oneof=CARD BANK_TRANSFER PHONE VIRTUAL_ACCOUNT KAKAO_PAY TOSS WITHOUT_BANK NAVER_PAY"`
	ReceiverName    string              `json:"receiverName" validate:"required,notblank,max=100"`
	ReceiverPhone   string              `json:"receiverPhone" validate:"required,max=30"`
	AddressSimple   string              `json:"addressSimple" validate:"required,notblank,max=255"`
	AddressDetail   string              `json:"addressDetail" validate:"max=255"`
	DeliveryComment string              `json:"deliveryComment" validate:"max=255"`
}

// OrderGroupRequest selects cart items of one seller and optionally a coupon
// of that seller to apply to them.
type OrderGroupRequest struct {
	CartItemIDs    []int64 `json:"cartItemIds" validate:"required,min=1,dive,gt=0"`
	CouponSerialNo string  `json:"couponSerialNo" validate:"omitempty,uuid"`
}
