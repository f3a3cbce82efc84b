package model

import (
	"time"

	"github.com/google/uuid"
)

// DateTimeLayout is the wall-clock format accepted in request bodies and query strings.
const DateTimeLayout = "2006-01-02 15:04:05"

// EventType decides how prizes are handed out.
type EventType string

const (
	// EventTypeFCFS grants prizes immediately, first come first served.
	EventTypeFCFS EventType = "FCFS"
	// EventTypeRaffle collects entries and draws winners after the event ends.
	EventTypeRaffle EventType = "RAFFLE"
)

// EventStatus is derived from the time window and the cancelled flag.
type EventStatus string

const (
	EventStatusCreated   EventStatus = "CREATED"
	EventStatusActive    EventStatus = "ACTIVE"
	EventStatusEnded     EventStatus = "ENDED"
	EventStatusCancelled EventStatus = "CANCELLED"
)

// PrizeType tags what an EventPrize grants.
type PrizeType string

const (
	PrizeTypeProduct PrizeType = "PRODUCT"
	PrizeTypeCoupon  PrizeType = "COUPON"
)

// Event is a time-bounded promotion run by exactly one seller.
type Event struct {
	ID          int64        `json:"id"`
	SellerID    int64        `json:"sellerId"`
	CreatedBy   string       `json:"createdBy"`
	Type        EventType    `json:"type"`
	Title       string       `json:"title"`
	StartAt     time.Time    `json:"startAt"`
	EndAt       time.Time    `json:"endAt"`
	Description string       `json:"description"`
	BannerImg   string       `json:"bannerImg"`
	DetailImg   string       `json:"detailImg"`
	Cancelled   bool         `json:"-"`
	Drawn       bool         `json:"drawn"`
	CreatedAt   time.Time    `json:"createdAt"`
	Prizes      []EventPrize `json:"prizes"`
}

// Status reports the lifecycle state at now.
func (e *Event) Status(now time.Time) EventStatus {
	switch {
	case e.Cancelled:
		return EventStatusCancelled
	case now.Before(e.StartAt):
		return EventStatusCreated
	case now.Before(e.EndAt):
		return EventStatusActive
	default:
		return EventStatusEnded
	}
}

// EventPrize grants either a product or a coupon. Stock is the allotment
// still held by the event.
type EventPrize struct {
	ID        int64     `json:"id"`
	EventID   int64     `json:"eventId"`
	PrizeType PrizeType `json:"prizeType"`
	ProductID *int64    `json:"productId,omitempty"`
	CouponID  *int64    `json:"couponId,omitempty"`
	Stock     int64     `json:"stock"`
	Position  int       `json:"position"`
}

// ItemID returns the referenced product or coupon id.
func (p *EventPrize) ItemID() int64 {
	switch {
	case p.ProductID != nil:
		return *p.ProductID
	case p.CouponID != nil:
		return *p.CouponID
	default:
		return 0
	}
}

// EventParticipant is one user's entry. PrizeID is set once a prize is granted.
type EventParticipant struct {
	ID        int64     `json:"id"`
	EventID   int64     `json:"eventId"`
	UserID    int64     `json:"userId"`
	PrizeID   *int64    `json:"prizeId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// EventResponse is an event with its computed status.
type EventResponse struct {
	*Event
	Status EventStatus `json:"status"`
}

// EventCreateRequest is the DTO for POST /api/v1/event.
type EventCreateRequest struct {
	Type        EventType           `json:"type" validate:"required,oneof=FCFS RAFFLE"`
	Title       string              `json:"title" validate:"required,notblank,max=255"`
	CreatedBy   string              `json:"createdBy" validate:"max=100"`
	StartAt     string              `json:"startAt" validate:"required,datetime=2006-01-02 15:04:05"`
	EndAt       string              `json:"endAt" validate:"required,datetime=2006-01-02 15:04:05"`
	Description string              `json:"description" validate:"max=10000"`
	BannerImg   string              `json:"bannerImg" validate:"max=2048"`
	DetailImg   string              `json:"detailImg" validate:"max=2048"`
	Prizes      []EventPrizeRequest `json:"prizes" validate:"required,min=1,max=50,dive"`
}

// EventPrizeRequest references a product or coupon and the stock to allot.
type EventPrizeRequest struct {
	PrizeType PrizeType `json:"prizeType" validate:"required,prizetype"`
	ItemID    int64     `json:"itemId" validate:"required,gt=0"`
	Stock     int64     `json:"stock" validate:"required,gt=0"`
}

// EventFilter narrows event searches. Zero values mean "any".
type EventFilter struct {
	Type   EventType
	Title  string
	Status EventStatus
	From   *time.Time
	To     *time.Time
}

// ParticipateResponse describes what a participant received.
type ParticipateResponse struct {
	EventID    int64       `json:"eventId"`
	Prize      *EventPrize `json:"prize,omitempty"`
	UserCoupon *UserCoupon `json:"userCoupon,omitempty"`
}

// DrawWinner is one raffle result.
type DrawWinner struct {
	UserID    int64      `json:"userId"`
	PrizeID   int64      `json:"prizeId"`
	PrizeType PrizeType  `json:"prizeType"`
	ItemID    int64      `json:"itemId"`
	SerialNo  *uuid.UUID `json:"serialNo,omitempty"`
}
