package service

import "net/http"

// Error is the application error: an HTTP status plus a message that is safe
// to show to clients. Sentinel values below are compared with errors.Is; use
// errors.As to read Status and Message from a wrapped chain.
type Error struct {
	Status  int
	Message string
}

// NewError creates an application error.
func NewError(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

func (e *Error) Error() string {
	return e.Message
}

var (
	// ErrInvalidRequest is returned when request data is invalid or incomplete
	ErrInvalidRequest = NewError(http.StatusBadRequest, "invalid request")

	// ErrUserNotFound is returned when no account matches an id or email
	ErrUserNotFound = NewError(http.StatusNotFound, "user not found")
	// ErrEmailExists is returned when signing up with a registered email
	ErrEmailExists = NewError(http.StatusConflict, "email already registered")
	// ErrInvalidCredentials is returned when the email or password does not match
	ErrInvalidCredentials = NewError(http.StatusBadRequest, "invalid email or password")

	// ErrNotSeller is returned when the caller has no store
	ErrNotSeller = NewError(http.StatusForbidden, "account is not a seller")
	// ErrSellerNotFound is returned when a store cannot be found
	ErrSellerNotFound = NewError(http.StatusNotFound, "seller not found")
	// ErrSellerExists is returned when a user already registered a store
	ErrSellerExists = NewError(http.StatusConflict, "seller already registered for user")
	// ErrForeignAccount is returned when registering a store for another user's account
	ErrForeignAccount = NewError(http.StatusForbidden, "store can only be registered for your own account")
	// ErrStoreNameExists is returned when the store name is taken
	ErrStoreNameExists = NewError(http.StatusConflict, "store name already taken")

	// ErrNotProductOwner is returned when a seller touches another seller's product
	ErrNotProductOwner = NewError(http.StatusForbidden, "product belongs to another seller")
	// ErrProductNotFound is returned when a product does not exist or was deleted
	ErrProductNotFound = NewError(http.StatusNotFound, "product not found")
	// ErrInsufficientStock is returned when a product or coupon would drop below zero
	ErrInsufficientStock = NewError(http.StatusBadRequest, "insufficient stock")

	// ErrCouponNotFound is returned when a coupon or held coupon cannot be found
	ErrCouponNotFound = NewError(http.StatusNotFound, "coupon not found")
	// ErrInvalidDiscount is returned when a coupon discount is out of range
	ErrInvalidDiscount = NewError(http.StatusBadRequest, "invalid discount value")
	// ErrCouponExpired is returned when a coupon is past its expiry
	ErrCouponExpired = NewError(http.StatusBadRequest, "coupon expired")
	// ErrCouponUsed is returned when a held coupon was already redeemed
	ErrCouponUsed = NewError(http.StatusBadRequest, "coupon already used")
	// ErrCouponNotApplicable is returned when a coupon belongs to another seller's items
	ErrCouponNotApplicable = NewError(http.StatusBadRequest, "coupon does not apply to these items")

	// ErrEventNotFound is returned when an event cannot be found
	ErrEventNotFound = NewError(http.StatusNotFound, "event not found")
	// ErrNotEventOwner is returned when a seller touches another seller's event
	ErrNotEventOwner = NewError(http.StatusForbidden, "event belongs to another seller")
	// ErrInvalidEventWindow is returned when an event does not end after it starts
	ErrInvalidEventWindow = NewError(http.StatusBadRequest, "event must end after it starts")
	// ErrEventOverlap is returned when the seller already runs an event in the window
	ErrEventOverlap = NewError(http.StatusConflict, "seller already runs an event in this period")
	// ErrEventNotActive is returned when participating outside the event window
	ErrEventNotActive = NewError(http.StatusBadRequest, "event is not in progress")
	// ErrEventNotCancellable is returned when cancelling an ended or cancelled event
	ErrEventNotCancellable = NewError(http.StatusConflict, "event can no longer be cancelled")
	// ErrEventCancelFailed is returned when prize stock could not be restored
	ErrEventCancelFailed = NewError(http.StatusInternalServerError, "event cancellation failed")
	// ErrAlreadyParticipated is returned when a user enters the same event twice
	ErrAlreadyParticipated = NewError(http.StatusConflict, "already participated in event")
	// ErrEventSoldOut is returned when a first-come event has no prize left
	ErrEventSoldOut = NewError(http.StatusConflict, "no prizes left")
	// ErrDrawNotAllowed is returned when drawing a raffle early, twice or for a first-come event
	ErrDrawNotAllowed = NewError(http.StatusBadRequest, "raffle can be drawn once after it ends")
	// ErrPrizeItemNotOwned is returned when a prize references another seller's item
	ErrPrizeItemNotOwned = NewError(http.StatusForbidden, "prize item belongs to another seller")

	// ErrCartItemNotFound is returned when a cart item is missing or belongs to another user
	ErrCartItemNotFound = NewError(http.StatusNotFound, "cart item not found")

	// ErrOrderNotFound is returned when an order is missing or belongs to another user
	ErrOrderNotFound = NewError(http.StatusNotFound, "order not found")
	// ErrOrderNotCancellable is returned when cancelling an order twice
	ErrOrderNotCancellable = NewError(http.StatusConflict, "order already cancelled")
)
