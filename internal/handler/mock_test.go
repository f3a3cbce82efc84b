package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/feelmycode/parabole/internal/auth"
	"github.com/feelmycode/parabole/internal/model"
	appvalidator "github.com/feelmycode/parabole/internal/validator"
)

// fakeTokens accepts tokens of the form "user-<id>".
type fakeTokens struct{}

func (fakeTokens) Parse(token string) (int64, error) {
	if token == "expired" {
		return 0, auth.ErrExpiredToken
	}
	rest, ok := strings.CutPrefix(token, "user-")
	if !ok {
		return 0, auth.ErrInvalidToken
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, auth.ErrInvalidToken
	}
	return id, nil
}

// mockPool implements Pinger for health checks.
type mockPool struct {
	pingErr error
}

func (m *mockPool) Ping(ctx context.Context) error {
	return m.pingErr
}

type mockUserService struct {
	signupFn    func(ctx context.Context, req *model.SignupRequest) (*model.User, error)
	signinFn    func(ctx context.Context, req *model.SigninRequest) (*model.SigninResponse, error)
	checkRoleFn func(ctx context.Context, email string) (model.Role, error)
}

func (m *mockUserService) Signup(ctx context.Context, req *model.SignupRequest) (*model.User, error) {
	if m.signupFn != nil {
		return m.signupFn(ctx, req)
	}
	return &model.User{ID: 1, Role: req.Role}, nil
}

func (m *mockUserService) Signin(ctx context.Context, req *model.SigninRequest) (*model.SigninResponse, error) {
	if m.signinFn != nil {
		return m.signinFn(ctx, req)
	}
	return &model.SigninResponse{}, nil
}

func (m *mockUserService) CheckRole(ctx context.Context, email string) (model.Role, error) {
	if m.checkRoleFn != nil {
		return m.checkRoleFn(ctx, email)
	}
	return model.RoleUser, nil
}

type mockSellerService struct {
	registerFn    func(ctx context.Context, req *model.SellerRegisterRequest) (*model.Seller, error)
	getByUserIDFn func(ctx context.Context, userID int64) (*model.Seller, error)
}

func (m *mockSellerService) Register(ctx context.Context, req *model.SellerRegisterRequest) (*model.Seller, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, req)
	}
	return &model.Seller{}, nil
}

func (m *mockSellerService) GetByUserID(ctx context.Context, userID int64) (*model.Seller, error) {
	if m.getByUserIDFn != nil {
		return m.getByUserIDFn(ctx, userID)
	}
	return &model.Seller{}, nil
}

type mockProductService struct {
	createFn        func(ctx context.Context, userID int64, req *model.ProductRequest) (*model.Product, error)
	getFn           func(ctx context.Context, id int64) (*model.ProductDetail, error)
	updateFn        func(ctx context.Context, userID, id int64, req *model.ProductUpdateRequest) (*model.Product, error)
	deleteFn        func(ctx context.Context, userID, id int64) error
	adjustRemainsFn func(ctx context.Context, userID, id, delta int64) (*model.Product, error)
	listFn          func(ctx context.Context, f model.ProductFilter) (*model.ProductPage, error)
	namesByStoreFn  func(ctx context.Context, storeName string) ([]string, error)
}

func (m *mockProductService) Create(ctx context.Context, userID int64, req *model.ProductRequest) (*model.Product, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, req)
	}
	return &model.Product{}, nil
}

func (m *mockProductService) Get(ctx context.Context, id int64) (*model.ProductDetail, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return &model.ProductDetail{}, nil
}

func (m *mockProductService) Update(ctx context.Context, userID, id int64, req *model.ProductUpdateRequest) (*model.Product, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, userID, id, req)
	}
	return &model.Product{}, nil
}

func (m *mockProductService) Delete(ctx context.Context, userID, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, id)
	}
	return nil
}

func (m *mockProductService) AdjustRemains(ctx context.Context, userID, id, delta int64) (*model.Product, error) {
	if m.adjustRemainsFn != nil {
		return m.adjustRemainsFn(ctx, userID, id, delta)
	}
	return &model.Product{}, nil
}

func (m *mockProductService) List(ctx context.Context, f model.ProductFilter) (*model.ProductPage, error) {
	if m.listFn != nil {
		return m.listFn(ctx, f)
	}
	return &model.ProductPage{Items: []model.Product{}}, nil
}

func (m *mockProductService) NamesByStore(ctx context.Context, storeName string) ([]string, error) {
	if m.namesByStoreFn != nil {
		return m.namesByStoreFn(ctx, storeName)
	}
	return []string{}, nil
}

type mockCouponService struct {
	createFn       func(ctx context.Context, userID int64, req *model.CouponRequest) (*model.Coupon, error)
	getFn          func(ctx context.Context, id int64) (*model.Coupon, error)
	listMineFn     func(ctx context.Context, userID int64) ([]model.UserCouponView, error)
	listBySellerFn func(ctx context.Context, userID int64) ([]model.Coupon, error)
}

func (m *mockCouponService) Create(ctx context.Context, userID int64, req *model.CouponRequest) (*model.Coupon, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, req)
	}
	return &model.Coupon{}, nil
}

func (m *mockCouponService) Get(ctx context.Context, id int64) (*model.Coupon, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return &model.Coupon{}, nil
}

func (m *mockCouponService) ListMine(ctx context.Context, userID int64) ([]model.UserCouponView, error) {
	if m.listMineFn != nil {
		return m.listMineFn(ctx, userID)
	}
	return []model.UserCouponView{}, nil
}

func (m *mockCouponService) ListBySeller(ctx context.Context, userID int64) ([]model.Coupon, error) {
	if m.listBySellerFn != nil {
		return m.listBySellerFn(ctx, userID)
	}
	return []model.Coupon{}, nil
}

type mockEventService struct {
	createFn       func(ctx context.Context, userID int64, req *model.EventCreateRequest) (*model.EventResponse, error)
	getFn          func(ctx context.Context, id int64) (*model.EventResponse, error)
	listFn         func(ctx context.Context, f model.EventFilter) ([]model.EventResponse, error)
	listBySellerFn func(ctx context.Context, userID int64) ([]model.EventResponse, error)
	canCreateFn    func(ctx context.Context, userID int64, startAt, endAt string) (bool, error)
	cancelFn       func(ctx context.Context, userID, eventID int64) error
	participateFn  func(ctx context.Context, userID, eventID int64) (*model.ParticipateResponse, error)
	drawFn         func(ctx context.Context, userID, eventID int64) ([]model.DrawWinner, error)
}

func (m *mockEventService) Create(ctx context.Context, userID int64, req *model.EventCreateRequest) (*model.EventResponse, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, req)
	}
	return &model.EventResponse{Event: &model.Event{}}, nil
}

func (m *mockEventService) Get(ctx context.Context, id int64) (*model.EventResponse, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return &model.EventResponse{Event: &model.Event{}}, nil
}

func (m *mockEventService) List(ctx context.Context, f model.EventFilter) ([]model.EventResponse, error) {
	if m.listFn != nil {
		return m.listFn(ctx, f)
	}
	return []model.EventResponse{}, nil
}

func (m *mockEventService) ListBySeller(ctx context.Context, userID int64) ([]model.EventResponse, error) {
	if m.listBySellerFn != nil {
		return m.listBySellerFn(ctx, userID)
	}
	return []model.EventResponse{}, nil
}

func (m *mockEventService) CanCreate(ctx context.Context, userID int64, startAt, endAt string) (bool, error) {
	if m.canCreateFn != nil {
		return m.canCreateFn(ctx, userID, startAt, endAt)
	}
	return true, nil
}

func (m *mockEventService) Cancel(ctx context.Context, userID, eventID int64) error {
	if m.cancelFn != nil {
		return m.cancelFn(ctx, userID, eventID)
	}
	return nil
}

func (m *mockEventService) Participate(ctx context.Context, userID, eventID int64) (*model.ParticipateResponse, error) {
	if m.participateFn != nil {
		return m.participateFn(ctx, userID, eventID)
	}
	return &model.ParticipateResponse{EventID: eventID}, nil
}

func (m *mockEventService) Draw(ctx context.Context, userID, eventID int64) ([]model.DrawWinner, error) {
	if m.drawFn != nil {
		return m.drawFn(ctx, userID, eventID)
	}
	return []model.DrawWinner{}, nil
}

type mockCartService struct {
	addItemFn   func(ctx context.Context, userID int64, req *model.CartAddItemRequest) (*model.CartItem, error)
	updateCntFn func(ctx context.Context, userID int64, req *model.CartItemUpdateRequest) error
	deleteFn    func(ctx context.Context, userID, cartItemID int64) error
	listFn      func(ctx context.Context, userID int64) ([]model.CartGroupResponse, error)
}

func (m *mockCartService) AddItem(ctx context.Context, userID int64, req *model.CartAddItemRequest) (*model.CartItem, error) {
	if m.addItemFn != nil {
		return m.addItemFn(ctx, userID, req)
	}
	return &model.CartItem{}, nil
}

func (m *mockCartService) UpdateCnt(ctx context.Context, userID int64, req *model.CartItemUpdateRequest) error {
	if m.updateCntFn != nil {
		return m.updateCntFn(ctx, userID, req)
	}
	return nil
}

func (m *mockCartService) Delete(ctx context.Context, userID, cartItemID int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, cartItemID)
	}
	return nil
}

func (m *mockCartService) List(ctx context.Context, userID int64) ([]model.CartGroupResponse, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID)
	}
	return []model.CartGroupResponse{}, nil
}

type mockOrderService struct {
	placeFn  func(ctx context.Context, userID int64, req *model.OrderRequest) (*model.OrderDetailResponse, error)
	listFn   func(ctx context.Context, userID int64) ([]model.OrderDetailResponse, error)
	getFn    func(ctx context.Context, userID, orderID int64) (*model.OrderDetailResponse, error)
	cancelFn func(ctx context.Context, userID, orderID int64) error
}

func (m *mockOrderService) Place(ctx context.Context, userID int64, req *model.OrderRequest) (*model.OrderDetailResponse, error) {
	if m.placeFn != nil {
		return m.placeFn(ctx, userID, req)
	}
	return &model.OrderDetailResponse{Order: &model.Order{}}, nil
}

func (m *mockOrderService) List(ctx context.Context, userID int64) ([]model.OrderDetailResponse, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID)
	}
	return []model.OrderDetailResponse{}, nil
}

func (m *mockOrderService) Get(ctx context.Context, userID, orderID int64) (*model.OrderDetailResponse, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID, orderID)
	}
	return &model.OrderDetailResponse{Order: &model.Order{}}, nil
}

func (m *mockOrderService) Cancel(ctx context.Context, userID, orderID int64) error {
	if m.cancelFn != nil {
		return m.cancelFn(ctx, userID, orderID)
	}
	return nil
}

// services holds the mocks behind a test app. Nil fields get empty mocks.
type services struct {
	pool    *mockPool
	user    *mockUserService
	seller  *mockSellerService
	product *mockProductService
	coupon  *mockCouponService
	event   *mockEventService
	cart    *mockCartService
	order   *mockOrderService
}

func setupTestApp(s services) *fiber.App {
	if s.pool == nil {
		s.pool = &mockPool{}
	}
	if s.user == nil {
		s.user = &mockUserService{}
	}
	if s.seller == nil {
		s.seller = &mockSellerService{}
	}
	if s.product == nil {
		s.product = &mockProductService{}
	}
	if s.coupon == nil {
		s.coupon = &mockCouponService{}
	}
	if s.event == nil {
		s.event = &mockEventService{}
	}
	if s.cart == nil {
		s.cart = &mockCartService{}
	}
	if s.order == nil {
		s.order = &mockOrderService{}
	}

	v := appvalidator.New()
	app := fiber.New()
	RegisterRoutes(app, Handlers{
		Health:  NewHealthHandler(s.pool),
		User:    NewUserHandler(s.user, v),
		Seller:  NewSellerHandler(s.seller, v),
		Product: NewProductHandler(s.product, v),
		Coupon:  NewCouponHandler(s.coupon, v),
		Event:   NewEventHandler(s.event, v),
		Cart:    NewCartHandler(s.cart, v),
		Order:   NewOrderHandler(s.order, v),
	}, AuthMiddleware(fakeTokens{}))
	return app
}

// envelope mirrors model.Response with the payload left raw.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// call sends a request as userID (0 means anonymous) and decodes the envelope.
func call(t *testing.T, app *fiber.App, method, path, body string, userID int64) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != 0 {
		req.Header.Set("Authorization", "Bearer user-"+strconv.FormatInt(userID, 10))
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}
