package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/feelmycode/parabole/internal/model"
	"github.com/feelmycode/parabole/pkg/database"
)

// OrderRepositories groups the data access an OrderService needs.
type OrderRepositories struct {
	Orders   OrderRepositoryInterface
	Carts    CartRepositoryInterface
	Products ProductRepositoryInterface
	Coupons  CouponRepositoryInterface
	Sellers  SellerRepositoryInterface
}

// OrderService turns cart items into orders.
type OrderService struct {
	pool  TxBeginner
	repos OrderRepositories
	now   func() time.Time
}

// NewOrderService creates a new OrderService with the given pool and repositories.
func NewOrderService(pool *pgxpool.Pool, repos OrderRepositories) *OrderService {
	return NewOrderServiceWithTxBeginner(pool, repos)
}

// NewOrderServiceWithTxBeginner creates an OrderService with a custom TxBeginner.
// Primarily used for testing.
func NewOrderServiceWithTxBeginner(pool TxBeginner, repos OrderRepositories) *OrderService {
	return &OrderService{pool: pool, repos: repos, now: time.Now}
}

// orderGroup is one seller's share of a checkout while it is being priced.
type orderGroup struct {
	sellerID  int64
	storeName string
	lines     []model.CartLine
	coupon    *model.UserCouponView
	serialNo  string
}

// Place checks out cart items in one transaction: products are locked and
// their stock taken, one coupon per seller group is redeemed, the order is
// stored and the ordered items leave the cart.
func (s *OrderService) Place(ctx context.Context, userID int64, req *model.OrderRequest) (*model.OrderDetailResponse, error) {
	if req == nil || len(req.Groups) == 0 {
		return nil, ErrInvalidRequest
	}

	var cartIDs []int64
	seen := make(map[int64]bool)
	for _, g := range req.Groups {
		if len(g.CartItemIDs) == 0 {
			return nil, ErrInvalidRequest
		}
		for _, id := range g.CartItemIDs {
			if seen[id] {
				return nil, ErrInvalidRequest
			}
			seen[id] = true
			cartIDs = append(cartIDs, id)
		}
	}

	order := &model.Order{
		OrderNo:         uuid.New(),
		UserID:          userID,
		State:           model.OrderStatePaid,
		PayState:        req.PayState,
		ReceiverName:    req.ReceiverName,
		ReceiverPhone:   req.ReceiverPhone,
		AddressSimple:   req.AddressSimple,
		AddressDetail:   req.AddressDetail,
		DeliveryComment: req.DeliveryComment,
	}
	if req.PayState == model.PayWithoutBank {
		order.State = model.OrderStateOrdered
	}

	var groups []*orderGroup
	err := database.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		lines, err := s.repos.Carts.GetByIDsForUser(ctx, tx, userID, cartIDs)
		if err != nil {
			return err
		}
		if len(lines) != len(cartIDs) {
			return ErrCartItemNotFound
		}
		byID := make(map[int64]model.CartLine, len(lines))
		for _, l := range lines {
			byID[l.CartItemID] = l
		}

		// One group per seller, so one coupon per seller.
		sellers := make(map[int64]bool, len(req.Groups))
		groups = make([]*orderGroup, 0, len(req.Groups))
		for _, g := range req.Groups {
			group := &orderGroup{serialNo: g.CouponSerialNo}
			for _, id := range g.CartItemIDs {
				line := byID[id]
				if group.lines == nil {
					group.sellerID, group.storeName = line.SellerID, line.StoreName
				} else if line.SellerID != group.sellerID {
					return ErrInvalidRequest
				}
				group.lines = append(group.lines, line)
			}
			if sellers[group.sellerID] {
				return ErrInvalidRequest
			}
			sellers[group.sellerID] = true
			groups = append(groups, group)
		}

		products, err := s.takeProducts(ctx, tx, lines)
		if err != nil {
			return err
		}

		for _, g := range groups {
			infos, err := s.priceGroup(ctx, tx, userID, g, products)
			if err != nil {
				return err
			}
			for _, info := range infos {
				order.TotalPrice += info.ProductPrice * int64(info.ProductCnt)
				order.DiscountPrice += info.DiscountPrice
			}
			order.Infos = append(order.Infos, infos...)
		}

		if err := s.repos.Orders.Insert(ctx, tx, order); err != nil {
			return err
		}
		return s.repos.Carts.DeleteByIDs(ctx, tx, cartIDs)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("order_id", order.ID).
		Int64("user_id", userID).
		Int64("total_price", order.TotalPrice).
		Int64("discount_price", order.DiscountPrice).
		Msg("order placed")

	detail := &model.OrderDetailResponse{Order: order, Groups: make([]model.OrderGroupResponse, 0, len(groups))}
	offset := 0
	for _, g := range groups {
		n := len(g.lines)
		detail.Groups = append(detail.Groups, model.OrderGroupResponse{
			SellerID:  g.sellerID,
			StoreName: g.storeName,
			Infos:     order.Infos[offset : offset+n],
			Coupon:    g.coupon,
		})
		offset += n
	}
	return detail, nil
}

// takeProducts locks every ordered product in ascending id order and
// removes the ordered counts from its stock.
func (s *OrderService) takeProducts(ctx context.Context, tx pgx.Tx, lines []model.CartLine) (map[int64]*model.Product, error) {
	need := make(map[int64]int64)
	for _, l := range lines {
		need[l.ProductID] += int64(l.Cnt)
	}
	ids := make([]int64, 0, len(need))
	for id := range need {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	products := make(map[int64]*model.Product, len(ids))
	for _, id := range ids {
		p, err := s.repos.Products.GetForUpdate(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		if p.IsDeleted {
			return nil, ErrProductNotFound
		}
		if p.Remains < need[id] {
			return nil, ErrInsufficientStock
		}
		if err := s.repos.Products.SetRemains(ctx, tx, id, p.Remains-need[id]); err != nil {
			return nil, err
		}
		products[id] = p
	}
	return products, nil
}

// priceGroup snapshots a group's lines and applies its coupon. The discount
// is split across lines in proportion to their totals; the last line takes
// the rounding remainder.
func (s *OrderService) priceGroup(ctx context.Context, tx pgx.Tx, userID int64, g *orderGroup, products map[int64]*model.Product) ([]model.OrderInfo, error) {
	infos := make([]model.OrderInfo, len(g.lines))
	var subtotal int64
	for i, l := range g.lines {
		p := products[l.ProductID]
		infos[i] = model.OrderInfo{
			ProductID:           p.ID,
			SellerID:            p.SellerID,
			ProductName:         p.Name,
			ProductCnt:          l.Cnt,
			ProductPrice:        p.Price,
			ProductThumbnailImg: p.ThumbnailImg,
		}
		subtotal += p.Price * int64(l.Cnt)
	}
	if g.serialNo == "" {
		return infos, nil
	}

	coupon, err := s.redeemCoupon(ctx, tx, userID, g)
	if err != nil {
		return nil, err
	}
	g.coupon = coupon

	template := model.Coupon{Type: coupon.Type, DiscountValue: coupon.DiscountValue}
	discount := template.Discount(subtotal)
	left := discount
	for i := range infos {
		infos[i].UserCouponID = &coupon.ID
		share := left
		if i < len(infos)-1 && subtotal > 0 {
			lineTotal := infos[i].ProductPrice * int64(infos[i].ProductCnt)
			share = decimal.NewFromInt(discount).
				Mul(decimal.NewFromInt(lineTotal)).
				Div(decimal.NewFromInt(subtotal)).
				Floor().
				IntPart()
		}
		infos[i].DiscountPrice = share
		left -= share
	}
	return infos, nil
}

// redeemCoupon locks the group's coupon, checks it can pay for this
// seller's items and marks it used.
func (s *OrderService) redeemCoupon(ctx context.Context, tx pgx.Tx, userID int64, g *orderGroup) (*model.UserCouponView, error) {
	serial, err := uuid.Parse(g.serialNo)
	if err != nil {
		return nil, ErrInvalidRequest
	}
	coupon, err := s.repos.Coupons.GetUserCouponBySerialForUpdate(ctx, tx, serial)
	if err != nil {
		return nil, err
	}
	switch {
	case coupon.UserID != userID:
		return nil, ErrCouponNotFound
	case coupon.Used:
		return nil, ErrCouponUsed
	case !coupon.ExpiresAt.After(s.now()):
		return nil, ErrCouponExpired
	case coupon.SellerID != g.sellerID:
		return nil, ErrCouponNotApplicable
	}
	if err := s.repos.Coupons.MarkUserCouponUsed(ctx, tx, coupon.ID, true); err != nil {
		return nil, err
	}
	coupon.Used = true
	return coupon, nil
}

// List returns the user's orders, newest first, grouped by seller.
func (s *OrderService) List(ctx context.Context, userID int64) ([]model.OrderDetailResponse, error) {
	orders, err := s.repos.Orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	details := make([]model.OrderDetailResponse, 0, len(orders))
	for i := range orders {
		d, err := s.detail(ctx, &orders[i])
		if err != nil {
			return nil, err
		}
		details = append(details, *d)
	}
	return details, nil
}

// Get returns one of the user's orders grouped by seller.
func (s *OrderService) Get(ctx context.Context, userID, orderID int64) (*model.OrderDetailResponse, error) {
	order, err := s.repos.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return s.detail(ctx, order)
}

func (s *OrderService) detail(ctx context.Context, order *model.Order) (*model.OrderDetailResponse, error) {
	var sellerIDs []int64
	groups := []model.OrderGroupResponse{}
	index := make(map[int64]int)
	for _, info := range order.Infos {
		i, ok := index[info.SellerID]
		if !ok {
			groups = append(groups, model.OrderGroupResponse{SellerID: info.SellerID, Infos: []model.OrderInfo{}})
			i = len(groups) - 1
			index[info.SellerID] = i
			sellerIDs = append(sellerIDs, info.SellerID)
		}
		groups[i].Infos = append(groups[i].Infos, info)
		if info.UserCouponID != nil && groups[i].Coupon == nil {
			coupon, err := s.repos.Coupons.GetUserCouponByID(ctx, *info.UserCouponID)
			if err != nil {
				return nil, fmt.Errorf("get order coupon: %w", err)
			}
			groups[i].Coupon = coupon
		}
	}

	sellers, err := s.repos.Sellers.GetByIDs(ctx, sellerIDs)
	if err != nil {
		return nil, err
	}
	for i := range groups {
		if seller, ok := sellers[groups[i].SellerID]; ok {
			groups[i].StoreName = seller.StoreName
		}
	}
	return &model.OrderDetailResponse{Order: order, Groups: groups}, nil
}

// Cancel returns an order's products to stock and its coupons to the user.
func (s *OrderService) Cancel(ctx context.Context, userID, orderID int64) error {
	return database.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		order, err := s.repos.Orders.GetForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order.UserID != userID {
			return ErrOrderNotFound
		}
		if order.State == model.OrderStateCancelled {
			return ErrOrderNotCancellable
		}

		restore := make(map[int64]int64)
		var couponIDs []int64
		for _, info := range order.Infos {
			restore[info.ProductID] += int64(info.ProductCnt)
			if info.UserCouponID != nil && !slices.Contains(couponIDs, *info.UserCouponID) {
				couponIDs = append(couponIDs, *info.UserCouponID)
			}
		}
		ids := make([]int64, 0, len(restore))
		for id := range restore {
			ids = append(ids, id)
		}
		slices.Sort(ids)

		for _, id := range ids {
			p, err := s.repos.Products.GetForUpdate(ctx, tx, id)
			if err != nil {
				return err
			}
			if err := s.repos.Products.SetRemains(ctx, tx, id, p.Remains+restore[id]); err != nil {
				return err
			}
		}
		for _, id := range couponIDs {
			if err := s.repos.Coupons.MarkUserCouponUsed(ctx, tx, id, false); err != nil {
				return err
			}
		}
		return s.repos.Orders.SetState(ctx, tx, orderID, model.OrderStateCancelled)
	})
}
