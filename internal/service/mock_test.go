package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"

	"github.com/feelmycode/parabole/internal/model"
	"github.com/feelmycode/parabole/pkg/database"
)

// mockTx is a mock implementation of pgx.Tx for testing transactions.
type mockTx struct {
	committed  bool
	rolledBack bool
	commitFn   func(ctx context.Context) error
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) {
	return nil, errors.New("nested transactions not supported")
}

func (m *mockTx) Commit(ctx context.Context) error {
	if m.commitFn != nil {
		return m.commitFn(ctx)
	}
	m.committed = true
	return nil
}

func (m *mockTx) Rollback(ctx context.Context) error {
	if !m.committed {
		m.rolledBack = true
	}
	return nil
}

func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return nil
}

func (m *mockTx) LargeObjects() pgx.LargeObjects {
	return pgx.LargeObjects{}
}

func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (m *mockTx) Conn() *pgx.Conn {
	return nil
}

// mockTxBeginner is a mock implementation of TxBeginner.
type mockTxBeginner struct {
	tx      *mockTx
	beginFn func(ctx context.Context) (pgx.Tx, error)
}

func (m *mockTxBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	if m.beginFn != nil {
		return m.beginFn(ctx)
	}
	if m.tx == nil {
		m.tx = &mockTx{}
	}
	return m.tx, nil
}

// mockTokenIssuer is a testify mock of TokenIssuerInterface.
type mockTokenIssuer struct {
	mock.Mock
}

func (m *mockTokenIssuer) Issue(userID int64) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

// mockUserRepository is a mock implementation of UserRepositoryInterface.
type mockUserRepository struct {
	insertFn     func(ctx context.Context, u *model.User) error
	getByIDFn    func(ctx context.Context, id int64) (*model.User, error)
	getByEmailFn func(ctx context.Context, email string) (*model.User, error)
}

func (m *mockUserRepository) Insert(ctx context.Context, u *model.User) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, u)
	}
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, ErrUserNotFound
}

// mockSellerRepository is a mock implementation of SellerRepositoryInterface.
type mockSellerRepository struct {
	insertFn              func(ctx context.Context, s *model.Seller) error
	getByIDFn             func(ctx context.Context, id int64) (*model.Seller, error)
	getByUserIDFn         func(ctx context.Context, userID int64) (*model.Seller, error)
	getByStoreNameFn      func(ctx context.Context, storeName string) (*model.Seller, error)
	findByStoreNameLikeFn func(ctx context.Context, fragment string) (*model.Seller, error)
	getByIDsFn            func(ctx context.Context, ids []int64) (map[int64]*model.Seller, error)
}

func (m *mockSellerRepository) Insert(ctx context.Context, s *model.Seller) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, s)
	}
	return nil
}

func (m *mockSellerRepository) GetByID(ctx context.Context, id int64) (*model.Seller, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, ErrSellerNotFound
}

func (m *mockSellerRepository) GetByUserID(ctx context.Context, userID int64) (*model.Seller, error) {
	if m.getByUserIDFn != nil {
		return m.getByUserIDFn(ctx, userID)
	}
	return nil, ErrSellerNotFound
}

func (m *mockSellerRepository) GetByStoreName(ctx context.Context, storeName string) (*model.Seller, error) {
	if m.getByStoreNameFn != nil {
		return m.getByStoreNameFn(ctx, storeName)
	}
	return nil, ErrSellerNotFound
}

func (m *mockSellerRepository) FindByStoreNameLike(ctx context.Context, fragment string) (*model.Seller, error) {
	if m.findByStoreNameLikeFn != nil {
		return m.findByStoreNameLikeFn(ctx, fragment)
	}
	return nil, ErrSellerNotFound
}

func (m *mockSellerRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*model.Seller, error) {
	if m.getByIDsFn != nil {
		return m.getByIDsFn(ctx, ids)
	}
	return map[int64]*model.Seller{}, nil
}

// sellerFor returns a seller repository where userID owns sellerID.
func sellerFor(userID, sellerID int64) *mockSellerRepository {
	return &mockSellerRepository{
		getByUserIDFn: func(ctx context.Context, id int64) (*model.Seller, error) {
			if id != userID {
				return nil, ErrSellerNotFound
			}
			return &model.Seller{ID: sellerID, UserID: userID, StoreName: "shop"}, nil
		},
		getByIDFn: func(ctx context.Context, id int64) (*model.Seller, error) {
			if id != sellerID {
				return nil, ErrSellerNotFound
			}
			return &model.Seller{ID: sellerID, UserID: userID, StoreName: "shop"}, nil
		},
	}
}

// mockProductRepository is a mock implementation of ProductRepositoryInterface.
type mockProductRepository struct {
	insertFn        func(ctx context.Context, p *model.Product) error
	getByIDFn       func(ctx context.Context, id int64) (*model.Product, error)
	getForUpdateFn  func(ctx context.Context, tx database.TxQuerier, id int64) (*model.Product, error)
	updateFn        func(ctx context.Context, p *model.Product) error
	setRemainsFn    func(ctx context.Context, tx database.TxQuerier, id, remains int64) error
	softDeleteFn    func(ctx context.Context, id int64) error
	listFn          func(ctx context.Context, f model.ProductFilter) ([]model.Product, int64, error)
	namesBySellerFn func(ctx context.Context, sellerID int64, limit int) ([]string, error)
}

func (m *mockProductRepository) Insert(ctx context.Context, p *model.Product) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, p)
	}
	return nil
}

func (m *mockProductRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, ErrProductNotFound
}

func (m *mockProductRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, id int64) (*model.Product, error) {
	if m.getForUpdateFn != nil {
		return m.getForUpdateFn(ctx, tx, id)
	}
	return nil, ErrProductNotFound
}

func (m *mockProductRepository) Update(ctx context.Context, p *model.Product) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, p)
	}
	return nil
}

func (m *mockProductRepository) SetRemains(ctx context.Context, tx database.TxQuerier, id, remains int64) error {
	if m.setRemainsFn != nil {
		return m.setRemainsFn(ctx, tx, id, remains)
	}
	return nil
}

func (m *mockProductRepository) SoftDelete(ctx context.Context, id int64) error {
	if m.softDeleteFn != nil {
		return m.softDeleteFn(ctx, id)
	}
	return nil
}

func (m *mockProductRepository) List(ctx context.Context, f model.ProductFilter) ([]model.Product, int64, error) {
	if m.listFn != nil {
		return m.listFn(ctx, f)
	}
	return []model.Product{}, 0, nil
}

func (m *mockProductRepository) NamesBySeller(ctx context.Context, sellerID int64, limit int) ([]string, error) {
	if m.namesBySellerFn != nil {
		return m.namesBySellerFn(ctx, sellerID, limit)
	}
	return []string{}, nil
}

// stockProducts is an in-memory product table recording stock writes.
type stockProducts struct {
	mockProductRepository
	items map[int64]*model.Product
	locks []int64
}

func newStockProducts(products ...model.Product) *stockProducts {
	s := &stockProducts{items: make(map[int64]*model.Product)}
	for i := range products {
		p := products[i]
		s.items[p.ID] = &p
	}
	s.getByIDFn = func(ctx context.Context, id int64) (*model.Product, error) {
		p, ok := s.items[id]
		if !ok || p.IsDeleted {
			return nil, ErrProductNotFound
		}
		cp := *p
		return &cp, nil
	}
	s.getForUpdateFn = func(ctx context.Context, tx database.TxQuerier, id int64) (*model.Product, error) {
		p, ok := s.items[id]
		if !ok {
			return nil, ErrProductNotFound
		}
		s.locks = append(s.locks, id)
		cp := *p
		return &cp, nil
	}
	s.setRemainsFn = func(ctx context.Context, tx database.TxQuerier, id, remains int64) error {
		s.items[id].Remains = remains
		return nil
	}
	return s
}

// mockCouponRepository is a mock implementation of CouponRepositoryInterface.
type mockCouponRepository struct {
	insertFn                         func(ctx context.Context, c *model.Coupon) error
	getByIDFn                        func(ctx context.Context, id int64) (*model.Coupon, error)
	getForUpdateFn                   func(ctx context.Context, tx database.TxQuerier, id int64) (*model.Coupon, error)
	setRemainsFn                     func(ctx context.Context, tx database.TxQuerier, id, remains int64) error
	listBySellerFn                   func(ctx context.Context, sellerID int64) ([]model.Coupon, error)
	insertUserCouponFn               func(ctx context.Context, tx database.TxQuerier, uc *model.UserCoupon) error
	getUserCouponBySerialForUpdateFn func(ctx context.Context, tx database.TxQuerier, serialNo uuid.UUID) (*model.UserCouponView, error)
	getUserCouponByIDFn              func(ctx context.Context, id int64) (*model.UserCouponView, error)
	markUserCouponUsedFn             func(ctx context.Context, tx database.TxQuerier, id int64, used bool) error
	listUserCouponsFn                func(ctx context.Context, userID int64, unusedOnly bool) ([]model.UserCouponView, error)
}

func (m *mockCouponRepository) Insert(ctx context.Context, c *model.Coupon) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, c)
	}
	return nil
}

func (m *mockCouponRepository) GetByID(ctx context.Context, id int64) (*model.Coupon, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, ErrCouponNotFound
}

func (m *mockCouponRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, id int64) (*model.Coupon, error) {
	if m.getForUpdateFn != nil {
		return m.getForUpdateFn(ctx, tx, id)
	}
	return nil, ErrCouponNotFound
}

func (m *mockCouponRepository) SetRemains(ctx context.Context, tx database.TxQuerier, id, remains int64) error {
	if m.setRemainsFn != nil {
		return m.setRemainsFn(ctx, tx, id, remains)
	}
	return nil
}

func (m *mockCouponRepository) ListBySeller(ctx context.Context, sellerID int64) ([]model.Coupon, error) {
	if m.listBySellerFn != nil {
		return m.listBySellerFn(ctx, sellerID)
	}
	return []model.Coupon{}, nil
}

func (m *mockCouponRepository) InsertUserCoupon(ctx context.Context, tx database.TxQuerier, uc *model.UserCoupon) error {
	if m.insertUserCouponFn != nil {
		return m.insertUserCouponFn(ctx, tx, uc)
	}
	uc.AcquiredAt = time.Now()
	return nil
}

func (m *mockCouponRepository) GetUserCouponBySerialForUpdate(ctx context.Context, tx database.TxQuerier, serialNo uuid.UUID) (*model.UserCouponView, error) {
	if m.getUserCouponBySerialForUpdateFn != nil {
		return m.getUserCouponBySerialForUpdateFn(ctx, tx, serialNo)
	}
	return nil, ErrCouponNotFound
}

func (m *mockCouponRepository) GetUserCouponByID(ctx context.Context, id int64) (*model.UserCouponView, error) {
	if m.getUserCouponByIDFn != nil {
		return m.getUserCouponByIDFn(ctx, id)
	}
	return nil, ErrCouponNotFound
}

func (m *mockCouponRepository) MarkUserCouponUsed(ctx context.Context, tx database.TxQuerier, id int64, used bool) error {
	if m.markUserCouponUsedFn != nil {
		return m.markUserCouponUsedFn(ctx, tx, id, used)
	}
	return nil
}

func (m *mockCouponRepository) ListUserCoupons(ctx context.Context, userID int64, unusedOnly bool) ([]model.UserCouponView, error) {
	if m.listUserCouponsFn != nil {
		return m.listUserCouponsFn(ctx, userID, unusedOnly)
	}
	return []model.UserCouponView{}, nil
}

// mockEventRepository is a mock implementation of EventRepositoryInterface.
type mockEventRepository struct {
	insertFn        func(ctx context.Context, tx database.TxQuerier, e *model.Event) error
	getByIDFn       func(ctx context.Context, id int64) (*model.Event, error)
	getForUpdateFn  func(ctx context.Context, tx database.TxQuerier, id int64) (*model.Event, error)
	listFn          func(ctx context.Context, f model.EventFilter, now time.Time) ([]model.Event, error)
	listBySellerFn  func(ctx context.Context, sellerID int64) ([]model.Event, error)
	hasOverlapFn    func(ctx context.Context, sellerID int64, start, end time.Time) (bool, error)
	setCancelledFn  func(ctx context.Context, tx database.TxQuerier, id int64) error
	setDrawnFn      func(ctx context.Context, tx database.TxQuerier, id int64) error
	setPrizeStockFn func(ctx context.Context, tx database.TxQuerier, prizeID, stock int64) error
}

func (m *mockEventRepository) Insert(ctx context.Context, tx database.TxQuerier, e *model.Event) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, tx, e)
	}
	return nil
}

func (m *mockEventRepository) GetByID(ctx context.Context, id int64) (*model.Event, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, ErrEventNotFound
}

func (m *mockEventRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, id int64) (*model.Event, error) {
	if m.getForUpdateFn != nil {
		return m.getForUpdateFn(ctx, tx, id)
	}
	return nil, ErrEventNotFound
}

func (m *mockEventRepository) List(ctx context.Context, f model.EventFilter, now time.Time) ([]model.Event, error) {
	if m.listFn != nil {
		return m.listFn(ctx, f, now)
	}
	return []model.Event{}, nil
}

func (m *mockEventRepository) ListBySeller(ctx context.Context, sellerID int64) ([]model.Event, error) {
	if m.listBySellerFn != nil {
		return m.listBySellerFn(ctx, sellerID)
	}
	return []model.Event{}, nil
}

func (m *mockEventRepository) HasOverlap(ctx context.Context, sellerID int64, start, end time.Time) (bool, error) {
	if m.hasOverlapFn != nil {
		return m.hasOverlapFn(ctx, sellerID, start, end)
	}
	return false, nil
}

func (m *mockEventRepository) SetCancelled(ctx context.Context, tx database.TxQuerier, id int64) error {
	if m.setCancelledFn != nil {
		return m.setCancelledFn(ctx, tx, id)
	}
	return nil
}

func (m *mockEventRepository) SetDrawn(ctx context.Context, tx database.TxQuerier, id int64) error {
	if m.setDrawnFn != nil {
		return m.setDrawnFn(ctx, tx, id)
	}
	return nil
}

func (m *mockEventRepository) SetPrizeStock(ctx context.Context, tx database.TxQuerier, prizeID, stock int64) error {
	if m.setPrizeStockFn != nil {
		return m.setPrizeStockFn(ctx, tx, prizeID, stock)
	}
	return nil
}

// mockParticipantRepository is a mock implementation of ParticipantRepositoryInterface.
type mockParticipantRepository struct {
	insertFn            func(ctx context.Context, tx database.TxQuerier, p *model.EventParticipant) error
	getByUserAndEventFn func(ctx context.Context, q database.TxQuerier, userID, eventID int64) (*model.EventParticipant, error)
	listByEventFn       func(ctx context.Context, q database.TxQuerier, eventID int64) ([]model.EventParticipant, error)
	assignPrizeFn       func(ctx context.Context, tx database.TxQuerier, participantID, prizeID int64) error
}

func (m *mockParticipantRepository) Insert(ctx context.Context, tx database.TxQuerier, p *model.EventParticipant) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, tx, p)
	}
	return nil
}

func (m *mockParticipantRepository) GetByUserAndEvent(ctx context.Context, q database.TxQuerier, userID, eventID int64) (*model.EventParticipant, error) {
	if m.getByUserAndEventFn != nil {
		return m.getByUserAndEventFn(ctx, q, userID, eventID)
	}
	return nil, nil
}

func (m *mockParticipantRepository) ListByEvent(ctx context.Context, q database.TxQuerier, eventID int64) ([]model.EventParticipant, error) {
	if m.listByEventFn != nil {
		return m.listByEventFn(ctx, q, eventID)
	}
	return []model.EventParticipant{}, nil
}

func (m *mockParticipantRepository) AssignPrize(ctx context.Context, tx database.TxQuerier, participantID, prizeID int64) error {
	if m.assignPrizeFn != nil {
		return m.assignPrizeFn(ctx, tx, participantID, prizeID)
	}
	return nil
}

// mockCartRepository is a mock implementation of CartRepositoryInterface.
type mockCartRepository struct {
	upsertFn          func(ctx context.Context, item *model.CartItem) error
	getByIDFn         func(ctx context.Context, id int64) (*model.CartItem, error)
	updateCntFn       func(ctx context.Context, id int64, cnt int) error
	deleteFn          func(ctx context.Context, id int64) error
	listByUserFn      func(ctx context.Context, userID int64) ([]model.CartLine, error)
	getByIDsForUserFn func(ctx context.Context, tx database.TxQuerier, userID int64, ids []int64) ([]model.CartLine, error)
	deleteByIDsFn     func(ctx context.Context, tx database.TxQuerier, ids []int64) error
}

func (m *mockCartRepository) Upsert(ctx context.Context, item *model.CartItem) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, item)
	}
	return nil
}

func (m *mockCartRepository) GetByID(ctx context.Context, id int64) (*model.CartItem, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, ErrCartItemNotFound
}

func (m *mockCartRepository) UpdateCnt(ctx context.Context, id int64, cnt int) error {
	if m.updateCntFn != nil {
		return m.updateCntFn(ctx, id, cnt)
	}
	return nil
}

func (m *mockCartRepository) Delete(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockCartRepository) ListByUser(ctx context.Context, userID int64) ([]model.CartLine, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID)
	}
	return []model.CartLine{}, nil
}

func (m *mockCartRepository) GetByIDsForUser(ctx context.Context, tx database.TxQuerier, userID int64, ids []int64) ([]model.CartLine, error) {
	if m.getByIDsForUserFn != nil {
		return m.getByIDsForUserFn(ctx, tx, userID, ids)
	}
	return []model.CartLine{}, nil
}

func (m *mockCartRepository) DeleteByIDs(ctx context.Context, tx database.TxQuerier, ids []int64) error {
	if m.deleteByIDsFn != nil {
		return m.deleteByIDsFn(ctx, tx, ids)
	}
	return nil
}

// mockOrderRepository is a mock implementation of OrderRepositoryInterface.
type mockOrderRepository struct {
	insertFn       func(ctx context.Context, tx database.TxQuerier, o *model.Order) error
	getByIDFn      func(ctx context.Context, id int64) (*model.Order, error)
	getForUpdateFn func(ctx context.Context, tx database.TxQuerier, id int64) (*model.Order, error)
	listByUserFn   func(ctx context.Context, userID int64) ([]model.Order, error)
	setStateFn     func(ctx context.Context, tx database.TxQuerier, id int64, state model.OrderState) error
}

func (m *mockOrderRepository) Insert(ctx context.Context, tx database.TxQuerier, o *model.Order) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, tx, o)
	}
	o.ID = 1
	return nil
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, ErrOrderNotFound
}

func (m *mockOrderRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, id int64) (*model.Order, error) {
	if m.getForUpdateFn != nil {
		return m.getForUpdateFn(ctx, tx, id)
	}
	return nil, ErrOrderNotFound
}

func (m *mockOrderRepository) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID)
	}
	return []model.Order{}, nil
}

func (m *mockOrderRepository) SetState(ctx context.Context, tx database.TxQuerier, id int64, state model.OrderState) error {
	if m.setStateFn != nil {
		return m.setStateFn(ctx, tx, id, state)
	}
	return nil
}

func int64Ptr(i int64) *int64 {
	return &i
}
