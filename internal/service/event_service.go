package service

import (
	"context"
	"fmt"
	"math/rand"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/feelmycode/parabole/internal/model"
	"github.com/feelmycode/parabole/pkg/database"
)

// EventRepositories groups the data access an EventService needs.
type EventRepositories struct {
	Events       EventRepositoryInterface
	Participants ParticipantRepositoryInterface
	Products     ProductRepositoryInterface
	Coupons      CouponRepositoryInterface
	Sellers      SellerRepositoryInterface
}

// EventService runs the event lifecycle: creation with stock allotment,
// cancellation with stock restoration, participation and raffle draws.
type EventService struct {
	pool    TxBeginner
	repos   EventRepositories
	now     func() time.Time
	shuffle func(n int, swap func(i, j int))
}

// NewEventService creates a new EventService with the given pool and repositories.
func NewEventService(pool *pgxpool.Pool, repos EventRepositories) *EventService {
	return NewEventServiceWithTxBeginner(pool, repos)
}

// NewEventServiceWithTxBeginner creates an EventService with a custom TxBeginner.
// Primarily used for testing.
func NewEventServiceWithTxBeginner(pool TxBeginner, repos EventRepositories) *EventService {
	return &EventService{pool: pool, repos: repos, now: time.Now, shuffle: rand.Shuffle}
}

// prizeKey identifies the product or coupon behind a prize.
type prizeKey struct {
	typ model.PrizeType
	id  int64
}

func (k prizeKey) compare(o prizeKey) int {
	if c := strings.Compare(string(k.typ), string(o.typ)); c != 0 {
		return c
	}
	switch {
	case k.id < o.id:
		return -1
	case k.id > o.id:
		return 1
	}
	return 0
}

// parseWindow parses request times as UTC wall clock.
func parseWindow(startAt, endAt string) (time.Time, time.Time, error) {
	start, err := time.Parse(model.DateTimeLayout, startAt)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidRequest
	}
	end, err := time.Parse(model.DateTimeLayout, endAt)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidRequest
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, ErrInvalidEventWindow
	}
	return start, end, nil
}

// Create validates the caller's store and window, takes each prize's stock
// out of its product or coupon and stores the event, all in one transaction.
func (s *EventService) Create(ctx context.Context, userID int64, req *model.EventCreateRequest) (*model.EventResponse, error) {
	if req == nil || len(req.Prizes) == 0 {
		return nil, ErrInvalidRequest
	}
	start, end, err := parseWindow(req.StartAt, req.EndAt)
	if err != nil {
		return nil, err
	}
	if !end.After(s.now()) {
		return nil, ErrInvalidEventWindow
	}

	seller, err := sellerOf(ctx, s.repos.Sellers, userID)
	if err != nil {
		return nil, err
	}
	overlap, err := s.repos.Events.HasOverlap(ctx, seller.ID, start, end)
	if err != nil {
		return nil, fmt.Errorf("check overlap: %w", err)
	}
	if overlap {
		return nil, ErrEventOverlap
	}

	event := &model.Event{
		SellerID:    seller.ID,
		CreatedBy:   req.CreatedBy,
		Type:        req.Type,
		Title:       strings.TrimSpace(req.Title),
		StartAt:     start,
		EndAt:       end,
		Description: req.Description,
		BannerImg:   req.BannerImg,
		DetailImg:   req.DetailImg,
		Prizes:      make([]model.EventPrize, 0, len(req.Prizes)),
	}

	need := make(map[prizeKey]int64, len(req.Prizes))
	for _, p := range req.Prizes {
		key := prizeKey{typ: p.PrizeType, id: p.ItemID}
		need[key] += p.Stock

		itemID := p.ItemID
		prize := model.EventPrize{PrizeType: p.PrizeType, Stock: p.Stock}
		switch p.PrizeType {
		case model.PrizeTypeProduct:
			prize.ProductID = &itemID
		case model.PrizeTypeCoupon:
			prize.CouponID = &itemID
		default:
			return nil, ErrInvalidRequest
		}
		event.Prizes = append(event.Prizes, prize)
	}

	// Lock items in a fixed order so concurrent creators cannot deadlock.
	keys := make([]prizeKey, 0, len(need))
	for k := range need {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, prizeKey.compare)

	err = database.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		for _, k := range keys {
			if err := s.takeStock(ctx, tx, seller.ID, k, need[k]); err != nil {
				return err
			}
		}
		return s.repos.Events.Insert(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("event_id", event.ID).
		Int64("seller_id", seller.ID).
		Int("prizes", len(event.Prizes)).
		Msg("event created")

	return &model.EventResponse{Event: event, Status: event.Status(s.now())}, nil
}

// takeStock locks one product or coupon of the seller and removes amount from it.
func (s *EventService) takeStock(ctx context.Context, tx pgx.Tx, sellerID int64, k prizeKey, amount int64) error {
	switch k.typ {
	case model.PrizeTypeProduct:
		p, err := s.repos.Products.GetForUpdate(ctx, tx, k.id)
		if err != nil {
			return err
		}
		if p.IsDeleted {
			return ErrProductNotFound
		}
		if p.SellerID != sellerID {
			return ErrPrizeItemNotOwned
		}
		if p.Remains < amount {
			return ErrInsufficientStock
		}
		return s.repos.Products.SetRemains(ctx, tx, k.id, p.Remains-amount)
	case model.PrizeTypeCoupon:
		c, err := s.repos.Coupons.GetForUpdate(ctx, tx, k.id)
		if err != nil {
			return err
		}
		if c.SellerID != sellerID {
			return ErrPrizeItemNotOwned
		}
		if c.Remains < amount {
			return ErrInsufficientStock
		}
		return s.repos.Coupons.SetRemains(ctx, tx, k.id, c.Remains-amount)
	}
	return ErrInvalidRequest
}

// giveStock locks one product or coupon and adds amount back to it.
func (s *EventService) giveStock(ctx context.Context, tx pgx.Tx, k prizeKey, amount int64) error {
	switch k.typ {
	case model.PrizeTypeProduct:
		p, err := s.repos.Products.GetForUpdate(ctx, tx, k.id)
		if err != nil {
			return err
		}
		return s.repos.Products.SetRemains(ctx, tx, k.id, p.Remains+amount)
	case model.PrizeTypeCoupon:
		c, err := s.repos.Coupons.GetForUpdate(ctx, tx, k.id)
		if err != nil {
			return err
		}
		return s.repos.Coupons.SetRemains(ctx, tx, k.id, c.Remains+amount)
	}
	return fmt.Errorf("unknown prize type %q", k.typ)
}

// Get returns an event with its computed status.
func (s *EventService) Get(ctx context.Context, id int64) (*model.EventResponse, error) {
	event, err := s.repos.Events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &model.EventResponse{Event: event, Status: event.Status(s.now())}, nil
}

func (s *EventService) responses(events []model.Event) []model.EventResponse {
	now := s.now()
	out := make([]model.EventResponse, len(events))
	for i := range events {
		out[i] = model.EventResponse{Event: &events[i], Status: events[i].Status(now)}
	}
	return out
}

// List searches events by type, title fragment, status and time range.
func (s *EventService) List(ctx context.Context, f model.EventFilter) ([]model.EventResponse, error) {
	events, err := s.repos.Events.List(ctx, f, s.now())
	if err != nil {
		return nil, err
	}
	return s.responses(events), nil
}

// ListBySeller returns every event of the caller's store, cancelled ones included.
func (s *EventService) ListBySeller(ctx context.Context, userID int64) ([]model.EventResponse, error) {
	seller, err := sellerOf(ctx, s.repos.Sellers, userID)
	if err != nil {
		return nil, err
	}
	events, err := s.repos.Events.ListBySeller(ctx, seller.ID)
	if err != nil {
		return nil, err
	}
	return s.responses(events), nil
}

// CanCreate reports whether the caller's store is free to run an event
// between startAt and endAt.
func (s *EventService) CanCreate(ctx context.Context, userID int64, startAt, endAt string) (bool, error) {
	start, end, err := parseWindow(startAt, endAt)
	if err != nil {
		return false, err
	}
	seller, err := sellerOf(ctx, s.repos.Sellers, userID)
	if err != nil {
		return false, err
	}
	overlap, err := s.repos.Events.HasOverlap(ctx, seller.ID, start, end)
	if err != nil {
		return false, fmt.Errorf("check overlap: %w", err)
	}
	return !overlap, nil
}

// Cancel stops an event that has not ended and returns the stock its
// prizes still hold to the products and coupons they came from.
// Any failure while restoring is logged and reported as ErrEventCancelFailed.
func (s *EventService) Cancel(ctx context.Context, userID, eventID int64) error {
	seller, err := sellerOf(ctx, s.repos.Sellers, userID)
	if err != nil {
		return err
	}

	return database.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		event, err := s.repos.Events.GetForUpdate(ctx, tx, eventID)
		if err != nil {
			return err
		}
		if event.SellerID != seller.ID {
			return ErrNotEventOwner
		}
		switch event.Status(s.now()) {
		case model.EventStatusCreated, model.EventStatusActive:
		default:
			return ErrEventNotCancellable
		}

		prizes := slices.Clone(event.Prizes)
		slices.SortFunc(prizes, func(a, b model.EventPrize) int {
			return prizeKey{a.PrizeType, a.ItemID()}.compare(prizeKey{b.PrizeType, b.ItemID()})
		})
		for _, p := range prizes {
			if p.Stock == 0 {
				continue
			}
			err := s.giveStock(ctx, tx, prizeKey{typ: p.PrizeType, id: p.ItemID()}, p.Stock)
			if err == nil {
				err = s.repos.Events.SetPrizeStock(ctx, tx, p.ID, 0)
			}
			if err != nil {
				log.Error().
					Err(err).
					Int64("event_id", eventID).
					Int64("prize_id", p.ID).
					Str("prize_type", string(p.PrizeType)).
					Int64("item_id", p.ItemID()).
					Msg("failed to restore prize stock")
				return ErrEventCancelFailed
			}
		}

		if err := s.repos.Events.SetCancelled(ctx, tx, eventID); err != nil {
			log.Error().Err(err).Int64("event_id", eventID).Msg("failed to mark event cancelled")
			return ErrEventCancelFailed
		}
		return nil
	})
}

// Participate enters the user into an active event. First-come events hand
// out the first prize with stock left; raffles only record the entry.
func (s *EventService) Participate(ctx context.Context, userID, eventID int64) (*model.ParticipateResponse, error) {
	resp := &model.ParticipateResponse{EventID: eventID}

	err := database.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		event, err := s.repos.Events.GetForUpdate(ctx, tx, eventID)
		if err != nil {
			return err
		}
		if event.Status(s.now()) != model.EventStatusActive {
			return ErrEventNotActive
		}

		existing, err := s.repos.Participants.GetByUserAndEvent(ctx, tx, userID, eventID)
		if err != nil {
			return fmt.Errorf("get participant: %w", err)
		}
		if existing != nil {
			return ErrAlreadyParticipated
		}

		participant := &model.EventParticipant{EventID: eventID, UserID: userID}
		if event.Type == model.EventTypeRaffle {
			return s.repos.Participants.Insert(ctx, tx, participant)
		}

		idx := slices.IndexFunc(event.Prizes, func(p model.EventPrize) bool { return p.Stock > 0 })
		if idx < 0 {
			return ErrEventSoldOut
		}
		prize := event.Prizes[idx]
		prize.Stock--
		if err := s.repos.Events.SetPrizeStock(ctx, tx, prize.ID, prize.Stock); err != nil {
			return err
		}

		participant.PrizeID = &prize.ID
		if err := s.repos.Participants.Insert(ctx, tx, participant); err != nil {
			return err
		}

		if prize.PrizeType == model.PrizeTypeCoupon {
			uc, err := s.issueCoupon(ctx, tx, userID, *prize.CouponID)
			if err != nil {
				return err
			}
			resp.UserCoupon = uc
		}
		resp.Prize = &prize
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *EventService) issueCoupon(ctx context.Context, tx pgx.Tx, userID, couponID int64) (*model.UserCoupon, error) {
	uc := &model.UserCoupon{SerialNo: uuid.New(), CouponID: couponID, UserID: userID}
	if err := s.repos.Coupons.InsertUserCoupon(ctx, tx, uc); err != nil {
		return nil, err
	}
	return uc, nil
}

// Draw picks raffle winners once the event has ended. Entrants are shuffled
// and handed the remaining prize units in prize order.
func (s *EventService) Draw(ctx context.Context, userID, eventID int64) ([]model.DrawWinner, error) {
	seller, err := sellerOf(ctx, s.repos.Sellers, userID)
	if err != nil {
		return nil, err
	}

	winners := []model.DrawWinner{}
	err = database.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		event, err := s.repos.Events.GetForUpdate(ctx, tx, eventID)
		if err != nil {
			return err
		}
		if event.SellerID != seller.ID {
			return ErrNotEventOwner
		}
		if event.Type != model.EventTypeRaffle || event.Drawn || event.Status(s.now()) != model.EventStatusEnded {
			return ErrDrawNotAllowed
		}

		participants, err := s.repos.Participants.ListByEvent(ctx, tx, eventID)
		if err != nil {
			return err
		}
		entrants := slices.DeleteFunc(participants, func(p model.EventParticipant) bool { return p.PrizeID != nil })
		s.shuffle(len(entrants), func(i, j int) { entrants[i], entrants[j] = entrants[j], entrants[i] })

		prizes := event.Prizes
		before := make([]int64, len(prizes))
		for i, p := range prizes {
			before[i] = p.Stock
		}
		next := 0
		for _, entrant := range entrants {
			for next < len(prizes) && prizes[next].Stock == 0 {
				next++
			}
			if next == len(prizes) {
				break
			}
			prize := &prizes[next]
			prize.Stock--

			if err := s.repos.Participants.AssignPrize(ctx, tx, entrant.ID, prize.ID); err != nil {
				return err
			}
			winner := model.DrawWinner{
				UserID:    entrant.UserID,
				PrizeID:   prize.ID,
				PrizeType: prize.PrizeType,
				ItemID:    prize.ItemID(),
			}
			if prize.PrizeType == model.PrizeTypeCoupon {
				uc, err := s.issueCoupon(ctx, tx, entrant.UserID, *prize.CouponID)
				if err != nil {
					return err
				}
				winner.SerialNo = &uc.SerialNo
			}
			winners = append(winners, winner)
		}

		for i, p := range prizes {
			if p.Stock == before[i] {
				continue
			}
			if err := s.repos.Events.SetPrizeStock(ctx, tx, p.ID, p.Stock); err != nil {
				return err
			}
		}
		return s.repos.Events.SetDrawn(ctx, tx, eventID)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Int64("event_id", eventID).Int("winners", len(winners)).Msg("raffle drawn")
	return winners, nil
}
