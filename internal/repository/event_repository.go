package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/feelmycode/parabole/internal/model"
	"github.com/feelmycode/parabole/internal/service"
	"github.com/feelmycode/parabole/pkg/database"
)

const (
	eventColumns = `id, seller_id, created_by, type, title, start_at, end_at, description, banner_img, detail_img, cancelled, drawn, created_at`
	prizeColumns = `id, event_id, prize_type, product_id, coupon_id, stock, position`
)

// EventRepository provides data access for events and their prizes.
type EventRepository struct {
	pool database.TxQuerier
}

// NewEventRepository creates a new EventRepository with the given pool.
func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

// NewEventRepositoryWithPool creates an EventRepository over any TxQuerier.
// This is primarily used for testing.
func NewEventRepositoryWithPool(pool database.TxQuerier) *EventRepository {
	return &EventRepository{pool: pool}
}

func scanEvent(row scanner) (*model.Event, error) {
	var e model.Event
	err := row.Scan(
		&e.ID,
		&e.SellerID,
		&e.CreatedBy,
		&e.Type,
		&e.Title,
		&e.StartAt,
		&e.EndAt,
		&e.Description,
		&e.BannerImg,
		&e.DetailImg,
		&e.Cancelled,
		&e.Drawn,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func scanPrize(row scanner) (*model.EventPrize, error) {
	var p model.EventPrize
	if err := row.Scan(&p.ID, &p.EventID, &p.PrizeType, &p.ProductID, &p.CouponID, &p.Stock, &p.Position); err != nil {
		return nil, err
	}
	return &p, nil
}

// Insert stores an event and its prizes in list order. Must be called
// within a transaction so a failing prize leaves no partial event behind.
func (r *EventRepository) Insert(ctx context.Context, tx database.TxQuerier, e *model.Event) error {
	err := tx.QueryRow(ctx,
		`INSERT INTO events (seller_id, created_by, type, title, start_at, end_at, description, banner_img, detail_img)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at`,
		e.SellerID, e.CreatedBy, e.Type, e.Title, e.StartAt, e.EndAt, e.Description, e.BannerImg, e.DetailImg,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	for i := range e.Prizes {
		p := &e.Prizes[i]
		p.EventID = e.ID
		p.Position = i
		err := tx.QueryRow(ctx,
			`INSERT INTO event_prizes (event_id, prize_type, product_id, coupon_id, stock, position)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING id`,
			p.EventID, p.PrizeType, p.ProductID, p.CouponID, p.Stock, p.Position,
		).Scan(&p.ID)
		if err != nil {
			return fmt.Errorf("insert prize %d of event %d: %w", i, e.ID, err)
		}
	}
	return nil
}

// GetByID retrieves an event with its prizes.
// Returns service.ErrEventNotFound if it doesn't exist.
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*model.Event, error) {
	e, err := scanEvent(r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrEventNotFound
		}
		return nil, fmt.Errorf("get event %d: %w", id, err)
	}

	prizes, err := r.queryPrizes(ctx, r.pool, `SELECT `+prizeColumns+` FROM event_prizes WHERE event_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	e.Prizes = prizes
	return e, nil
}

// GetForUpdate locks an event and all its prizes. Must be called within a transaction.
func (r *EventRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, id int64) (*model.Event, error) {
	e, err := scanEvent(tx.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrEventNotFound
		}
		return nil, fmt.Errorf("get event for update %d: %w", id, err)
	}

	prizes, err := r.queryPrizes(ctx, tx,
		`SELECT `+prizeColumns+` FROM event_prizes WHERE event_id = $1 ORDER BY position FOR UPDATE`, id)
	if err != nil {
		return nil, err
	}
	e.Prizes = prizes
	return e, nil
}

func (r *EventRepository) queryPrizes(ctx context.Context, q database.TxQuerier, query string, args ...any) ([]model.EventPrize, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query prizes: %w", err)
	}
	defer rows.Close()

	prizes := []model.EventPrize{}
	for rows.Next() {
		p, err := scanPrize(rows)
		if err != nil {
			return nil, fmt.Errorf("scan prize: %w", err)
		}
		prizes = append(prizes, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prizes rows: %w", err)
	}
	return prizes, nil
}

// attachPrizes loads the prizes of every event in one query.
func (r *EventRepository) attachPrizes(ctx context.Context, events []model.Event) error {
	if len(events) == 0 {
		return nil
	}
	ids := make([]int64, len(events))
	index := make(map[int64]int, len(events))
	for i := range events {
		ids[i] = events[i].ID
		index[events[i].ID] = i
		events[i].Prizes = []model.EventPrize{}
	}

	prizes, err := r.queryPrizes(ctx, r.pool,
		`SELECT `+prizeColumns+` FROM event_prizes WHERE event_id = ANY($1) ORDER BY event_id, position`, ids)
	if err != nil {
		return err
	}
	for _, p := range prizes {
		if i, ok := index[p.EventID]; ok {
			events[i].Prizes = append(events[i].Prizes, p)
		}
	}
	return nil
}

func (r *EventRepository) queryEvents(ctx context.Context, query string, args ...any) ([]model.Event, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := []model.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events rows: %w", err)
	}

	if err := r.attachPrizes(ctx, events); err != nil {
		return nil, err
	}
	return events, nil
}

// List returns events matching filter as of now, soonest start first.
// Cancelled events are only returned when the filter asks for them.
func (r *EventRepository) List(ctx context.Context, f model.EventFilter, now time.Time) ([]model.Event, error) {
	var conds []string
	var args []any
	arg := func(v any) int {
		args = append(args, v)
		return len(args)
	}

	switch f.Status {
	case model.EventStatusCancelled:
		conds = append(conds, "cancelled")
	case model.EventStatusCreated:
		conds = append(conds, fmt.Sprintf("NOT cancelled AND start_at > $%d", arg(now)))
	case model.EventStatusActive:
		n := arg(now)
		conds = append(conds, fmt.Sprintf("NOT cancelled AND start_at <= $%d AND end_at > $%d", n, n))
	case model.EventStatusEnded:
		conds = append(conds, fmt.Sprintf("NOT cancelled AND end_at <= $%d", arg(now)))
	default:
		conds = append(conds, "NOT cancelled")
	}
	if f.Type != "" {
		conds = append(conds, fmt.Sprintf("type = $%d", arg(f.Type)))
	}
	if f.Title != "" {
		conds = append(conds, fmt.Sprintf("title ILIKE '%%' || $%d || '%%'", arg(f.Title)))
	}
	if f.From != nil {
		conds = append(conds, fmt.Sprintf("end_at > $%d", arg(*f.From)))
	}
	if f.To != nil {
		conds = append(conds, fmt.Sprintf("start_at < $%d", arg(*f.To)))
	}

	query := `SELECT ` + eventColumns + ` FROM events WHERE ` + strings.Join(conds, " AND ") + ` ORDER BY start_at, id`
	return r.queryEvents(ctx, query, args...)
}

// ListBySeller returns every event of a seller, newest first.
func (r *EventRepository) ListBySeller(ctx context.Context, sellerID int64) ([]model.Event, error) {
	return r.queryEvents(ctx,
		`SELECT `+eventColumns+` FROM events WHERE seller_id = $1 ORDER BY id DESC`, sellerID)
}

// HasOverlap reports whether the seller runs a non-cancelled event whose
// window intersects [start, end).
func (r *EventRepository) HasOverlap(ctx context.Context, sellerID int64, start, end time.Time) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM events
			WHERE seller_id = $1 AND NOT cancelled AND start_at < $3 AND end_at > $2
		)`,
		sellerID, start, end,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check event overlap for seller %d: %w", sellerID, err)
	}
	return exists, nil
}

// SetCancelled marks a locked event cancelled.
func (r *EventRepository) SetCancelled(ctx context.Context, tx database.TxQuerier, id int64) error {
	_, err := tx.Exec(ctx, `UPDATE events SET cancelled = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("cancel event %d: %w", id, err)
	}
	return nil
}

// SetDrawn marks a locked raffle as drawn.
func (r *EventRepository) SetDrawn(ctx context.Context, tx database.TxQuerier, id int64) error {
	_, err := tx.Exec(ctx, `UPDATE events SET drawn = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark event %d drawn: %w", id, err)
	}
	return nil
}

// SetPrizeStock writes the remaining allotment of a locked prize.
func (r *EventRepository) SetPrizeStock(ctx context.Context, tx database.TxQuerier, prizeID, stock int64) error {
	_, err := tx.Exec(ctx, `UPDATE event_prizes SET stock = $2 WHERE id = $1`, prizeID, stock)
	if err != nil {
		return fmt.Errorf("set stock for prize %d: %w", prizeID, err)
	}
	return nil
}
