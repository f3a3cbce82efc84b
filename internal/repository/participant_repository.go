package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/feelmycode/parabole/internal/model"
	"github.com/feelmycode/parabole/internal/service"
	"github.com/feelmycode/parabole/pkg/database"
)

const participantColumns = `id, event_id, user_id, prize_id, created_at`

// ParticipantRepository provides data access for event entries.
type ParticipantRepository struct {
	pool database.TxQuerier
}

// NewParticipantRepository creates a new ParticipantRepository with the given pool.
func NewParticipantRepository(pool *pgxpool.Pool) *ParticipantRepository {
	return &ParticipantRepository{pool: pool}
}

// NewParticipantRepositoryWithPool creates a ParticipantRepository over any TxQuerier.
// This is primarily used for testing.
func NewParticipantRepositoryWithPool(pool database.TxQuerier) *ParticipantRepository {
	return &ParticipantRepository{pool: pool}
}

func scanParticipant(row scanner) (*model.EventParticipant, error) {
	var p model.EventParticipant
	if err := row.Scan(&p.ID, &p.EventID, &p.UserID, &p.PrizeID, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// Insert records an entry within a transaction.
// Returns service.ErrAlreadyParticipated if the user already entered the event.
func (r *ParticipantRepository) Insert(ctx context.Context, tx database.TxQuerier, p *model.EventParticipant) error {
	err := tx.QueryRow(ctx,
		`INSERT INTO event_participants (event_id, user_id, prize_id)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		p.EventID, p.UserID, p.PrizeID,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if _, ok := uniqueConstraint(err); ok {
			return service.ErrAlreadyParticipated
		}
		return fmt.Errorf("insert participant: %w", err)
	}
	return nil
}

// GetByUserAndEvent returns the user's entry, or nil if there is none.
// Pass the transaction holding the event lock so the read does not need a
// second connection.
func (r *ParticipantRepository) GetByUserAndEvent(ctx context.Context, q database.TxQuerier, userID, eventID int64) (*model.EventParticipant, error) {
	p, err := scanParticipant(q.QueryRow(ctx,
		`SELECT `+participantColumns+` FROM event_participants WHERE user_id = $1 AND event_id = $2`,
		userID, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get participant: %w", err)
	}
	return p, nil
}

// ListByEvent returns all entries of an event in arrival order.
func (r *ParticipantRepository) ListByEvent(ctx context.Context, q database.TxQuerier, eventID int64) ([]model.EventParticipant, error) {
	rows, err := q.Query(ctx,
		`SELECT `+participantColumns+` FROM event_participants WHERE event_id = $1 ORDER BY id`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list participants of event %d: %w", eventID, err)
	}
	defer rows.Close()

	participants := []model.EventParticipant{}
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		participants = append(participants, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate participants rows: %w", err)
	}
	return participants, nil
}

// AssignPrize records the prize a participant won.
func (r *ParticipantRepository) AssignPrize(ctx context.Context, tx database.TxQuerier, participantID, prizeID int64) error {
	_, err := tx.Exec(ctx, `UPDATE event_participants SET prize_id = $2 WHERE id = $1`, participantID, prizeID)
	if err != nil {
		return fmt.Errorf("assign prize to participant %d: %w", participantID, err)
	}
	return nil
}
