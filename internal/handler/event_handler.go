package handler

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/feelmycode/parabole/internal/model"
	appvalidator "github.com/feelmycode/parabole/internal/validator"
)

// EventServiceInterface defines the event operations used by EventHandler.
type EventServiceInterface interface {
	Create(ctx context.Context, userID int64, req *model.EventCreateRequest) (*model.EventResponse, error)
	Get(ctx context.Context, id int64) (*model.EventResponse, error)
	List(ctx context.Context, f model.EventFilter) ([]model.EventResponse, error)
	ListBySeller(ctx context.Context, userID int64) ([]model.EventResponse, error)
	CanCreate(ctx context.Context, userID int64, startAt, endAt string) (bool, error)
	Cancel(ctx context.Context, userID, eventID int64) error
	Participate(ctx context.Context, userID, eventID int64) (*model.ParticipateResponse, error)
	Draw(ctx context.Context, userID, eventID int64) ([]model.DrawWinner, error)
}

// EventHandler handles HTTP requests for seller events.
type EventHandler struct {
	service   EventServiceInterface
	validator *validator.Validate
}

// NewEventHandler creates a new EventHandler with the given service and validator.
func NewEventHandler(svc EventServiceInterface, v *validator.Validate) *EventHandler {
	return &EventHandler{service: svc, validator: v}
}

type eventSearchQuery struct {
	Type   string `query:"type" json:"type" validate:"omitempty,oneof=FCFS RAFFLE"`
	Title  string `query:"title" json:"title" validate:"max=255"`
	Status string `query:"status" json:"status" validate:"omitempty,oneof=CREATED ACTIVE ENDED CANCELLED"`
	From   string `query:"from" json:"from" validate:"omitempty,datetime=2006-01-02 15:04:05"`
	To     string `query:"to" json:"to" validate:"omitempty,datetime=2006-01-02 15:04:05"`
}

// Create handles POST /api/v1/event.
func (h *EventHandler) Create(c *fiber.Ctx) error {
	var req model.EventCreateRequest
	if err := decode(c, h.validator, &req); err != nil {
		return respondError(c, err)
	}

	event, err := h.service.Create(c.Context(), currentUser(c), &req)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusCreated, "event created", event)
}

// Get handles GET /api/v1/event/:id.
func (h *EventHandler) Get(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	event, err := h.service.Get(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "event found", event)
}

// List handles GET /api/v1/event, every event that is not cancelled.
func (h *EventHandler) List(c *fiber.Ctx) error {
	events, err := h.service.List(c.Context(), model.EventFilter{})
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "events found", events)
}

// Search handles GET /api/v1/event/list?type=&title=&status=&from=&to=.
func (h *EventHandler) Search(c *fiber.Ctx) error {
	var q eventSearchQuery
	if err := c.QueryParser(&q); err != nil {
		return respond(c, fiber.StatusBadRequest, "invalid request: malformed query", nil)
	}
	if err := h.validator.Struct(q); err != nil {
		return respond(c, fiber.StatusBadRequest, appvalidator.Describe(err), nil)
	}

	f := model.EventFilter{
		Type:   model.EventType(q.Type),
		Title:  strings.TrimSpace(q.Title),
		Status: model.EventStatus(q.Status),
	}
	if q.From != "" {
		from, _ := time.Parse(model.DateTimeLayout, q.From)
		f.From = &from
	}
	if q.To != "" {
		to, _ := time.Parse(model.DateTimeLayout, q.To)
		f.To = &to
	}

	events, err := h.service.List(c.Context(), f)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "events found", events)
}

// ListBySeller handles GET /api/v1/event/seller.
func (h *EventHandler) ListBySeller(c *fiber.Ctx) error {
	events, err := h.service.ListBySeller(c.Context(), currentUser(c))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "events found", events)
}

// CanCreate handles GET /api/v1/event/seller/check?startAt=&endAt=.
func (h *EventHandler) CanCreate(c *fiber.Ctx) error {
	startAt, endAt := c.Query("startAt"), c.Query("endAt")
	if startAt == "" || endAt == "" {
		return respond(c, fiber.StatusBadRequest, "invalid request: startAt and endAt are required", nil)
	}

	ok, err := h.service.CanCreate(c.Context(), currentUser(c), startAt, endAt)
	if err != nil {
		return respondError(c, err)
	}
	if !ok {
		return respond(c, fiber.StatusOK, "another event already runs in this period", false)
	}
	return respond(c, fiber.StatusOK, "event can be created", true)
}

// Cancel handles DELETE /api/v1/event/:id.
func (h *EventHandler) Cancel(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	if err := h.service.Cancel(c.Context(), currentUser(c), id); err != nil {
		return respondError(c, err)
	}

	log.Info().Int64("event_id", id).Msg("event cancelled")
	return respond(c, fiber.StatusOK, "event cancelled", nil)
}

// Participate handles POST /api/v1/event/:id/participate.
func (h *EventHandler) Participate(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	userID := currentUser(c)
	resp, err := h.service.Participate(c.Context(), userID, id)
	if err != nil {
		return respondError(c, err)
	}

	e := log.Info().Int64("event_id", id).Int64("user_id", userID)
	if resp.Prize != nil {
		e = e.Int64("prize_id", resp.Prize.ID)
	}
	e.Msg("event participation recorded")

	return respond(c, fiber.StatusCreated, "participation recorded", resp)
}

// Draw handles POST /api/v1/event/:id/draw.
func (h *EventHandler) Draw(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	winners, err := h.service.Draw(c.Context(), currentUser(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "raffle drawn", winners)
}
