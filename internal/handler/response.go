package handler

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/feelmycode/parabole/internal/model"
	"github.com/feelmycode/parabole/internal/service"
	appvalidator "github.com/feelmycode/parabole/internal/validator"
)

var errInvalidBody = service.NewError(fiber.StatusBadRequest, "invalid request body")

// respond writes the response envelope. Success follows the status code.
func respond(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(model.Response{
		Success: status < fiber.StatusBadRequest,
		Message: message,
		Data:    data,
	})
}

// respondError writes err as an envelope. A *service.Error in the chain
// decides status and message; anything else is logged and hidden behind 500.
func respondError(c *fiber.Ctx, err error) error {
	var appErr *service.Error
	if errors.As(err, &appErr) {
		if appErr.Status >= fiber.StatusInternalServerError {
			requestLog(c, log.Error()).Err(err).Msg(appErr.Message)
		}
		return respond(c, appErr.Status, appErr.Message, nil)
	}

	requestLog(c, log.Error()).Err(err).Msg("unhandled error")
	return respond(c, fiber.StatusInternalServerError, "internal server error", nil)
}

// requestLog adds the request coordinates to e.
func requestLog(c *fiber.Ctx, e *zerolog.Event) *zerolog.Event {
	if id, ok := c.Locals("requestid").(string); ok {
		e = e.Str("request_id", id)
	}
	return e.Str("method", c.Method()).Str("path", c.Path())
}

// decode parses the JSON body into dst and validates it.
func decode(c *fiber.Ctx, v *validator.Validate, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return errInvalidBody
	}
	if err := v.Struct(dst); err != nil {
		return service.NewError(fiber.StatusBadRequest, appvalidator.Describe(err))
	}
	return nil
}

// idParam reads a positive integer route parameter.
func idParam(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, service.NewError(fiber.StatusBadRequest, "invalid request: "+name+" must be a positive integer")
	}
	return id, nil
}
