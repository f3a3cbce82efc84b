package handler

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/feelmycode/parabole/internal/model"
)

// UserServiceInterface defines the account operations used by UserHandler.
type UserServiceInterface interface {
	Signup(ctx context.Context, req *model.SignupRequest) (*model.User, error)
	Signin(ctx context.Context, req *model.SigninRequest) (*model.SigninResponse, error)
	CheckRole(ctx context.Context, email string) (model.Role, error)
}

// UserHandler handles account registration and sign-in.
type UserHandler struct {
	service   UserServiceInterface
	validator *validator.Validate
}

// NewUserHandler creates a new UserHandler with the given service and validator.
func NewUserHandler(svc UserServiceInterface, v *validator.Validate) *UserHandler {
	return &UserHandler{service: svc, validator: v}
}

// Signup handles POST /api/v1/user. Seller accounts get their user id back
// so the client can sign in and continue with POST /api/v1/seller.
func (h *UserHandler) Signup(c *fiber.Ctx) error {
	var req model.SignupRequest
	if err := decode(c, h.validator, &req); err != nil {
		return respondError(c, err)
	}

	user, err := h.service.Signup(c.Context(), &req)
	if err != nil {
		return respondError(c, err)
	}

	log.Info().Int64("user_id", user.ID).Str("role", user.Role.String()).Msg("user signed up")

	if user.Role == model.RoleSeller {
		return respond(c, fiber.StatusCreated, "seller account created, sign in and register the store with POST /api/v1/seller", user.ID)
	}
	return respond(c, fiber.StatusCreated, "signup succeeded", nil)
}

// Signin handles GET /api/v1/user and POST /api/v1/auth/signin.
func (h *UserHandler) Signin(c *fiber.Ctx) error {
	var req model.SigninRequest
	if err := decode(c, h.validator, &req); err != nil {
		return respondError(c, err)
	}

	resp, err := h.service.Signin(c.Context(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "signin succeeded", resp)
}

// CheckRole handles GET /api/v1/user/role?email=.
func (h *UserHandler) CheckRole(c *fiber.Ctx) error {
	email := strings.TrimSpace(c.Query("email"))
	if email == "" {
		return respond(c, fiber.StatusBadRequest, "invalid request: email is required", nil)
	}

	role, err := h.service.CheckRole(c.Context(), email)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "account role is "+role.String(), role.String())
}
