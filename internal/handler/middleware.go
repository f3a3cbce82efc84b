package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/feelmycode/parabole/internal/auth"
)

const userIDKey = "userId"

// TokenParser resolves an access token to the user it was issued for.
type TokenParser interface {
	Parse(token string) (int64, error)
}

// AuthMiddleware requires an "Authorization: Bearer <token>" header and
// stores the authenticated user id in the request locals.
func AuthMiddleware(tokens TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scheme, token, ok := strings.Cut(c.Get(fiber.HeaderAuthorization), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return respond(c, fiber.StatusUnauthorized, "authentication required", nil)
		}

		userID, err := tokens.Parse(strings.TrimSpace(token))
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				return respond(c, fiber.StatusUnauthorized, auth.ErrExpiredToken.Error(), nil)
			}
			return respond(c, fiber.StatusUnauthorized, auth.ErrInvalidToken.Error(), nil)
		}

		c.Locals(userIDKey, userID)
		return c.Next()
	}
}

// currentUser returns the id stored by AuthMiddleware.
func currentUser(c *fiber.Ctx) int64 {
	id, _ := c.Locals(userIDKey).(int64)
	return id
}
