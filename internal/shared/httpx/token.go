package httpx

import (
	"context"

	"clubportal/internal/shared/profile"

	"github.com/gofiber/fiber/v2"
	fiberutils "github.com/gofiber/fiber/v2/utils"
)

// TokenSource resolves the bearer token of a client profile.
type TokenSource interface {
	Token(ctx context.Context, profileID string) (string, error)
}

// Token returns the caller's bearer token, or an authentication error when the caller's
// profile is signed out.
func Token(c *fiber.Ctx, tokens TokenSource) (string, error) {
	return tokens.Token(c.UserContext(), profile.ID(c))
}

// Param returns a copy of the route parameter name, safe to keep after the request.
func Param(c *fiber.Ctx, name string) string {
	return fiberutils.CopyString(c.Params(name))
}
