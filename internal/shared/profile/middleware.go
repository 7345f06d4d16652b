// Package profile identifies the client profile behind each request: one browser's (or
// one CLI installation's) storage namespace.
package profile

import (
	"context"
	"time"

	"clubportal/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
	fiberutils "github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
)

const (
	// CookieName carries the profile id for browsers.
	CookieName = "portal_profile"
	// HeaderName carries the profile id for non-browser clients.
	HeaderName = "X-Portal-Profile"
	// LocalsKey is where the middleware stores the id on the fiber context.
	LocalsKey = "profile_id"
)

// Config tunes the middleware.
type Config struct {
	CookieSecure bool
	CookieMaxAge time.Duration
}

// New returns middleware that resolves the caller's profile id, minting one when the
// caller has none or sent something that is not a UUID.
func New(cfg Config) fiber.Handler {
	if cfg.CookieMaxAge <= 0 {
		cfg.CookieMaxAge = 365 * 24 * time.Hour
	}
	return func(c *fiber.Ctx) error {
		id := c.Get(HeaderName)
		if !valid(id) {
			id = c.Cookies(CookieName)
		}
		if valid(id) {
			// Header and cookie values alias the request buffer; the id outlives it.
			id = fiberutils.CopyString(id)
		} else {
			id = uuid.NewString()
			c.Cookie(&fiber.Cookie{
				Name:     CookieName,
				Value:    id,
				Path:     "/",
				MaxAge:   int(cfg.CookieMaxAge / time.Second),
				Secure:   cfg.CookieSecure,
				HTTPOnly: true,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}
		c.Locals(LocalsKey, id)
		c.SetUserContext(utils.WithProfileID(c.UserContext(), id))
		return c.Next()
	}
}

// ID returns the profile id resolved for c, or "".
func ID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalsKey).(string)
	return id
}

// FromContext returns the profile id carried by ctx, or "".
func FromContext(ctx context.Context) string {
	return utils.GetProfileIDOrDefault(ctx, "")
}

func valid(id string) bool {
	if id == "" {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
