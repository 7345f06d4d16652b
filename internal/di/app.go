package di

import (
	"context"
	"time"

	accesshttp "clubportal/internal/access/adapter/http"
	clubshttp "clubportal/internal/clubs/adapter/http"
	discussionhttp "clubportal/internal/discussion/adapter/http"
	prefshttp "clubportal/internal/preferences/adapter/http"
	"clubportal/internal/realtime"
	sessionhttp "clubportal/internal/session/adapter/http"
	"clubportal/internal/shared/httpx"
	"clubportal/internal/shared/metrics"
	"clubportal/internal/shared/profile"
	"clubportal/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// NewApp builds the fiber application serving every edge route.
func (c *Container) NewApp() *fiber.App {
	cfg := c.Config.Server
	app := fiber.New(fiber.Config{
		AppName:               "clubportal edge",
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		IdleTimeout:           60 * time.Second,
		DisableStartupMessage: true,
		Immutable:             true,
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			c.Logger.WithContext(ctx.UserContext()).Errorf("HTTP error on %s %s: %v", ctx.Method(), ctx.Path(), err)
			return httpx.Error(ctx, err)
		},
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(func(ctx *fiber.Ctx) error {
		if id, ok := ctx.Locals(requestid.ConfigDefault.ContextKey).(string); ok {
			ctx.SetUserContext(utils.WithRequestID(ctx.UserContext(), id))
		}
		return ctx.Next()
	})
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, " + profile.HeaderName,
		AllowCredentials: cfg.AllowOrigins != "*",
	}))
	app.Use(metrics.Middleware())

	app.Get("/health", c.health)
	app.Get("/metrics", metrics.Handler())

	app.Use(profile.New(profile.Config{CookieSecure: cfg.CookieSecure}))

	sessionhttp.NewSessionHTTPHandler(c.Authenticator).RegisterRoutes(app)
	accesshttp.NewAccessHTTPHandler(c.Guard, c.Authenticator, c.Clubs, c.Preferences, c.Logger).RegisterRoutes(app)
	prefshttp.NewPreferencesHTTPHandler(c.Preferences, c.Clubs, c.Sessions).RegisterRoutes(app)
	clubshttp.NewClubsHTTPHandler(c.Clubs, c.Sessions).RegisterRoutes(app)
	discussionhttp.NewDiscussionHTTPHandler(c.Discussion, c.Sessions).RegisterRoutes(app)
	realtime.NewWebSocketHandler(c.Hub, c.Logger).RegisterRoutes(app)

	return app
}

func (c *Container) health(ctx *fiber.Ctx) error {
	checkCtx, cancel := context.WithTimeout(ctx.UserContext(), 5*time.Second)
	defer cancel()

	if err := c.HealthCheck(checkCtx); err != nil {
		c.Logger.Errorf("Health check failed: %v", err)
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "UNHEALTHY",
			"error":  err.Error(),
		})
	}
	return ctx.JSON(fiber.Map{
		"status":    "HEALTHY",
		"storage":   c.Config.Storage.Backend,
		"profiles":  len(c.Sessions.Profiles()),
		"timestamp": time.Now().UTC(),
	})
}
