package httpx

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "clubportal/internal/shared/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loginBody struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func decode(t *testing.T, app *fiber.App, method, path, body string) (int, ErrorResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	var out ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func newApp(handler fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Post("/", handler)
	return app
}

func TestBind_ReportsFieldsByJSONName(t *testing.T) {
	app := newApp(func(c *fiber.Ctx) error {
		var body loginBody
		if err := Bind(c, &body); err != nil {
			return Error(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	status, out := decode(t, app, "POST", "/", `{"email":"nope"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "bad_request", out.Error)
	require.Len(t, out.Fields, 2)
	assert.Equal(t, "email", out.Fields[0].Field)
	assert.Equal(t, "email must be a valid email address", out.Message)
	assert.Equal(t, "password", out.Fields[1].Field)
}

func TestBind_MalformedBody(t *testing.T) {
	app := newApp(func(c *fiber.Ctx) error {
		var body loginBody
		return Bind(c, &body)
	})
	status, out := decode(t, app, "POST", "/", `{`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Invalid request body", out.Message)
}

func TestError_HidesInternalMessages(t *testing.T) {
	app := newApp(func(c *fiber.Ctx) error {
		return apperrors.NewInternalError("mongo: connection pool exhausted")
	})
	status, out := decode(t, app, "POST", "/", `{}`)
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "Internal Server Error", out.Message)
}

func TestError_UpstreamMessagePassesThrough(t *testing.T) {
	app := newApp(func(c *fiber.Ctx) error {
		return apperrors.NewUpstreamError("Already a member of this club", 409)
	})
	status, out := decode(t, app, "POST", "/", `{}`)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "conflict", out.Error)
	assert.Equal(t, "Already a member of this club", out.Message)
}

func TestError_AuthenticationMessage(t *testing.T) {
	app := newApp(func(c *fiber.Ctx) error {
		return apperrors.NewAuthenticationError("Not signed in")
	})
	status, out := decode(t, app, "POST", "/", `{}`)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Not signed in", out.Message)
}

func TestError_FiberError(t *testing.T) {
	app := newApp(func(c *fiber.Ctx) error {
		return fiber.ErrUpgradeRequired
	})
	status, out := decode(t, app, "POST", "/", `{}`)
	assert.Equal(t, fiber.StatusUpgradeRequired, status)
	assert.Equal(t, "upgrade_required", out.Error)
}

func TestParam_OutlivesRequest(t *testing.T) {
	var kept []string
	app := fiber.New()
	app.Get("/events/:uid", func(c *fiber.Ctx) error {
		kept = append(kept, Param(c, "uid"))
		return c.SendStatus(fiber.StatusNoContent)
	})
	for _, uid := range []string{"event-aaaa", "event-bbbb", "event-cccc"} {
		_, err := app.Test(httptest.NewRequest("GET", "/events/"+uid, nil))
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"event-aaaa", "event-bbbb", "event-cccc"}, kept)
}
