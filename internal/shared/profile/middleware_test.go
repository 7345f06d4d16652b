package profile

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp() *fiber.App {
	app := fiber.New()
	app.Use(New(Config{}))
	app.Get("/", func(c *fiber.Ctx) error {
		if FromContext(c.UserContext()) != ID(c) {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.SendString(ID(c))
	})
	return app
}

func body(t *testing.T, app *fiber.App, req *profileRequest) (string, []string) {
	t.Helper()
	resp, err := app.Test(req.build())
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b), resp.Header.Values("Set-Cookie")
}

type profileRequest struct {
	cookie string
	header string
}

func (r *profileRequest) build() *http.Request {
	req := httptest.NewRequest("GET", "/", nil)
	if r.cookie != "" {
		req.Header.Set("Cookie", CookieName+"="+r.cookie)
	}
	if r.header != "" {
		req.Header.Set(HeaderName, r.header)
	}
	return req
}

func TestMiddleware_MintsProfile(t *testing.T) {
	id, cookies := body(t, newApp(), &profileRequest{})
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
	require.Len(t, cookies, 1)
	assert.Contains(t, cookies[0], CookieName+"="+id)
	assert.Contains(t, cookies[0], "HttpOnly")
}

func TestMiddleware_KeepsCookieProfile(t *testing.T) {
	existing := uuid.NewString()
	id, cookies := body(t, newApp(), &profileRequest{cookie: existing})
	assert.Equal(t, existing, id)
	assert.Empty(t, cookies)
}

func TestMiddleware_HeaderWinsOverCookie(t *testing.T) {
	fromHeader := uuid.NewString()
	id, _ := body(t, newApp(), &profileRequest{cookie: uuid.NewString(), header: fromHeader})
	assert.Equal(t, fromHeader, id)
}

func TestMiddleware_ReplacesInvalidProfile(t *testing.T) {
	id, cookies := body(t, newApp(), &profileRequest{cookie: "../../etc"})
	assert.NotEqual(t, "../../etc", id)
	assert.Len(t, cookies, 1)
}

func TestMiddleware_IDOutlivesRequest(t *testing.T) {
	var seen []string
	app := fiber.New()
	app.Use(New(Config{}))
	app.Get("/", func(c *fiber.Ctx) error {
		seen = append(seen, ID(c))
		return c.SendStatus(fiber.StatusNoContent)
	})

	var sent []string
	for i := 0; i < 5; i++ {
		id := uuid.NewString()
		sent = append(sent, id)
		req := (&profileRequest{header: id}).build()
		if i%2 == 1 {
			req = (&profileRequest{cookie: id}).build()
		}
		_, err := app.Test(req)
		require.NoError(t, err)
	}
	assert.Equal(t, sent, seen)
}
