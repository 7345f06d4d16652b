package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordReconciliation(t *testing.T) {
	before := testutil.ToFloat64(reconciliationsTotal.WithLabelValues("reply", "target_missing"))
	RecordReconciliation("reply", false)
	after := testutil.ToFloat64(reconciliationsTotal.WithLabelValues("reply", "target_missing"))
	assert.Equal(t, before+1, after)
}

func TestRecordUpstreamCall(t *testing.T) {
	before := testutil.ToFloat64(upstreamCallsTotal.WithLabelValues("GET", "/auth/me", "error"))
	RecordUpstreamCall("GET", "/auth/me", errors.New("boom"))
	assert.Equal(t, before+1, testutil.ToFloat64(upstreamCallsTotal.WithLabelValues("GET", "/auth/me", "error")))
}

func TestSessionGauge(t *testing.T) {
	before := testutil.ToFloat64(activeSessions)
	AdjustActiveSessions(1)
	assert.Equal(t, before+1, testutil.ToFloat64(activeSessions))
	AdjustActiveSessions(-1)
	assert.Equal(t, before, testutil.ToFloat64(activeSessions))
}

func TestHandlerServesExposition(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware())
	app.Get("/metrics", Handler())
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })

	_, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, string(body), "clubportal_http_requests_total")
}
