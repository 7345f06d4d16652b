// Package portalapi is the client for the external club REST API.
package portalapi

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	apperrors "clubportal/internal/shared/errors"
	"clubportal/internal/shared/logger"
	"clubportal/internal/shared/metrics"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultUserAgent = "clubportal-edge/1.0"
)

// Options configures a Client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	MaxConns  int
	UserAgent string
	// Dial overrides connection setup, mostly for in-memory tests.
	Dial fasthttp.DialFunc
}

// Client calls the club API. Every call takes the caller's bearer token explicitly;
// the client holds no session state.
type Client struct {
	http      *fasthttp.Client
	baseURL   string
	timeout   time.Duration
	userAgent string
	log       logger.Logger
}

// NewClient creates a client for opts.BaseURL.
func NewClient(opts Options, log logger.Logger) (*Client, error) {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		return nil, fmt.Errorf("portal API base URL is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Client{
		http: &fasthttp.Client{
			Name:            opts.UserAgent,
			MaxConnsPerHost: opts.MaxConns,
			ReadTimeout:     opts.Timeout,
			WriteTimeout:    opts.Timeout,
			Dial:            opts.Dial,
		},
		baseURL:   base,
		timeout:   opts.Timeout,
		userAgent: opts.UserAgent,
		log:       log.WithComponent("portalapi"),
	}, nil
}

// call describes one request. endpoint is the route template used for metrics.
type call struct {
	method   string
	endpoint string
	path     string
	token    string
	body     interface{}
}

// errorBody covers the error shapes the API emits.
type errorBody struct {
	Msg     string `json:"msg"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *Client) do(ctx context.Context, cl call, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewUpstreamError("request cancelled", 0).WithCause(err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + cl.path)
	req.Header.SetMethod(cl.method)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	req.Header.SetUserAgent(c.userAgent)
	if cl.token != "" {
		req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+cl.token)
	}
	if cl.body != nil {
		data, err := json.Marshal(cl.body)
		if err != nil {
			return apperrors.NewInternalError("failed to encode request").WithCause(err)
		}
		req.Header.SetContentType("application/json")
		req.SetBodyRaw(data)
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	start := time.Now()
	err := c.http.DoDeadline(req, resp, deadline)
	metrics.RecordUpstreamCall(cl.method, cl.endpoint, err)
	if err != nil {
		c.log.WithFields(map[string]interface{}{
			"method":   cl.method,
			"endpoint": cl.endpoint,
		}).Warnf("Club API unreachable: %v", err)
		return apperrors.NewUpstreamError("Network error, please try again", 0).
			WithDetail(apperrors.DetailGenericMessage, true).
			WithCause(err)
	}

	status := resp.StatusCode()
	c.log.WithFields(map[string]interface{}{
		"method":      cl.method,
		"endpoint":    cl.endpoint,
		"status":      status,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("Club API call")

	if status >= 400 {
		return parseError(status, resp.Body())
	}
	if out == nil {
		return nil
	}
	body := resp.Body()
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return apperrors.NewUpstreamError("Unexpected response from server", status).WithCause(err)
	}
	return nil
}

// parseError turns a non-2xx response into an upstream AppError carrying the API's
// user-facing message.
func parseError(status int, body []byte) error {
	var eb errorBody
	msg := ""
	if json.Unmarshal(body, &eb) == nil {
		switch {
		case eb.Msg != "":
			msg = eb.Msg
		case eb.Message != "":
			msg = eb.Message
		case eb.Error != "":
			msg = eb.Error
		}
	}
	if msg == "" {
		return apperrors.NewUpstreamError(fmt.Sprintf("Request failed with status %d", status), status).
			WithDetail(apperrors.DetailGenericMessage, true)
	}
	return apperrors.NewUpstreamError(msg, status)
}

func (c *Client) get(ctx context.Context, endpoint, path, token string, out interface{}) error {
	return c.do(ctx, call{method: fasthttp.MethodGet, endpoint: endpoint, path: path, token: token}, out)
}

func (c *Client) post(ctx context.Context, endpoint, path, token string, body, out interface{}) error {
	return c.do(ctx, call{method: fasthttp.MethodPost, endpoint: endpoint, path: path, token: token, body: body}, out)
}

// Close releases idle connections.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}
