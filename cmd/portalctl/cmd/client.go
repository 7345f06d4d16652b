package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"clubportal/internal/shared/httpx"
	"clubportal/internal/shared/profile"

	"github.com/valyala/fasthttp"
)

const requestTimeout = 15 * time.Second

// edgeClient talks to the edge on behalf of one profile.
type edgeClient struct {
	http    *fasthttp.Client
	base    string
	profile string
}

func newEdgeClient(base, profileID string) *edgeClient {
	return &edgeClient{
		http:    &fasthttp.Client{Name: "portalctl"},
		base:    strings.TrimRight(base, "/"),
		profile: profileID,
	}
}

// EdgeError is a non-2xx reply from the edge.
type EdgeError struct {
	Status  int
	Code    string
	Message string
}

func (e *EdgeError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("edge returned %d", e.Status)
	}
	return e.Message
}

// IsUnauthorized reports whether err is a 401 from the edge.
func IsUnauthorized(err error) bool {
	var ee *EdgeError
	return errors.As(err, &ee) && ee.Status == http.StatusUnauthorized
}

func (c *edgeClient) call(method, path string, body, out interface{}) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.base + path)
	req.Header.SetMethod(method)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	req.Header.Set(profile.HeaderName, c.profile)
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		req.Header.SetContentType("application/json")
		req.SetBodyRaw(data)
	}

	if err := c.http.DoTimeout(req, resp, requestTimeout); err != nil {
		return fmt.Errorf("edge unreachable at %s: %w", c.base, err)
	}

	status := resp.StatusCode()
	if status >= 400 {
		var er httpx.ErrorResponse
		_ = json.Unmarshal(resp.Body(), &er)
		return &EdgeError{Status: status, Code: er.Error, Message: er.Message}
	}
	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("unexpected reply from edge: %w", err)
	}
	return nil
}

// websocketURL maps the edge base URL onto the ws scheme.
func (c *edgeClient) websocketURL(path string) string {
	switch {
	case strings.HasPrefix(c.base, "https://"):
		return "wss://" + strings.TrimPrefix(c.base, "https://") + path
	case strings.HasPrefix(c.base, "http://"):
		return "ws://" + strings.TrimPrefix(c.base, "http://") + path
	default:
		return c.base + path
	}
}
