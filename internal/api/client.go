// Package api is the REST client for the inference backend. Every call reads
// the session store fresh to decide whether to attach bearer auth, decodes
// JSON uniformly, and classifies transport failures and error-shaped bodies
// into the same failure class. Selected read paths degrade to mock data when
// fallback mode is explicitly enabled; destructive operations never do.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Shravani-Dhumal/Verifixia/internal/common/config"
	"github.com/Shravani-Dhumal/Verifixia/internal/common/errors"
	"github.com/Shravani-Dhumal/Verifixia/internal/common/httpx"
	"github.com/Shravani-Dhumal/Verifixia/internal/common/logger"
	"github.com/Shravani-Dhumal/Verifixia/internal/common/observability"
	"github.com/Shravani-Dhumal/Verifixia/internal/session"
)

// Client is stateless between calls; its only cross-cutting dependency is
// "does a valid session currently exist", answered by the store per request.
type Client struct {
	baseURL string
	http    *httpx.Client
	store   session.Store
	mock    bool
	log     logger.Logger
	obs     *observability.Observability
	now     func() time.Time
}

func NewClient(cfg config.BackendConfig, store session.Store, obs *observability.Observability, log logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		http:    httpx.NewClient(cfg.RequestTimeout()),
		store:   store,
		mock:    cfg.MockFallback,
		log:     log.WithFields(map[string]interface{}{"component": "api-client"}),
		obs:     obs,
		now:     time.Now,
	}
}

// MockMode reports whether failed read calls substitute synthesized data.
func (c *Client) MockMode() bool { return c.mock }

func (c *Client) url(path string) string {
	return c.baseURL + path
}

// authorize attaches the bearer header when a valid session exists. The
// header is omitted entirely otherwise; a stale token is never sent.
func (c *Client) authorize(req *http.Request) {
	if c.store == nil {
		return
	}
	for k, vs := range BuildHeaders(c.store.Read(), c.now()) {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}
}

// send executes the request and returns the raw body plus status. Transport
// failures and unreadable bodies surface as invalid-response errors.
func (c *Client) send(ctx context.Context, operation string, req *http.Request) ([]byte, int, error) {
	c.authorize(req)

	start := c.now()
	resp, err := c.http.DoWithContext(ctx, req)
	elapsed := c.now().Sub(start)

	if c.obs != nil {
		c.obs.RecordDuration(ctx, operation, elapsed)
	}

	if err != nil {
		c.record(ctx, operation, "transport_error")
		return nil, 0, errors.NewInvalidResponseError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.record(ctx, operation, "transport_error")
		return nil, resp.StatusCode, errors.NewInvalidResponseError(err)
	}

	return raw, resp.StatusCode, nil
}

// decode applies the uniform response contract: non-JSON bodies are invalid
// responses, bodies carrying an "error" field are backend errors regardless
// of status, bare non-2xx statuses are backend errors, and only then is the
// body unmarshaled into the target (nil target skips that step).
func decode(raw []byte, status int, target interface{}) error {
	if !json.Valid(raw) {
		return errors.NewInvalidResponseError(fmt.Errorf("body is not valid JSON"))
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err == nil {
		if msg, found := errorField(probe); found {
			return errors.NewBackendError(status, msg)
		}
	}

	if status < 200 || status >= 300 {
		return errors.NewBackendError(status, "")
	}

	if target == nil {
		return nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return errors.NewInvalidResponseError(err)
	}
	return nil
}

// errorField reports whether the body carries a meaningful "error" member
// and extracts its message when it is a plain string. Null and empty-string
// members do not count as errors.
func errorField(probe map[string]json.RawMessage) (string, bool) {
	rawErr, ok := probe["error"]
	if !ok || string(rawErr) == "null" {
		return "", false
	}
	var msg string
	if err := json.Unmarshal(rawErr, &msg); err == nil {
		return msg, msg != ""
	}
	return "", true
}

func (c *Client) record(ctx context.Context, operation, status string) {
	if c.obs != nil {
		c.obs.RecordRequest(ctx, operation, status)
	}
}

// getJSON is the shared GET-and-decode path.
func (c *Client) getJSON(ctx context.Context, operation, url string, target interface{}) error {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return errors.NewRequestFailedError(err)
	}

	raw, status, err := c.send(ctx, operation, req)
	if err != nil {
		return err
	}

	if err := decode(raw, status, target); err != nil {
		c.record(ctx, operation, "error")
		return err
	}
	c.record(ctx, operation, "ok")
	return nil
}
