package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Shravani-Dhumal/Verifixia/internal/common/errors"
	"github.com/Shravani-Dhumal/Verifixia/internal/models"
)

// FetchDetectionLogs lists forensic logs matching the query. Two backend
// response generations are normalized into one envelope: a bare array (legacy)
// wraps as a single full page, a paginated object passes through. Failure
// substitutes a mock page only when fallback mode is enabled.
func (c *Client) FetchDetectionLogs(ctx context.Context, q models.LogQuery) (*models.LogsPage, error) {
	page, err := c.fetchDetectionLogs(ctx, q)
	if err == nil {
		return page, nil
	}

	if !c.mock {
		return nil, err
	}

	c.log.Warn("fetching detection logs failed, substituting mock page", map[string]interface{}{
		"error": err.Error(),
	})
	if c.obs != nil {
		c.obs.RecordFallback(ctx, "logs_list")
	}
	return MockLogsPage(c.now()), nil
}

func (c *Client) fetchDetectionLogs(ctx context.Context, q models.LogQuery) (*models.LogsPage, error) {
	u := c.url("/api/logs")
	if params := logQueryValues(q); len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.NewRequestFailedError(err)
	}

	raw, status, err := c.send(ctx, "logs_list", req)
	if err != nil {
		return nil, err
	}

	page, err := decodeLogsBody(raw, status)
	if err != nil {
		c.record(ctx, "logs_list", "error")
		return nil, err
	}
	c.record(ctx, "logs_list", "ok")
	return page, nil
}

// logQueryValues builds the query string, omitting every empty or zero
// parameter so the backend's defaults apply.
func logQueryValues(q models.LogQuery) url.Values {
	params := url.Values{}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		params.Set("page_size", strconv.Itoa(q.PageSize))
	}
	if q.StartDate != "" {
		params.Set("start_date", q.StartDate)
	}
	if q.EndDate != "" {
		params.Set("end_date", q.EndDate)
	}
	if q.SourceType != "" {
		params.Set("source_type", q.SourceType)
	}
	return params
}

func decodeLogsBody(raw []byte, status int) (*models.LogsPage, error) {
	// Legacy backends answer with a bare array; wrap it as one full page.
	var items []models.LogEntry
	if err := json.Unmarshal(raw, &items); err == nil {
		return &models.LogsPage{
			Items:    items,
			Total:    len(items),
			Page:     1,
			PageSize: len(items),
		}, nil
	}

	var page models.LogsPage
	if err := decode(raw, status, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// DeleteDetectionLog removes one log by id. Destructive, so there is no mock
// fallback: every failure propagates.
func (c *Client) DeleteDetectionLog(ctx context.Context, logID string) (map[string]interface{}, error) {
	req, err := http.NewRequest(http.MethodDelete, c.url("/api/logs/"+url.PathEscape(logID)), nil)
	if err != nil {
		return nil, errors.NewRequestFailedError(err)
	}
	return c.sendDelete(ctx, "logs_delete", req)
}

// ClearDetectionLogs bulk-deletes logs, optionally restricted to one source
// type. Same propagate-on-error contract as DeleteDetectionLog.
func (c *Client) ClearDetectionLogs(ctx context.Context, sourceType string) (map[string]interface{}, error) {
	u := c.url("/api/logs")
	if sourceType != "" {
		params := url.Values{}
		params.Set("source_type", sourceType)
		u += "?" + params.Encode()
	}

	req, err := http.NewRequest(http.MethodDelete, u, nil)
	if err != nil {
		return nil, errors.NewRequestFailedError(err)
	}
	return c.sendDelete(ctx, "logs_clear", req)
}

func (c *Client) sendDelete(ctx context.Context, operation string, req *http.Request) (map[string]interface{}, error) {
	raw, status, err := c.send(ctx, operation, req)
	if err != nil {
		return nil, err
	}

	var body map[string]interface{}
	if err := decode(raw, status, &body); err != nil {
		c.record(ctx, operation, "error")
		return nil, err
	}
	c.record(ctx, operation, "ok")
	return body, nil
}
