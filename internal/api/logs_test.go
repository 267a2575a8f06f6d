package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "github.com/Shravani-Dhumal/Verifixia/internal/common/errors"
	"github.com/Shravani-Dhumal/Verifixia/internal/models"
)

func logEntries(n int) []models.LogEntry {
	entries := make([]models.LogEntry, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, models.LogEntry{
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
			Filename:   "clip.mp4",
			Prediction: "Fake",
			Confidence: 0.91,
		})
	}
	return entries
}

func TestClient_FetchDetectionLogsWrapsBareArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(logEntries(7))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, false, nil)
	page, err := c.FetchDetectionLogs(context.Background(), models.LogQuery{})
	require.NoError(t, err)

	assert.Len(t, page.Items, 7)
	assert.Equal(t, 7, page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 7, page.PageSize)
}

func TestClient_FetchDetectionLogsPassesEnvelopeThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.LogsPage{
			Items:    logEntries(3),
			Total:    42,
			Page:     2,
			PageSize: 3,
		})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, false, nil)
	page, err := c.FetchDetectionLogs(context.Background(), models.LogQuery{Page: 2, PageSize: 3})
	require.NoError(t, err)

	assert.Equal(t, 42, page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Len(t, page.Items, 3)
}

func TestClient_FetchDetectionLogsQueryParams(t *testing.T) {
	tests := []struct {
		name  string
		query models.LogQuery
		want  url.Values
	}{
		{
			name:  "empty query sends no parameters",
			query: models.LogQuery{},
			want:  url.Values{},
		},
		{
			name: "full query sends everything",
			query: models.LogQuery{
				Page:       3,
				PageSize:   50,
				StartDate:  "2026-08-01T00:00:00",
				EndDate:    "2026-08-31T23:59:59",
				SourceType: "live",
			},
			want: url.Values{
				"page":        {"3"},
				"page_size":   {"50"},
				"start_date":  {"2026-08-01T00:00:00"},
				"end_date":    {"2026-08-31T23:59:59"},
				"source_type": {"live"},
			},
		},
		{
			name:  "partial query omits empty values",
			query: models.LogQuery{Page: 1, SourceType: "upload"},
			want:  url.Values{"page": {"1"}, "source_type": {"upload"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got url.Values
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.URL.Query()
				json.NewEncoder(w).Encode([]models.LogEntry{})
			}))
			defer srv.Close()

			c := newTestClient(t, srv.URL, false, nil)
			_, err := c.FetchDetectionLogs(context.Background(), tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_FetchDetectionLogsMockFallback(t *testing.T) {
	c := newTestClient(t, unreachableURL, true, nil)

	page, err := c.FetchDetectionLogs(context.Background(), models.LogQuery{})
	require.NoError(t, err)

	assert.Len(t, page.Items, 12)
	assert.Equal(t, 12, page.Total)
	assert.Equal(t, 1, page.Page)
	for _, entry := range page.Items {
		assert.Contains(t, []string{"Real", "Fake"}, entry.Prediction)
		assert.GreaterOrEqual(t, entry.Confidence, 0.6)
		assert.Less(t, entry.Confidence, 1.0)
	}
}

func TestClient_FetchDetectionLogsNoMockPropagates(t *testing.T) {
	c := newTestClient(t, unreachableURL, false, nil)

	_, err := c.FetchDetectionLogs(context.Background(), models.LogQuery{})
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeInvalidResponse, stderrors.CodeOf(err))
}

// ==========================
// Destructive operations: never mocked
// ==========================

func TestClient_DeleteDetectionLogNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/logs/log-404", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "not found"})
	}))
	defer srv.Close()

	// Mock mode on: destructive operations must still propagate errors.
	c := newTestClient(t, srv.URL, true, nil)
	_, err := c.DeleteDetectionLog(context.Background(), "log-404")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestClient_DeleteDetectionLogSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"deleted": true})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, false, nil)
	body, err := c.DeleteDetectionLog(context.Background(), "log-1")
	require.NoError(t, err)
	assert.Equal(t, true, body["deleted"])
}

func TestClient_ClearDetectionLogs(t *testing.T) {
	var got *url.URL
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL
		assert.Equal(t, http.MethodDelete, r.Method)
		json.NewEncoder(w).Encode(map[string]interface{}{"cleared": float64(9)})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, false, nil)

	body, err := c.ClearDetectionLogs(context.Background(), "live")
	require.NoError(t, err)
	assert.Equal(t, float64(9), body["cleared"])
	assert.Equal(t, "live", got.Query().Get("source_type"))

	_, err = c.ClearDetectionLogs(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, got.RawQuery, "no filter means no query string")
}

func TestClient_ClearDetectionLogsUnreachablePropagates(t *testing.T) {
	c := newTestClient(t, unreachableURL, true, nil)
	_, err := c.ClearDetectionLogs(context.Background(), "")
	require.Error(t, err)
}
