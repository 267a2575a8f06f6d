package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shravani-Dhumal/Verifixia/internal/models"
)

func TestClient_UploadImagePassThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))

		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()

		content, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "fake image bytes", string(content))
		assert.Equal(t, "selfie.jpg", header.Filename)

		json.NewEncoder(w).Encode(models.UploadResult{
			Prediction:  "Fake",
			Confidence:  96.4,
			Filename:    "selfie.jpg",
			ThreatLevel: "high",
			ModelUsed:   "EfficientNet-B4 v2.1",
			ProcessingTime: models.ProcessingTime{
				PreprocessingMS: 12.5,
				InferenceMS:     87.2,
				TotalMS:         99.7,
			},
			Analysis: models.Analysis{
				Level:          "Critical",
				Description:    "High-confidence manipulation detected.",
				Recommendation: "Quarantine this media.",
			},
		})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, false, nil)
	result, err := c.UploadImage(context.Background(), strings.NewReader("fake image bytes"), "selfie.jpg")
	require.NoError(t, err)

	assert.Equal(t, "Fake", result.Prediction)
	assert.Equal(t, 96.4, result.Confidence)
	assert.Equal(t, "high", result.ThreatLevel)
	assert.Equal(t, 99.7, result.ProcessingTime.TotalMS)
	assert.Equal(t, "Quarantine this media.", result.Analysis.Recommendation)
}

func TestClient_UploadImageBackendErrorPropagatesWithoutMock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "inference pipeline crashed"})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, false, nil)
	_, err := c.UploadImage(context.Background(), strings.NewReader("x"), "a.jpg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inference pipeline crashed")
}

func TestClient_UploadImageMockFallback(t *testing.T) {
	c := newTestClient(t, unreachableURL, true, nil)

	// Randomized output: exercise the generator enough times to catch a
	// threshold inconsistency.
	for i := 0; i < 50; i++ {
		result, err := c.UploadImage(context.Background(), strings.NewReader("x"), "clip.mp4")
		require.NoError(t, err)

		assert.Contains(t, []string{"Real", "Fake"}, result.Prediction)
		assert.GreaterOrEqual(t, result.Confidence, 70.0)
		assert.LessOrEqual(t, result.Confidence, 100.0)
		assert.Equal(t, models.ThreatLevelFor(result.Confidence), result.ThreatLevel)
		assert.Equal(t, "clip.mp4", result.Filename)
		assert.Equal(t, "Mock Model (Backend Unavailable)", result.ModelUsed)
		assert.Greater(t, result.ProcessingTime.TotalMS, 0.0)
	}
}

func TestClient_UploadImageNoMockPropagates(t *testing.T) {
	c := newTestClient(t, unreachableURL, false, nil)
	_, err := c.UploadImage(context.Background(), strings.NewReader("x"), "a.jpg")
	require.Error(t, err)
}

func TestClient_NonJSONBodyIsInvalidResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway timeout</html>"))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, false, nil)
	_, err := c.UploadImage(context.Background(), strings.NewReader("x"), "a.jpg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid response")
}
