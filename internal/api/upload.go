package api

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/Shravani-Dhumal/Verifixia/internal/common/errors"
	"github.com/Shravani-Dhumal/Verifixia/internal/models"
)

// UploadImage submits one media file for analysis and returns the backend's
// full result untouched. When the backend is unreachable and mock fallback is
// enabled, a synthesized result is returned instead so callers keep working;
// with fallback disabled, the failure propagates.
func (c *Client) UploadImage(ctx context.Context, file io.Reader, filename string) (*models.UploadResult, error) {
	result, err := c.uploadImage(ctx, file, filename)
	if err == nil {
		return result, nil
	}

	if !c.mock {
		return nil, err
	}

	c.log.Warn("upload failed, substituting mock result", map[string]interface{}{
		"filename": filename,
		"error":    err.Error(),
	})
	if c.obs != nil {
		c.obs.RecordFallback(ctx, "upload")
	}
	return MockUploadResult(filename), nil
}

func (c *Client) uploadImage(ctx context.Context, file io.Reader, filename string) (*models.UploadResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		return nil, errors.NewRequestFailedError(err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, errors.NewRequestFailedError(err)
	}
	if err := writer.Close(); err != nil {
		return nil, errors.NewRequestFailedError(err)
	}

	req, err := http.NewRequest(http.MethodPost, c.url("/api/upload"), &body)
	if err != nil {
		return nil, errors.NewRequestFailedError(err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	raw, status, err := c.send(ctx, "upload", req)
	if err != nil {
		return nil, err
	}

	var result models.UploadResult
	if err := decode(raw, status, &result); err != nil {
		c.record(ctx, "upload", "error")
		return nil, err
	}

	c.record(ctx, "upload", "ok")
	return &result, nil
}

// FetchModelInfo returns current model metadata. This call never fails its
// caller: any transport or backend error degrades to the fixed placeholder.
func (c *Client) FetchModelInfo(ctx context.Context) *models.ModelInfo {
	var info models.ModelInfo
	if err := c.getJSON(ctx, "model_info", c.url("/api/model-info"), &info); err != nil {
		c.log.Warn("fetching model info failed", map[string]interface{}{
			"error": err.Error(),
		})
		return models.ModelInfoUnavailable()
	}
	return &info
}

// FetchHealth probes backend liveness.
func (c *Client) FetchHealth(ctx context.Context) (*models.HealthStatus, error) {
	var health models.HealthStatus
	if err := c.getJSON(ctx, "health", c.url("/api/health"), &health); err != nil {
		return nil, err
	}
	return &health, nil
}
