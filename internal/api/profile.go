package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/Shravani-Dhumal/Verifixia/internal/common/errors"
	"github.com/Shravani-Dhumal/Verifixia/internal/models"
)

// SyncProfile pushes profile edits to the backend. Unlike the other calls,
// bearer auth is required here; with no valid session the call is skipped
// entirely and reports success, since the backend profile copy is optional.
func (c *Client) SyncProfile(ctx context.Context, update models.ProfileUpdate) error {
	if c.store == nil || !c.store.Read().Valid(c.now()) {
		return nil
	}

	payload, err := json.Marshal(update)
	if err != nil {
		return errors.NewRequestFailedError(err)
	}

	req, err := http.NewRequest(http.MethodPut, c.url("/api/auth/profile"), bytes.NewReader(payload))
	if err != nil {
		return errors.NewRequestFailedError(err)
	}
	req.Header.Set("Content-Type", "application/json")

	raw, status, err := c.send(ctx, "profile_sync", req)
	if err != nil {
		return err
	}

	if err := decode(raw, status, nil); err != nil {
		c.record(ctx, "profile_sync", "error")
		return err
	}
	c.record(ctx, "profile_sync", "ok")
	return nil
}
