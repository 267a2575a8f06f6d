package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/Shravani-Dhumal/Verifixia/internal/common/errors"
	"github.com/Shravani-Dhumal/Verifixia/internal/models"
)

// liveEventSchema guards the telemetry endpoint: malformed events are
// rejected locally instead of polluting the forensic record.
const liveEventSchema = `{
	"type": "object",
	"required": ["session_id", "source", "event"],
	"properties": {
		"session_id":   {"type": "string", "minLength": 1},
		"source":       {"type": "string", "minLength": 1},
		"event":        {"type": "string", "minLength": 1},
		"prediction":   {"type": "string"},
		"threat_level": {"type": "string", "enum": ["low", "medium", "high"]},
		"confidence":   {"type": "number", "minimum": 0, "maximum": 100},
		"latency_ms":   {"type": "number", "minimum": 0},
		"message":      {"type": "string"}
	}
}`

var liveEventSchemaLoader = gojsonschema.NewStringLoader(liveEventSchema)

// LogLiveEvent persists one live-monitoring telemetry event. Errors always
// propagate; callers choosing fire-and-forget do so at the call site.
func (c *Client) LogLiveEvent(ctx context.Context, ev models.LiveEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return errors.NewRequestFailedError(err)
	}

	if err := validateLiveEvent(payload); err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, c.url("/api/live-events"), bytes.NewReader(payload))
	if err != nil {
		return errors.NewRequestFailedError(err)
	}
	req.Header.Set("Content-Type", "application/json")

	raw, status, err := c.send(ctx, "live_event", req)
	if err != nil {
		return err
	}

	if err := decode(raw, status, nil); err != nil {
		c.record(ctx, "live_event", "error")
		return err
	}
	c.record(ctx, "live_event", "ok")
	return nil
}

func validateLiveEvent(payload []byte) error {
	result, err := gojsonschema.Validate(liveEventSchemaLoader, gojsonschema.NewStringLoader(string(payload)))
	if err != nil {
		return errors.NewValidationFailedError(err.Error())
	}
	if result.Valid() {
		return nil
	}

	details := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		details = append(details, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
	}
	return errors.NewValidationFailedError(strings.Join(details, "; "))
}
