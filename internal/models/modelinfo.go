package models

import "encoding/json"

// ModelInfo is the metadata payload from /api/model-info. The backend grows
// fields across versions, so anything beyond Status and Message is preserved
// untyped in Extra rather than dropped.
type ModelInfo struct {
	Status  string
	Message string
	Extra   map[string]interface{}
}

// ModelInfoUnavailable is what FetchModelInfo degrades to when the backend
// cannot be reached or answers with an error.
func ModelInfoUnavailable() *ModelInfo {
	return &ModelInfo{
		Status:  "not_loaded",
		Message: "Model information unavailable",
	}
}

func (m *ModelInfo) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if s, ok := raw["status"].(string); ok {
		m.Status = s
	}
	if s, ok := raw["message"].(string); ok {
		m.Message = s
	}
	delete(raw, "status")
	delete(raw, "message")
	if len(raw) > 0 {
		m.Extra = raw
	}
	return nil
}

func (m *ModelInfo) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(m.Extra)+2)
	for k, v := range m.Extra {
		out[k] = v
	}
	if m.Status != "" {
		out["status"] = m.Status
	}
	if m.Message != "" {
		out["message"] = m.Message
	}
	return json.Marshal(out)
}
