package models

// LogEntry is one persisted detection event as the backend reports it. The
// client passes these through without mutation or validation.
type LogEntry struct {
	Timestamp    string  `json:"timestamp"`
	Filename     string  `json:"filename"`
	Prediction   string  `json:"prediction"`
	Confidence   float64 `json:"confidence"`
	ID           string  `json:"id,omitempty"`
	SessionID    string  `json:"session_id,omitempty"`
	SourceType   string  `json:"source_type,omitempty"`
	ModelVersion string  `json:"model_version,omitempty"`
	LatencyMS    float64 `json:"latency_ms,omitempty"`
}

// LogsPage is the paginated envelope for detection logs. Legacy backends
// return a bare array instead; the API client wraps those into this shape.
type LogsPage struct {
	Items    []LogEntry `json:"items"`
	Total    int        `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
}

// LogQuery holds the filter parameters for a detection-log listing. Zero
// values are omitted from the outgoing query string.
type LogQuery struct {
	Page       int
	PageSize   int
	StartDate  string
	EndDate    string
	SourceType string
}

// ProcessingTime breaks down where the backend spent its inference time.
type ProcessingTime struct {
	PreprocessingMS float64 `json:"preprocessing_ms"`
	InferenceMS     float64 `json:"inference_ms"`
	TotalMS         float64 `json:"total_ms"`
}

// Analysis is the backend's human-readable verdict summary.
type Analysis struct {
	Level          string `json:"level"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation"`
}

// ModelDetails describes the model that produced a result.
type ModelDetails struct {
	Architecture string `json:"architecture"`
	InputSize    string `json:"input_size"`
	Framework    string `json:"framework"`
	Device       string `json:"device"`
}

// UploadResult is the backend's full response to an analysis request.
// Entirely backend-defined; the client either passes it through unchanged or
// synthesizes a structurally identical mock when fallback mode is on.
type UploadResult struct {
	Prediction     string         `json:"prediction"`
	Confidence     float64        `json:"confidence"`
	Filename       string         `json:"filename"`
	IsVideo        bool           `json:"isVideo"`
	ThreatLevel    string         `json:"threat_level"`
	ModelUsed      string         `json:"model_used"`
	ProcessingTime ProcessingTime `json:"processing_time"`
	Analysis       Analysis       `json:"analysis"`
	ModelInfo      ModelDetails   `json:"model_info"`
	FileURL        string         `json:"file_url,omitempty"`
}

// LiveEvent is one live-monitoring telemetry record posted to the backend.
type LiveEvent struct {
	SessionID   string  `json:"session_id"`
	Source      string  `json:"source"`
	Event       string  `json:"event"`
	Prediction  string  `json:"prediction,omitempty"`
	ThreatLevel string  `json:"threat_level,omitempty"`
	Confidence  float64 `json:"confidence,omitempty"`
	LatencyMS   float64 `json:"latency_ms,omitempty"`
	Message     string  `json:"message,omitempty"`
}

// ProfileUpdate is the best-effort profile sync payload sent after a
// successful sign-in or sign-up.
type ProfileUpdate struct {
	DisplayName *string `json:"display_name"`
}

// HealthStatus is the backend liveness payload from /api/health.
type HealthStatus struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
	Version     string `json:"version,omitempty"`
}
