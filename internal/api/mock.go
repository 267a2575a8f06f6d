package api

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/Shravani-Dhumal/Verifixia/internal/models"
)

// Mock fallbacks keep the product usable while the backend is down. They are
// only reachable when fallback mode is explicitly enabled in config.

// MockUploadResult synthesizes an analysis result: an even Real/Fake split,
// confidence in [70,100), and a threat level consistent with the real
// thresholds.
func MockUploadResult(filename string) *models.UploadResult {
	if filename == "" {
		filename = "mock_upload.jpg"
	}

	prediction := "Real"
	if rand.Float64() > 0.5 {
		prediction = "Fake"
	}
	confidence := 70 + rand.Float64()*30

	preprocessing := 10 + rand.Float64()*20
	inference := 50 + rand.Float64()*100

	return &models.UploadResult{
		Prediction:  prediction,
		Confidence:  confidence,
		Filename:    filename,
		IsVideo:     false,
		ThreatLevel: models.ThreatLevelFor(confidence),
		ModelUsed:   "Mock Model (Backend Unavailable)",
		ProcessingTime: models.ProcessingTime{
			PreprocessingMS: preprocessing,
			InferenceMS:     inference,
			TotalMS:         preprocessing + inference,
		},
		Analysis: models.Analysis{
			Level:          "Mock",
			Description:    "Backend unavailable. Using mock prediction.",
			Recommendation: "Please ensure backend server is running for accurate results.",
		},
		ModelInfo: models.ModelDetails{
			Architecture: "N/A",
			InputSize:    "N/A",
			Framework:    "Mock",
			Device:       "cpu",
		},
	}
}

// MockLogsPage synthesizes a dozen recent detection events, five minutes
// apart, with fractional confidence the way the logs endpoint reports it.
func MockLogsPage(now time.Time) *models.LogsPage {
	items := make([]models.LogEntry, 0, 12)
	for i := 0; i < 12; i++ {
		prediction := "Real"
		if rand.Float64() > 0.6 {
			prediction = "Fake"
		}

		items = append(items, models.LogEntry{
			ID:         uuid.NewString(),
			Timestamp:  now.Add(-time.Duration(i) * 5 * time.Minute).UTC().Format(time.RFC3339),
			Filename:   fmt.Sprintf("mock_upload_%03d.jpg", i+1),
			Prediction: prediction,
			Confidence: 0.6 + rand.Float64()*0.35,
			SourceType: "upload",
		})
	}

	return &models.LogsPage{
		Items:    items,
		Total:    len(items),
		Page:     1,
		PageSize: len(items),
	}
}
