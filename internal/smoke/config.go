package smoke

import (
	"time"

	"github.com/okian/examscore/internal/domain/model"
	"github.com/okian/examscore/internal/domain/prediction"
)

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL         string        // Base URL of the service
	NumRequests     int           // Number of valid feature sets to predict
	InvalidRequests int           // Number of out-of-range requests expected to be rejected
	Workers         int           // Number of concurrent workers
	Timeout         time.Duration // HTTP request timeout
	OutputFile      string        // Output file for requests and responses
	LogFile         string        // Log file for run output
	Verbose         bool          // Enable verbose logging
}

// Request is one generated call to POST /predict.
type Request struct {
	ID       string                `json:"id"`
	Valid    bool                  `json:"valid"`
	Features model.StudentFeatures `json:"features"`
}

// Response mirrors the body of a successful POST /predict.
type Response struct {
	PredictionID  string           `json:"prediction_id"`
	SchemaVersion string           `json:"schema_version"`
	RawScore      float64          `json:"raw_score"`
	FinalScore    float64          `json:"final_score"`
	ClassAverage  float64          `json:"class_average"`
	Delta         float64          `json:"delta"`
	Tier          prediction.Tier  `json:"tier"`
	Message       string           `json:"message"`
	Severity      string           `json:"severity"`
	AboveAverage  bool             `json:"above_average"`
	Comparison    []prediction.Bar `json:"comparison"`
}

// ErrorResponse mirrors the API error envelope.
type ErrorResponse struct {
	Code    string             `json:"code"`
	Message string             `json:"message"`
	Fields  []model.FieldError `json:"fields"`
}

// Outcome is the recorded result of one request.
type Outcome struct {
	Request    Request   `json:"request"`
	StatusCode int       `json:"status_code"`
	Response   *Response `json:"response,omitempty"`
	Violations []string  `json:"violations,omitempty"`
	Err        string    `json:"error,omitempty"`
}

// Stats holds run statistics.
type Stats struct {
	RequestsGenerated int
	RequestsSubmitted int
	Predictions       int
	Rejected          int
	Failed            int
	Violations        int
	Tiers             map[prediction.Tier]int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
