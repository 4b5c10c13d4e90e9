package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/okian/examscore/internal/domain/model"
	"github.com/okian/examscore/internal/domain/prediction"
)

// maxPredictBody bounds the request body of POST /predict.
const maxPredictBody = 1 << 16

// predictRequest mirrors the OpenAPI schema for POST /predict. Numbers are
// pointers so a missing field is told apart from an explicit 0.
type predictRequest struct {
	Attendance          *int   `json:"attendance" validate:"required"`
	HoursStudied        *int   `json:"hours_studied" validate:"required"`
	PreviousScores      *int   `json:"previous_scores" validate:"required"`
	TutoringSessions    *int   `json:"tutoring_sessions" validate:"required"`
	PhysicalActivity    *int   `json:"physical_activity" validate:"required"`
	SleepHours          *int   `json:"sleep_hours" validate:"required"`
	AccessToResources   string `json:"access_to_resources" validate:"required"`
	ParentalInvolvement string `json:"parental_involvement" validate:"required"`
}

// features converts a complete request, normalizing level case. Unknown
// levels are passed through untouched so validation reports them.
func (r predictRequest) features() model.StudentFeatures {
	level := func(s string) model.Level {
		if l, err := model.ParseLevel(s); err == nil {
			return l
		}
		return model.Level(s)
	}
	return model.StudentFeatures{
		Attendance:          *r.Attendance,
		HoursStudied:        *r.HoursStudied,
		PreviousScores:      *r.PreviousScores,
		TutoringSessions:    *r.TutoringSessions,
		PhysicalActivity:    *r.PhysicalActivity,
		SleepHours:          *r.SleepHours,
		AccessToResources:   level(r.AccessToResources),
		ParentalInvolvement: level(r.ParentalInvolvement),
	}
}

// predictResponse is the rendered prediction.
type predictResponse struct {
	PredictionID  string `json:"prediction_id"`
	SchemaVersion string `json:"schema_version"`
	prediction.Result
	Message      string           `json:"message"`
	Severity     string           `json:"severity"`
	AboveAverage bool             `json:"above_average"`
	Comparison   []prediction.Bar `json:"comparison"`
}

// PredictHandler handles prediction requests.
type PredictHandler struct {
	deps Dependencies
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(deps Dependencies) *PredictHandler {
	return &PredictHandler{deps: deps}
}

// HandlePredict handles POST /predict requests.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict"
	if r.Method != http.MethodPost {
		methodNotAllowed(w, op, http.MethodPost)
		return
	}

	var req predictRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPredictBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	if err := model.Check(req); err != nil {
		writePredictError(w, fmt.Errorf("%w: %w", prediction.ErrInvalidFeatures, err))
		return
	}

	res, err := h.deps.Predict(r.Context(), req.features())
	if err != nil {
		writePredictError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, predictResponse{
		PredictionID:  uuid.NewString(),
		SchemaVersion: model.SchemaVersion,
		Result:        res,
		Message:       res.Tier.Message(),
		Severity:      res.Tier.Severity(),
		AboveAverage:  res.AboveAverage(),
		Comparison:    res.Comparison(),
	})
}

// writePredictError maps prediction error kinds to status codes.
func writePredictError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, prediction.ErrInvalidFeatures):
		resp := errorResponse{Code: "invalid_features", Message: err.Error()}
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			resp.Fields = verr.Fields
		}
		writeJSON(w, http.StatusBadRequest, resp)
	case errors.Is(err, prediction.ErrModelUnavailable):
		writeError(w, http.StatusServiceUnavailable, "model_unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "inference_failure", err)
	}
}
