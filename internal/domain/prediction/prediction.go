// Package prediction turns student features into a bounded, rounded and
// classified exam score using an injected regression model.
package prediction

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/okian/examscore/internal/domain/model"
)

// Score bounds and the fixed comparison reference.
const (
	MinScore     = 0.0
	MaxScore     = 100.0
	ClassAverage = 67.2
)

// Regressor is a loaded, read-only model. Predict receives tabular rows and
// returns one value per row. Implementations must be safe for concurrent use.
type Regressor interface {
	Predict(ctx context.Context, rows []model.Row) ([]float64, error)
}

// RegressorFunc adapts a function to Regressor.
type RegressorFunc func(ctx context.Context, rows []model.Row) ([]float64, error)

// Predict calls f.
func (f RegressorFunc) Predict(ctx context.Context, rows []model.Row) ([]float64, error) {
	return f(ctx, rows)
}

// Bar is one entry of the student vs class comparison chart.
type Bar struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Result is the post-processed prediction.
type Result struct {
	RawScore     float64 `json:"raw_score"`
	FinalScore   float64 `json:"final_score"`
	ClassAverage float64 `json:"class_average"`
	Delta        float64 `json:"delta"`
	Tier         Tier    `json:"tier"`
}

// AboveAverage reports whether the student scores at or above the class average.
func (r Result) AboveAverage() bool { return r.FinalScore >= r.ClassAverage }

// Clamped reports whether the raw output fell outside [MinScore, MaxScore].
func (r Result) Clamped() bool { return r.RawScore < MinScore || r.RawScore > MaxScore }

// Comparison returns the two chart bars: student first, class average second.
func (r Result) Comparison() []Bar {
	return []Bar{
		{Label: "Student", Value: r.FinalScore},
		{Label: "Class Average", Value: r.ClassAverage},
	}
}

// Service runs single-row inference and post-processes the output.
// It holds no mutable state; one instance may serve concurrent callers.
type Service struct {
	regressor Regressor
}

// NewService wraps a loaded regressor.
func NewService(r Regressor) *Service {
	return &Service{regressor: r}
}

// Predict validates f, runs the model on its row and returns the result.
// Errors wrap ErrInvalidFeatures or ErrInferenceFailure.
func (s *Service) Predict(ctx context.Context, f model.StudentFeatures) (Result, error) {
	if s == nil || s.regressor == nil {
		return Result{}, ErrModelUnavailable
	}
	if err := f.Validate(); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrInvalidFeatures, err)
	}

	out, err := s.regressor.Predict(ctx, []model.Row{f.Row()})
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrInferenceFailure, err)
	}
	if len(out) == 0 {
		return Result{}, fmt.Errorf("%w: model returned no output", ErrInferenceFailure)
	}
	raw := out[0]
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return Result{}, fmt.Errorf("%w: model returned non-finite value %v", ErrInferenceFailure, raw)
	}

	return PostProcess(raw), nil
}

// PostProcess clamps, rounds and classifies a raw model output.
func PostProcess(raw float64) Result {
	final := Round1(Clamp(raw))
	return Result{
		RawScore:     raw,
		FinalScore:   final,
		ClassAverage: ClassAverage,
		Delta:        Round1(final - ClassAverage),
		Tier:         Classify(final),
	}
}

// Clamp bounds v to [MinScore, MaxScore].
func Clamp(v float64) float64 {
	return math.Max(MinScore, math.Min(MaxScore, v))
}

// Round1 rounds v to one decimal place, halves away from zero.
func Round1(v float64) float64 {
	r := math.Round(v*10) / 10
	if r == 0 {
		// Avoid rendering -0.0.
		return 0
	}
	return r
}

// IsRecoverable reports whether err leaves the service usable for later calls.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrInvalidFeatures) || errors.Is(err, ErrInferenceFailure)
}
