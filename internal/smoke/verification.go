package smoke

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/okian/examscore/internal/domain/model"
	"github.com/okian/examscore/internal/domain/prediction"
	"github.com/okian/examscore/pkg/logger"
)

// verifyResponse checks a prediction against the post-processing rules
// recomputed from its raw score. It returns one entry per broken rule.
func verifyResponse(r *Response) []string {
	var v []string
	fail := func(format string, args ...any) { v = append(v, fmt.Sprintf(format, args...)) }

	want := prediction.PostProcess(r.RawScore)

	if _, err := uuid.Parse(r.PredictionID); err != nil {
		fail("prediction_id %q is not a uuid", r.PredictionID)
	}
	if r.SchemaVersion != model.SchemaVersion {
		fail("schema_version %q, want %q", r.SchemaVersion, model.SchemaVersion)
	}
	if r.FinalScore < prediction.MinScore || r.FinalScore > prediction.MaxScore {
		fail("final_score %.4f outside [0,100]", r.FinalScore)
	}
	if r.FinalScore != want.FinalScore {
		fail("final_score %.4f, want %.1f for raw %.4f", r.FinalScore, want.FinalScore, r.RawScore)
	}
	if r.ClassAverage != prediction.ClassAverage {
		fail("class_average %.4f, want %.1f", r.ClassAverage, prediction.ClassAverage)
	}
	if r.Delta != want.Delta {
		fail("delta %.4f, want %.1f", r.Delta, want.Delta)
	}
	if r.Tier != prediction.Classify(r.FinalScore) {
		fail("tier %s, want %s for %.1f", r.Tier, prediction.Classify(r.FinalScore), r.FinalScore)
	}
	if r.Message != r.Tier.Message() {
		fail("message %q does not match tier %s", r.Message, r.Tier)
	}
	if r.Severity != r.Tier.Severity() {
		fail("severity %q does not match tier %s", r.Severity, r.Tier)
	}
	if r.AboveAverage != (r.FinalScore >= prediction.ClassAverage) {
		fail("above_average %t for %.1f", r.AboveAverage, r.FinalScore)
	}
	bars := want.Comparison()
	if len(r.Comparison) != len(bars) {
		fail("comparison has %d bars, want %d", len(r.Comparison), len(bars))
	} else {
		for i := range bars {
			if r.Comparison[i] != bars[i] {
				fail("comparison bar %d is %+v, want %+v", i, r.Comparison[i], bars[i])
			}
		}
	}
	return v
}

// summarize tallies outcomes into stats and logs every violation.
func summarize(ctx context.Context, cfg *Config, outcomes []Outcome, stats *Stats) {
	stats.Tiers = make(map[prediction.Tier]int)
	for _, o := range outcomes {
		switch {
		case o.Err != "":
			stats.Failed++
		case o.Response != nil:
			stats.Predictions++
			stats.Tiers[o.Response.Tier]++
		case o.StatusCode == StatusBadRequest:
			stats.Rejected++
		}
		stats.Violations += len(o.Violations)
		for _, msg := range o.Violations {
			logger.Get().Error(ctx, "invariant violated",
				logger.String("requestID", o.Request.ID),
				logger.Int("status", o.StatusCode),
				logger.String("violation", msg))
		}
		if cfg.Verbose && o.Response != nil {
			logger.Get().Debug(ctx, "prediction",
				logger.String("requestID", o.Request.ID),
				logger.Float64("finalScore", o.Response.FinalScore),
				logger.String("tier", string(o.Response.Tier)))
		}
	}
}
