package smoke

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"github.com/okian/examscore/internal/domain/model"
	"github.com/okian/examscore/pkg/logger"
)

// invalidOvershoot bounds how far past a column's maximum an invalid value lands.
const invalidOvershoot = 10

// randomInt returns a uniform integer in [lo, hi] using crypto/rand.
func randomInt(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(hi-lo+1)))
	if err != nil {
		return lo
	}
	return lo + int(n.Int64())
}

// randomLevel picks one of the categorical levels.
func randomLevel() model.Level {
	return model.Levels[randomInt(0, len(model.Levels)-1)]
}

// generateRequests builds cfg.NumRequests valid and cfg.InvalidRequests invalid requests.
func generateRequests(ctx context.Context, cfg *Config, stats *Stats) ([]Request, error) {
	total := cfg.NumRequests + cfg.InvalidRequests
	logger.Get().Info(ctx, "generating feature sets",
		logger.Int("valid", cfg.NumRequests),
		logger.Int("invalid", cfg.InvalidRequests))

	reqs := make([]Request, 0, total)
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during generation: %w", err)
		}
		r := Request{ID: uuid.NewString(), Valid: i < cfg.NumRequests, Features: randomFeatures()}
		if !r.Valid {
			r.Features = invalidate(r.Features)
		}
		reqs = append(reqs, r)
	}

	stats.RequestsGenerated = len(reqs)
	logger.Get().Info(ctx, "generated feature sets", logger.Int("count", len(reqs)))
	return reqs, nil
}

// randomFeatures draws every field uniformly within its schema bounds.
func randomFeatures() model.StudentFeatures {
	var f model.StudentFeatures
	for _, c := range model.Schema.Columns {
		if c.Kind == model.KindCategorical {
			setLevel(&f, c.Field, randomLevel())
			continue
		}
		setNumeric(&f, c.Field, randomInt(c.Min, c.Max))
	}
	return f
}

// invalidate pushes one randomly chosen field out of its allowed values.
func invalidate(f model.StudentFeatures) model.StudentFeatures {
	c := model.Schema.Columns[randomInt(0, len(model.Schema.Columns)-1)]
	if c.Kind == model.KindCategorical {
		setLevel(&f, c.Field, "Unknown")
		return f
	}
	if randomInt(0, 1) == 0 {
		setNumeric(&f, c.Field, c.Min-randomInt(1, invalidOvershoot))
	} else {
		setNumeric(&f, c.Field, c.Max+randomInt(1, invalidOvershoot))
	}
	return f
}

func setNumeric(f *model.StudentFeatures, field string, v int) {
	switch field {
	case "attendance":
		f.Attendance = v
	case "hours_studied":
		f.HoursStudied = v
	case "previous_scores":
		f.PreviousScores = v
	case "tutoring_sessions":
		f.TutoringSessions = v
	case "physical_activity":
		f.PhysicalActivity = v
	case "sleep_hours":
		f.SleepHours = v
	}
}

func setLevel(f *model.StudentFeatures, field string, l model.Level) {
	switch field {
	case "access_to_resources":
		f.AccessToResources = l
	case "parental_involvement":
		f.ParentalInvolvement = l
	}
}
