package smoke

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/examscore/internal/domain/prediction"
	"github.com/okian/examscore/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	outputPermission    = 0600
)

// Run errors.
var (
	ErrUnhealthy          = errors.New("service not healthy")
	ErrNothingSubmitted   = errors.New("no requests submitted")
	ErrRequestsFailed     = errors.New("requests failed")
	ErrInvariantsViolated = errors.New("invariants violated")
)

// Run executes the complete smoke run.
func Run(ctx context.Context, cfg *Config) error {
	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "starting examscore smoke run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("requests", cfg.NumRequests),
		logger.Int("invalid", cfg.InvalidRequests),
		logger.Int("workers", cfg.Workers),
		logger.String("timeout", cfg.Timeout.String()),
		logger.Bool("verbose", cfg.Verbose))

	if err := checkServiceHealth(ctx, cfg); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	reqs, err := generateRequests(ctx, cfg, stats)
	if err != nil {
		return fmt.Errorf("request generation failed: %w", err)
	}

	outcomes := submitRequests(ctx, cfg, reqs, stats)
	summarize(ctx, cfg, outcomes, stats)

	if cfg.OutputFile != "" {
		if err := saveOutcomes(ctx, cfg.OutputFile, outcomes); err != nil {
			logger.Get().Warn(ctx, "failed to save outcomes", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	switch {
	case stats.RequestsSubmitted == 0:
		return ErrNothingSubmitted
	case stats.Failed > 0:
		return fmt.Errorf("%w: %d of %d", ErrRequestsFailed, stats.Failed, stats.RequestsSubmitted)
	case stats.Violations > 0:
		return fmt.Errorf("%w: %d", ErrInvariantsViolated, stats.Violations)
	}

	logger.Get().Info(ctx, "smoke run passed")
	return nil
}

// checkServiceHealth verifies the service is running with a model loaded.
func checkServiceHealth(ctx context.Context, cfg *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(cfg.Timeout)
	resp, err := client.Get(ctx, cfg.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// saveOutcomes writes every outcome to filename as a JSON array.
func saveOutcomes(ctx context.Context, filename string, outcomes []Outcome) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(outcomes, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal outcomes: %w", err)
	}
	if err := os.WriteFile(filename, data, outputPermission); err != nil {
		return fmt.Errorf("failed to write outcomes: %w", err)
	}

	logger.Get().Info(ctx, "outcomes saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(stats *Stats) {
	var passRate, requestsPerSecond float64

	if stats.RequestsSubmitted > 0 {
		passRate = float64(stats.Predictions+stats.Rejected-stats.Violations) /
			float64(stats.RequestsSubmitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		requestsPerSecond = float64(stats.RequestsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("requestsGenerated", stats.RequestsGenerated),
		logger.Int("requestsSubmitted", stats.RequestsSubmitted),
		logger.Int("predictions", stats.Predictions),
		logger.Int("rejected", stats.Rejected),
		logger.Int("failed", stats.Failed),
		logger.Int("violations", stats.Violations),
		logger.Int("excellent", stats.Tiers[prediction.TierExcellent]),
		logger.Int("good", stats.Tiers[prediction.TierGood]),
		logger.Int("atRisk", stats.Tiers[prediction.TierAtRisk]),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("passRate", passRate),
		logger.Float64("requestsPerSecond", requestsPerSecond))
}
