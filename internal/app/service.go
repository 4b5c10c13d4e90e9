// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/examscore/internal/adapters/repository"
	"github.com/okian/examscore/internal/domain/model"
	"github.com/okian/examscore/internal/domain/prediction"
	"github.com/okian/examscore/pkg/logger"
	"github.com/okian/examscore/pkg/metrics"
)

const (
	defaultModelPath = "models/student_model.json"
	msPerNanosecond  = 1e-6
)

// Error kinds as reported to metrics and API clients.
const (
	KindInvalidFeatures  = "invalid_features"
	KindInferenceFailure = "inference_failure"
	KindModelUnavailable = "model_unavailable"
)

// ModelInfo describes the model currently serving predictions.
type ModelInfo = repository.Info

// Service owns the loaded model and serves predictions.
type Service struct {
	mu sync.RWMutex

	// Core components
	predictor *prediction.Service
	info      ModelInfo

	// Configuration
	modelPath string
	regressor prediction.Regressor

	// State
	started   bool
	startedAt time.Time
	loadErr   error

	// Counters
	served       atomic.Int64
	invalid      atomic.Int64
	failed       atomic.Int64
	unavailable  atomic.Int64
	clamped      atomic.Int64
	tierCounters map[prediction.Tier]*atomic.Int64

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithModelPath sets the artifact path loaded by Start.
func WithModelPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.modelPath = path
		}
	}
}

// WithRegressor serves predictions from r instead of loading an artifact.
func WithRegressor(r prediction.Regressor) Option {
	return func(s *Service) {
		s.regressor = r
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		modelPath: defaultModelPath,
		tierCounters: map[prediction.Tier]*atomic.Int64{
			prediction.TierExcellent: {},
			prediction.TierGood:      {},
			prediction.TierAtRisk:    {},
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start loads the model artifact. A failure wraps prediction.ErrModelUnavailable
// and leaves the service refusing every prediction.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting prediction service...", logger.String("modelPath", s.modelPath))

	reg := s.regressor
	info := ModelInfo{Kind: "injected", SchemaVersion: model.SchemaVersion, Columns: model.ColumnNames()}
	if reg == nil {
		m, err := repository.Load(ctx, s.modelPath)
		if err != nil {
			s.loadErr = fmt.Errorf("%w: %w", prediction.ErrModelUnavailable, err)
			metrics.SetModelUnavailable()
			metrics.RecordErrorByComponent("model", KindModelUnavailable)
			s.logger.Error(ctx, "model artifact unavailable",
				logger.String("modelPath", s.modelPath),
				logger.Error(err),
			)
			return s.loadErr
		}
		reg = m
		info = m.Info()
	}

	s.predictor = prediction.NewService(reg)
	s.info = info
	s.loadErr = nil
	s.started = true
	s.startedAt = time.Now()
	metrics.SetModelLoaded(info.Kind, info.SchemaVersion, info.SHA256)

	s.logger.Info(ctx, "prediction service started",
		logger.String("model", info.Kind),
		logger.String("schemaVersion", info.SchemaVersion),
		logger.String("sha256", info.SHA256),
	)
	return nil
}

// Stop marks the service as stopped. The model is read-only; nothing to release.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.predictor = nil
	s.started = false
	metrics.SetModelUnavailable()
	s.logger.Info(context.Background(), "prediction service stopped")
}

// Predict runs one prediction. Errors wrap prediction.ErrModelUnavailable,
// prediction.ErrInvalidFeatures or prediction.ErrInferenceFailure.
func (s *Service) Predict(ctx context.Context, f model.StudentFeatures) (prediction.Result, error) {
	s.mu.RLock()
	p, loadErr := s.predictor, s.loadErr
	s.mu.RUnlock()

	if p == nil {
		s.unavailable.Add(1)
		metrics.RecordPredictionError(KindModelUnavailable)
		if loadErr != nil {
			return prediction.Result{}, loadErr
		}
		return prediction.Result{}, prediction.ErrModelUnavailable
	}

	start := time.Now()
	res, err := p.Predict(ctx, f)
	latencyMs := float64(time.Since(start).Nanoseconds()) * msPerNanosecond

	if err != nil {
		kind := ErrorKind(err)
		switch kind {
		case KindInvalidFeatures:
			s.invalid.Add(1)
			s.logger.Debug(ctx, "rejected features", logger.Error(err))
		default:
			s.failed.Add(1)
			s.logger.Error(ctx, "inference failed", logger.Error(err))
			metrics.RecordErrorLatency("prediction", kind, latencyMs)
		}
		metrics.RecordPredictionError(kind)
		metrics.RecordErrorByComponent("prediction", kind)
		return prediction.Result{}, err
	}

	metrics.RecordInferenceLatency(latencyMs)
	metrics.RecordPrediction(string(res.Tier), res.FinalScore)
	if res.Clamped() {
		s.clamped.Add(1)
		bound := "max"
		if res.RawScore < prediction.MinScore {
			bound = "min"
		}
		metrics.RecordScoreClamped(bound)
		s.logger.Debug(ctx, "raw score clamped",
			logger.Float64("rawScore", res.RawScore),
			logger.Float64("finalScore", res.FinalScore),
		)
	}
	s.served.Add(1)
	if c, ok := s.tierCounters[res.Tier]; ok {
		c.Add(1)
	}
	return res, nil
}

// Ready reports whether a model is loaded and predictions can be served.
func (s *Service) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.predictor != nil
}

// Model describes the loaded model. ok is false when none is loaded.
func (s *Service) Model() (ModelInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.info, s.predictor != nil
}

// Schema returns the pinned input schema.
func (s *Service) Schema() model.InputSchema {
	return model.Schema
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tiers := make(map[string]int64, len(s.tierCounters))
	for t, c := range s.tierCounters {
		tiers[string(t)] = c.Load()
	}

	stats := map[string]interface{}{
		"started":           s.started,
		"modelLoaded":       s.predictor != nil,
		"modelPath":         s.modelPath,
		"schemaVersion":     model.SchemaVersion,
		"predictionsServed": s.served.Load(),
		"invalidFeatures":   s.invalid.Load(),
		"inferenceFailures": s.failed.Load(),
		"modelUnavailable":  s.unavailable.Load(),
		"clampedScores":     s.clamped.Load(),
		"tiers":             tiers,
	}
	if s.started {
		stats["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())
	}
	if s.loadErr != nil {
		stats["loadError"] = s.loadErr.Error()
	}
	return stats
}

// ErrorKind maps a prediction error to its reported kind.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, prediction.ErrInvalidFeatures):
		return KindInvalidFeatures
	case errors.Is(err, prediction.ErrModelUnavailable):
		return KindModelUnavailable
	default:
		return KindInferenceFailure
	}
}
