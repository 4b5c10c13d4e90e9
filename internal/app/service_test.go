package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	service "github.com/okian/examscore/internal/app"
	"github.com/okian/examscore/internal/domain/model"
	"github.com/okian/examscore/internal/domain/prediction"
	"github.com/okian/examscore/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

var shippedModel = filepath.Join("..", "..", "models", "student_model.json")

// fixedRegressor returns value for every row and counts calls.
type fixedRegressor struct {
	value float64
	err   error
	calls atomic.Int64
}

func (r *fixedRegressor) Predict(_ context.Context, rows []model.Row) ([]float64, error) {
	r.calls.Add(1)
	if r.err != nil {
		return nil, r.err
	}
	out := make([]float64, len(rows))
	for i := range out {
		out[i] = r.value
	}
	return out, nil
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it is not ready until started", func() {
			So(svc, ShouldNotBeNil)
			So(svc.Ready(), ShouldBeFalse)
			So(svc.GetStats()["modelPath"], ShouldEqual, "models/student_model.json")
		})
	})
}

func TestService_Start(t *testing.T) {
	Convey("Given a service pointing at the shipped artifact", t, func() {
		svc := service.New(service.WithModelPath(shippedModel))
		defer svc.Stop()

		Convey("When starting the service", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			err := svc.Start(ctx)

			Convey("Then it should start successfully and describe the model", func() {
				So(err, ShouldBeNil)
				So(svc.Ready(), ShouldBeTrue)
				info, ok := svc.Model()
				So(ok, ShouldBeTrue)
				So(info.SchemaVersion, ShouldEqual, model.SchemaVersion)
				So(info.SHA256, ShouldNotBeEmpty)
			})

			Convey("And predictions use the loaded model", func() {
				res, err := svc.Predict(ctx, model.DefaultFeatures())
				So(err, ShouldBeNil)
				So(res.FinalScore, ShouldBeBetweenOrEqual, 0.0, 100.0)
				So(res.ClassAverage, ShouldEqual, prediction.ClassAverage)
			})

			Convey("And starting again is a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})
		})
	})

	Convey("Given a service whose artifact is missing", t, func() {
		svc := service.New(service.WithModelPath(filepath.Join(t.TempDir(), "student_model.json")))

		Convey("When starting the service", func() {
			err := svc.Start(context.Background())

			Convey("Then it fails with ErrModelUnavailable", func() {
				So(errors.Is(err, prediction.ErrModelUnavailable), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "student_model.json")
				So(svc.Ready(), ShouldBeFalse)
			})

			Convey("And every later prediction is refused", func() {
				_, perr := svc.Predict(context.Background(), model.DefaultFeatures())
				So(errors.Is(perr, prediction.ErrModelUnavailable), ShouldBeTrue)
				stats := svc.GetStats()
				So(stats["modelLoaded"], ShouldEqual, false)
				So(stats["modelUnavailable"], ShouldEqual, int64(1))
				So(stats["loadError"], ShouldContainSubstring, "model unavailable")
			})
		})
	})
}

func TestService_Stop(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New(service.WithRegressor(&fixedRegressor{value: 70}))
		So(svc.Start(context.Background()), ShouldBeNil)

		Convey("When stopping the service", func() {
			svc.Stop()

			Convey("Then it should be marked as stopped and refuse predictions", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, false)
				_, err := svc.Predict(context.Background(), model.DefaultFeatures())
				So(errors.Is(err, prediction.ErrModelUnavailable), ShouldBeTrue)
			})
		})
	})
}

func TestService_Predict(t *testing.T) {
	Convey("Given a started service with an injected model", t, func() {
		ctx := context.Background()
		reg := &fixedRegressor{value: 72.34}
		svc := service.New(service.WithRegressor(reg))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When predicting for valid features", func() {
			res, err := svc.Predict(ctx, model.DefaultFeatures())

			Convey("Then it returns the post-processed result and counts it", func() {
				So(err, ShouldBeNil)
				So(res.FinalScore, ShouldEqual, 72.3)
				So(res.Delta, ShouldEqual, 5.1)
				So(res.Tier, ShouldEqual, prediction.TierGood)
				stats := svc.GetStats()
				So(stats["predictionsServed"], ShouldEqual, int64(1))
				So(stats["tiers"].(map[string]int64)["Good"], ShouldEqual, int64(1))
			})
		})

		Convey("When the raw output is clamped", func() {
			reg.value = 143.2
			res, err := svc.Predict(ctx, model.DefaultFeatures())

			Convey("Then the clamp is counted", func() {
				So(err, ShouldBeNil)
				So(res.FinalScore, ShouldEqual, 100.0)
				So(svc.GetStats()["clampedScores"], ShouldEqual, int64(1))
			})
		})

		Convey("When features are invalid", func() {
			f := model.DefaultFeatures()
			f.AccessToResources = "Plenty"
			_, err := svc.Predict(ctx, f)

			Convey("Then it reports invalid features and stays usable", func() {
				So(errors.Is(err, prediction.ErrInvalidFeatures), ShouldBeTrue)
				So(service.ErrorKind(err), ShouldEqual, service.KindInvalidFeatures)
				So(svc.GetStats()["invalidFeatures"], ShouldEqual, int64(1))
				_, err = svc.Predict(ctx, model.DefaultFeatures())
				So(err, ShouldBeNil)
			})
		})

		Convey("When inference fails", func() {
			reg.err = errors.New("matrix not invertible")
			_, err := svc.Predict(ctx, model.DefaultFeatures())

			Convey("Then it reports an inference failure", func() {
				So(errors.Is(err, prediction.ErrInferenceFailure), ShouldBeTrue)
				So(service.ErrorKind(err), ShouldEqual, service.KindInferenceFailure)
				So(svc.GetStats()["inferenceFailures"], ShouldEqual, int64(1))
				So(svc.Ready(), ShouldBeTrue)
			})
		})

		Convey("When many callers predict concurrently", func() {
			var wg sync.WaitGroup
			errs := make(chan error, 50)
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if _, err := svc.Predict(ctx, model.DefaultFeatures()); err != nil {
						errs <- err
					}
				}()
			}
			wg.Wait()
			close(errs)

			Convey("Then all succeed and are counted", func() {
				So(len(errs), ShouldEqual, 0)
				So(svc.GetStats()["predictionsServed"], ShouldEqual, int64(50))
			})
		})
	})
}

func TestService_Schema(t *testing.T) {
	Convey("Given a service", t, func() {
		svc := service.New()

		Convey("Then it exposes the pinned schema", func() {
			schema := svc.Schema()
			So(schema.Version, ShouldEqual, model.SchemaVersion)
			So(len(schema.Columns), ShouldEqual, 8)
			So(schema.Defaults, ShouldResemble, model.DefaultFeatures())
		})
	})
}
