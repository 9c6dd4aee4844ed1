package scans

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/bryanwahyu/automarket-intake/internal/application"
	domain "github.com/bryanwahyu/automarket-intake/internal/domain/scans"
	"github.com/bryanwahyu/automarket-intake/internal/metrics"
)

// DefaultHistoryLimit is how many scans the history view returns.
const DefaultHistoryLimit = 10

// Grader is the grading engine port.
type Grader interface {
	Grade(vin string, mileage int) domain.InspectionResult
}

// Service implements the intake and history use cases.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	Repo    domain.Repository
	Grader  Grader
	Mileage MileageSource
	Clock   application.Clock
	Tracer  trace.Tracer
	Sinks   []domain.Sink

	// StoreTimeout bounds each store call; zero means no extra bound.
	StoreTimeout time.Duration
	HistoryLimit int

	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

//
// ==== USE CASES ====
//

// Intake grades vin, persists the outcome with its processing latency and
// returns the grading result. The result is not returned when persisting fails.
func (s *Service) Intake(ctx context.Context, vin string) (domain.InspectionResult, error) {
	ctx, span := s.tracer().Start(ctx, "CalculateVehicleGrade",
		trace.WithAttributes(attribute.String("vehicle.vin", vin)))
	defer span.End()

	if vin == "" {
		span.SetStatus(codes.Error, domain.ErrEmptyVIN.Error())
		return domain.InspectionResult{}, domain.ErrEmptyVIN
	}

	clock := s.clock()
	start := time.Now()
	mileage := s.mileage().Mileage()
	res := s.Grader.Grade(vin, mileage)
	elapsed := time.Since(start)

	span.SetAttributes(
		attribute.String("vehicle.grade", res.Grade),
		attribute.Float64("vehicle.processing_latency_ms", float64(elapsed)/float64(time.Millisecond)),
	)

	rec := domain.NewScanRecord(vin, res, clock.Now(), elapsed)

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	if err := s.Repo.Append(storeCtx, rec); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "append scan failed")
		s.storeFailed("append")
		s.logger().Error("persist scan failed", zap.String("vin", vin), zap.Error(err))
		return domain.InspectionResult{}, fmt.Errorf("append scan: %w", err)
	}
	span.SetAttributes(attribute.Int64("scan.id", rec.ID))

	if s.Metrics != nil {
		s.Metrics.ScansTotal.WithLabelValues(rec.Grade).Inc()
		s.Metrics.ProcessingLatency.Observe(rec.ProcessingLatencyMs)
	}
	s.publish(ctx, rec)

	return res, nil
}

// History returns the most recent scans, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]*domain.ScanRecord, error) {
	if limit <= 0 {
		limit = s.HistoryLimit
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	list, err := s.Repo.ListRecent(storeCtx, limit)
	if err != nil {
		s.storeFailed("list_recent")
		return nil, fmt.Errorf("list recent scans: %w", err)
	}
	if list == nil {
		list = []*domain.ScanRecord{}
	}
	return list, nil
}

// publish fans the persisted record out to the sinks. Sink failures are
// logged and counted, never surfaced to the caller.
func (s *Service) publish(ctx context.Context, rec *domain.ScanRecord) {
	for _, sink := range s.Sinks {
		sinkCtx, cancel := s.storeContext(ctx)
		err := sink.Publish(sinkCtx, rec)
		cancel()
		if err == nil {
			continue
		}
		if s.Metrics != nil {
			s.Metrics.SinkFailures.WithLabelValues(sink.Name()).Inc()
		}
		s.logger().Warn("scan sink publish failed",
			zap.String("sink", sink.Name()), zap.Int64("scan_id", rec.ID), zap.Error(err))
	}
}

// helper
func (s *Service) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.StoreTimeout > 0 {
		return context.WithTimeout(ctx, s.StoreTimeout)
	}
	return ctx, func() {}
}

func (s *Service) storeFailed(op string) {
	if s.Metrics != nil {
		s.Metrics.StoreFailures.WithLabelValues(op).Inc()
	}
}

func (s *Service) tracer() trace.Tracer {
	if s.Tracer != nil {
		return s.Tracer
	}
	return noop.NewTracerProvider().Tracer("")
}

func (s *Service) clock() application.Clock {
	if s.Clock != nil {
		return s.Clock
	}
	return application.SystemClock{}
}

func (s *Service) mileage() MileageSource {
	if s.Mileage != nil {
		return s.Mileage
	}
	return RandomMileage{}
}

func (s *Service) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.NewNop()
}
