package telemetry

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	otelglobal "go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/julianstephens/crewplan/internal/constants"
)

const meterName = "github.com/julianstephens/crewplan"

var (
	initMetricsOnce sync.Once
	scheduleCounter metric.Int64Counter
	oracleCounter   metric.Int64Counter
	oracleDuration  metric.Float64Histogram
	optimizeCounter metric.Int64Counter
	optimizeRuns    metric.Float64Histogram
	commitConflicts metric.Int64Counter
)

// Common attribute keys for metrics.
var (
	AttrOutcome  = attribute.Key("outcome")
	AttrOracle   = attribute.Key("oracle")
	AttrStatus   = attribute.Key("status")
	AttrTaskType = attribute.Key("task_type")
)

// InitMeterProvider installs a global MeterProvider backed by a Prometheus
// registry and returns the handler serving it.
func InitMeterProvider(ctx context.Context, serviceName string) (http.Handler, error) {
	if serviceName == "" {
		serviceName = constants.AppName
	}
	reg := prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(constants.Version),
		),
	)
	if err != nil {
		return nil, err
	}
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)
	otelglobal.SetMeterProvider(provider)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true}), nil
}

// Meter returns the global crewplan meter.
func Meter() metric.Meter {
	return otelglobal.Meter(meterName)
}

// InitMetrics creates the meter instruments. Safe to call multiple times.
func InitMetrics() error {
	var err error
	initMetricsOnce.Do(func() {
		m := Meter()
		scheduleCounter, err = m.Int64Counter("crewplan_schedule_requests_total",
			metric.WithDescription("Scheduling requests by outcome"))
		if err != nil {
			return
		}
		oracleCounter, err = m.Int64Counter("crewplan_oracle_calls_total",
			metric.WithDescription("Calendar and weather provider calls by status"))
		if err != nil {
			return
		}
		oracleDuration, err = m.Float64Histogram("crewplan_oracle_call_duration_seconds",
			metric.WithDescription("Calendar and weather provider call latency"), metric.WithUnit("s"))
		if err != nil {
			return
		}
		optimizeCounter, err = m.Int64Counter("crewplan_optimize_tasks_total",
			metric.WithDescription("Tasks processed by batch optimization by outcome"))
		if err != nil {
			return
		}
		optimizeRuns, err = m.Float64Histogram("crewplan_optimize_duration_seconds",
			metric.WithDescription("Batch optimization run duration"), metric.WithUnit("s"))
		if err != nil {
			return
		}
		commitConflicts, err = m.Int64Counter("crewplan_commit_conflicts_total",
			metric.WithDescription("Task commits rejected by a stale employee version"))
	})
	return err
}

// RecordSchedule records the outcome of one scheduling request.
func RecordSchedule(ctx context.Context, taskType, outcome string) {
	if scheduleCounter == nil {
		return
	}
	scheduleCounter.Add(ctx, 1, metric.WithAttributes(AttrTaskType.String(taskType), AttrOutcome.String(outcome)))
}

// RecordOracleCall records one provider call and its latency.
func RecordOracleCall(ctx context.Context, oracle string, err error, d time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	attrs := metric.WithAttributes(AttrOracle.String(oracle), AttrStatus.String(status))
	if oracleCounter != nil {
		oracleCounter.Add(ctx, 1, attrs)
	}
	if oracleDuration != nil {
		oracleDuration.Record(ctx, d.Seconds(), attrs)
	}
}

// RecordOptimize records one batch run.
func RecordOptimize(ctx context.Context, assigned, failed int, d time.Duration) {
	if optimizeCounter != nil {
		optimizeCounter.Add(ctx, int64(assigned), metric.WithAttributes(AttrOutcome.String("assigned")))
		optimizeCounter.Add(ctx, int64(failed), metric.WithAttributes(AttrOutcome.String("failed")))
	}
	if optimizeRuns != nil {
		optimizeRuns.Record(ctx, d.Seconds())
	}
}

// RecordConflict counts a commit rejected with ErrConflict.
func RecordConflict(ctx context.Context) {
	if commitConflicts != nil {
		commitConflicts.Add(ctx, 1)
	}
}
