package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricUnitsTotal     = "ngdefc.units.total"
	metricUnitDuration   = "ngdefc.unit.duration.seconds"
	metricErrorsTotal    = "ngdefc.errors.total"
	metricEmittedBytes   = "ngdefc.emitted.bytes"
	metricPooledConstant = "ngdefc.pooled.constants"

	attrKind   = "kind"
	attrStatus = "status"

	// StatusOK marks a unit that compiled.
	StatusOK = "ok"
	// StatusError marks a unit that failed to compile.
	StatusError = "error"
)

// durationBucketBoundaries covers 0.1ms to 1s per unit.
var durationBucketBoundaries = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1}

// CompileMetrics holds the instruments recorded for each compiled unit.
type CompileMetrics struct {
	unitsTotal      metric.Int64Counter
	unitDuration    metric.Float64Histogram
	errorsTotal     metric.Int64Counter
	emittedBytes    metric.Int64Counter
	pooledConstants metric.Int64Counter
}

// UnitStats describes one compiled directive or component.
type UnitStats struct {
	Kind            string
	Status          string
	Duration        time.Duration
	EmittedBytes    int
	PooledConstants int
}

// NewCompileMetrics creates the instruments from the given meter.
func NewCompileMetrics(mt metric.Meter) (*CompileMetrics, error) {
	units, err := mt.Int64Counter(metricUnitsTotal,
		metric.WithDescription("Total number of compiled definitions"),
		metric.WithUnit("{unit}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricUnitsTotal, err)
	}

	duration, err := mt.Float64Histogram(metricUnitDuration,
		metric.WithDescription("Definition compile duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricUnitDuration, err)
	}

	errs, err := mt.Int64Counter(metricErrorsTotal,
		metric.WithDescription("Total number of failed definitions"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricErrorsTotal, err)
	}

	emitted, err := mt.Int64Counter(metricEmittedBytes,
		metric.WithDescription("Bytes of emitted JavaScript"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricEmittedBytes, err)
	}

	pooled, err := mt.Int64Counter(metricPooledConstant,
		metric.WithDescription("Constants hoisted into the constant pool"),
		metric.WithUnit("{constant}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricPooledConstant, err)
	}

	return &CompileMetrics{
		unitsTotal:      units,
		unitDuration:    duration,
		errorsTotal:     errs,
		emittedBytes:    emitted,
		pooledConstants: pooled,
	}, nil
}

// RecordUnit records one compiled unit. A nil receiver records nothing.
func (cm *CompileMetrics) RecordUnit(ctx context.Context, stats UnitStats) {
	if cm == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(attrKind, stats.Kind),
		attribute.String(attrStatus, stats.Status),
	)
	cm.unitsTotal.Add(ctx, 1, attrs)
	cm.unitDuration.Record(ctx, stats.Duration.Seconds(), attrs)

	if stats.Status == StatusError {
		cm.errorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrKind, stats.Kind)))
		return
	}
	cm.emittedBytes.Add(ctx, int64(stats.EmittedBytes))
	cm.pooledConstants.Add(ctx, int64(stats.PooledConstants))
}
