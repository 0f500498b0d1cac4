package otel

import (
	"context"
	"errors"
	"fmt"

	dnaAuth "github.com/MrEthical07/dnaAuth"
	"github.com/MrEthical07/dnaAuth/metrics/export/internaldefs"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Attribute keys set by [NewOTelExporter].
const (
	AttrInstitution     = attribute.Key("dnaauth.institution")
	AttrInstitutionType = attribute.Key("dnaauth.institution_type")
)

// Construction errors.
var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil metrics source")
)

type metricsSource interface {
	MetricsSnapshot() dnaAuth.MetricsSnapshot
	AuditDropped() uint64
}

type observedCounter struct {
	id         dnaAuth.MetricID
	instrument metric.Int64ObservableCounter
}

type observedHistogram struct {
	id      dnaAuth.MetricID
	buckets [8]metric.Int64ObservableGauge
	count   metric.Int64ObservableGauge
}

// OTelExporter owns the callback registration for all engine instruments.
type OTelExporter struct {
	source       metricsSource
	registration metric.Registration
	counters     []observedCounter
	histograms   []observedHistogram
	auditDropped metric.Int64ObservableCounter
	attrs        []attribute.KeyValue
}

// Option customises an [OTelExporter].
type Option func(*OTelExporter)

// WithAttributes attaches attrs to every observation.
func WithAttributes(attrs ...attribute.KeyValue) Option {
	return func(e *OTelExporter) { e.attrs = append(e.attrs, attrs...) }
}

// NewOTelExporter registers observable instruments on meter backed by engine.
// Observations carry the engine's institution name and type when configured.
func NewOTelExporter(meter metric.Meter, engine *dnaAuth.Engine, opts ...Option) (*OTelExporter, error) {
	if engine == nil {
		return nil, ErrNilSource
	}
	var base []Option
	inst := engine.Config().Institution
	if inst.Name != "" {
		base = append(base, WithAttributes(AttrInstitution.String(inst.Name)))
	}
	if inst.Type != "" {
		base = append(base, WithAttributes(AttrInstitutionType.String(inst.Type)))
	}
	return NewOTelExporterFromSource(meter, engine, append(base, opts...)...)
}

// NewOTelExporterFromSource is [NewOTelExporter] over any snapshot source.
func NewOTelExporterFromSource(meter metric.Meter, source metricsSource, opts ...Option) (*OTelExporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	exporter := &OTelExporter{
		source:     source,
		counters:   make([]observedCounter, 0, len(internaldefs.CounterDefs)),
		histograms: make([]observedHistogram, 0, len(internaldefs.HistogramDefs)),
	}
	for _, opt := range opts {
		opt(exporter)
	}
	labels := metric.WithAttributeSet(attribute.NewSet(exporter.attrs...))

	observables := make([]metric.Observable, 0, len(internaldefs.CounterDefs)+len(internaldefs.HistogramDefs)*9+1)

	for _, def := range internaldefs.CounterDefs {
		ins, err := meter.Int64ObservableCounter(def.Name, metric.WithDescription(def.Help))
		if err != nil {
			return nil, fmt.Errorf("create observable counter %s: %w", def.Name, err)
		}
		exporter.counters = append(exporter.counters, observedCounter{id: def.ID, instrument: ins})
		observables = append(observables, ins)
	}

	for _, def := range internaldefs.HistogramDefs {
		h := observedHistogram{id: def.ID}
		for i := 0; i < len(internaldefs.HistogramBoundSuffix); i++ {
			name := def.Name + "_bucket_le_" + internaldefs.HistogramBoundSuffix[i]
			ins, err := meter.Int64ObservableGauge(name, metric.WithDescription("Cumulative histogram bucket count."))
			if err != nil {
				return nil, fmt.Errorf("create histogram bucket gauge %s: %w", name, err)
			}
			h.buckets[i] = ins
			observables = append(observables, ins)
		}
		countName := def.Name + "_count"
		countIns, err := meter.Int64ObservableGauge(countName, metric.WithDescription("Histogram total sample count."))
		if err != nil {
			return nil, fmt.Errorf("create histogram count gauge %s: %w", countName, err)
		}
		h.count = countIns
		observables = append(observables, countIns)
		exporter.histograms = append(exporter.histograms, h)
	}

	auditDropped, err := meter.Int64ObservableCounter(
		"dnaauth_audit_dropped_total",
		metric.WithDescription("Dropped audit events due to dispatcher backpressure."),
	)
	if err != nil {
		return nil, fmt.Errorf("create audit dropped counter: %w", err)
	}
	exporter.auditDropped = auditDropped
	observables = append(observables, auditDropped)

	registration, err := meter.RegisterCallback(func(_ context.Context, observer metric.Observer) error {
		snapshot := exporter.source.MetricsSnapshot()
		for _, c := range exporter.counters {
			observer.ObserveInt64(c.instrument, int64(snapshot.Counters[c.id]), labels)
		}
		for _, h := range exporter.histograms {
			nonCumulative := internaldefs.NormalizeBuckets(snapshot.Histograms[h.id])
			cumulative := internaldefs.CumulativeBuckets(nonCumulative)
			for i := 0; i < len(cumulative); i++ {
				observer.ObserveInt64(h.buckets[i], int64(cumulative[i]), labels)
			}
			observer.ObserveInt64(h.count, int64(cumulative[len(cumulative)-1]), labels)
		}
		observer.ObserveInt64(exporter.auditDropped, int64(exporter.source.AuditDropped()), labels)
		return nil
	}, observables...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}

	exporter.registration = registration
	return exporter, nil
}

// Close unregisters the collection callback.
func (e *OTelExporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
