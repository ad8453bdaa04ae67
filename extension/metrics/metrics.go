// Package metrics exposes data source activity as Prometheus metrics.
//
//	ext, err := metrics.New(prometheus.DefaultRegisterer, "myapp")
//	factory.AddExtension(ext)
package metrics

import (
	"context"

	"github.com/friendsofgo/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nrfta/datasource-go"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Extension records binds, validation failures, result executions and
// execution latency.
type Extension struct {
	binds       *prometheus.CounterVec
	validations *prometheus.CounterVec
	results     *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// New creates the collectors under namespace and registers them on reg, or
// on the default registerer when reg is nil. Registering twice with the same
// namespace reuses the collectors already registered.
func New(reg prometheus.Registerer, namespace string) (*Extension, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	e := &Extension{
		binds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "datasource",
			Name:      "binds_total",
			Help:      "Parameter binds per data source.",
		}, []string{"datasource"}),
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "datasource",
			Name:      "validation_failures_total",
			Help:      "Rejected parameters per data source and field.",
		}, []string{"datasource", "field"}),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "datasource",
			Name:      "results_total",
			Help:      "Driver executions per data source, driver and outcome.",
		}, []string{"datasource", "driver", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "datasource",
			Name:      "result_duration_seconds",
			Help:      "Driver execution latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"datasource", "driver"}),
	}

	var err error
	if e.binds, err = register(reg, e.binds); err != nil {
		return nil, err
	}
	if e.validations, err = register(reg, e.validations); err != nil {
		return nil, err
	}
	if e.results, err = register(reg, e.results); err != nil {
		return nil, err
	}
	if e.duration, err = register(reg, e.duration); err != nil {
		return nil, err
	}
	return e, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, errors.Wrap(err, "register metrics")
	}
	return c, nil
}

func (*Extension) Name() string { return "metrics" }

// Hooks run last so they observe what other hooks produced.
func (e *Extension) Hooks() []datasource.Hook {
	return []datasource.Hook{
		{Name: "binds", Event: datasource.PostBindParameters, Priority: -128, Fn: e.observeBind},
		{Name: "results", Event: datasource.PostGetResult, Priority: -128, Fn: e.observeResult},
	}
}

func (e *Extension) observeBind(_ context.Context, ev *datasource.HookEvent) error {
	name := ev.DataSource.Name()
	e.binds.WithLabelValues(name).Inc()

	var verrs datasource.ValidationErrors
	if errors.As(ev.Err, &verrs) {
		for _, field := range verrs.Fields() {
			e.validations.WithLabelValues(name, field).Inc()
		}
	}
	return nil
}

func (e *Extension) observeResult(_ context.Context, ev *datasource.HookEvent) error {
	name, driver := ev.DataSource.Name(), ev.DataSource.Driver().Type()

	outcome := OutcomeSuccess
	if ev.Err != nil {
		outcome = OutcomeError
	}
	e.results.WithLabelValues(name, driver, outcome).Inc()
	e.duration.WithLabelValues(name, driver).Observe(ev.Duration.Seconds())
	return nil
}
