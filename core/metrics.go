package core

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors updated by the Manager.
type Metrics struct {
	establish *prometheus.CounterVec
	resolve   *prometheus.CounterVec
	destroy   prometheus.Counter
}

// NewMetrics creates the session collectors and registers them on reg.
// Collectors already registered on reg are reused, so several managers can
// share one registry.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		return nil, errors.New("metrics registerer cannot be nil")
	}

	establish := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "session_establish_total",
		Help: "Number of session establish attempts by outcome.",
	}, []string{"outcome"})
	resolve := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "session_resolve_total",
		Help: "Number of session resolutions by outcome.",
	}, []string{"outcome"})
	destroy := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "session_destroy_total",
		Help: "Number of sessions destroyed.",
	})

	m := &Metrics{}
	var err error
	if m.establish, err = register(reg, establish); err != nil {
		return nil, err
	}
	if m.resolve, err = register(reg, resolve); err != nil {
		return nil, err
	}
	if m.destroy, err = register(reg, destroy); err != nil {
		return nil, err
	}
	return m, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *Metrics) observeEstablish(outcome string) {
	if m == nil {
		return
	}
	m.establish.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observeResolve(outcome string) {
	if m == nil {
		return
	}
	m.resolve.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observeDestroy() {
	if m == nil {
		return
	}
	m.destroy.Inc()
}
