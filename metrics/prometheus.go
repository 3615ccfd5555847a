package metrics

import (
	"errors"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusProvider registers instruments as Prometheus collectors.
// Instrument names are prefixed with namespace and registered once.
type PrometheusProvider struct {
	namespace  string
	registerer prometheus.Registerer

	mu         sync.Mutex
	counters   map[string]prometheus.Counter
	gauges     map[string]prometheus.Gauge
	histograms map[string]prometheus.Histogram
}

// NewPrometheusProvider builds a provider registering into reg.
// A nil reg means prometheus.DefaultRegisterer.
func NewPrometheusProvider(namespace string, reg prometheus.Registerer) *PrometheusProvider {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &PrometheusProvider{
		namespace:  namespace,
		registerer: reg,
		counters:   make(map[string]prometheus.Counter),
		gauges:     make(map[string]prometheus.Gauge),
		histograms: make(map[string]prometheus.Histogram),
	}
}

func (p *PrometheusProvider) Counter(name string, opts ...InstrumentOption) Counter {
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.counters[name]; ok {
		return promCounter{c}
	}
	cfg := applyOptions(opts)
	c := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   p.namespace,
		Name:        name,
		Help:        help(name, cfg),
		ConstLabels: cfg.Attributes,
	})
	c = register(p.registerer, c)
	p.counters[name] = c
	return promCounter{c}
}

func (p *PrometheusProvider) UpDownCounter(name string, opts ...InstrumentOption) UpDownCounter {
	p.mu.Lock()
	defer p.mu.Unlock()
	if g, ok := p.gauges[name]; ok {
		return promGauge{g}
	}
	cfg := applyOptions(opts)
	g := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   p.namespace,
		Name:        name,
		Help:        help(name, cfg),
		ConstLabels: cfg.Attributes,
	})
	g = register(p.registerer, g)
	p.gauges[name] = g
	return promGauge{g}
}

func (p *PrometheusProvider) Histogram(name string, opts ...InstrumentOption) Histogram {
	p.mu.Lock()
	defer p.mu.Unlock()
	if h, ok := p.histograms[name]; ok {
		return promHistogram{h}
	}
	cfg := applyOptions(opts)
	h := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace:   p.namespace,
		Name:        name,
		Help:        help(name, cfg),
		ConstLabels: cfg.Attributes,
		Buckets:     prometheus.DefBuckets,
	})
	h = register(p.registerer, h)
	p.histograms[name] = h
	return promHistogram{h}
}

// register adds c to reg, reusing an identical collector registered earlier
// (e.g. by another pool sharing the default registry).
// Any other registration error panics, as with MustRegister.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	err := reg.Register(c)
	if err == nil {
		return c
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing
		}
	}
	panic(err)
}

func help(name string, cfg InstrumentConfig) string {
	if cfg.Description != "" {
		return cfg.Description
	}
	return strings.ReplaceAll(name, "_", " ")
}

type promCounter struct{ c prometheus.Counter }

func (p promCounter) Add(n int64) {
	if n > 0 {
		p.c.Add(float64(n))
	}
}

type promGauge struct{ g prometheus.Gauge }

func (p promGauge) Add(n int64) { p.g.Add(float64(n)) }

type promHistogram struct{ h prometheus.Histogram }

func (p promHistogram) Record(v float64) { p.h.Observe(v) }
