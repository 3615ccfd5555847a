package metrics

import (
	"sync"
	"sync/atomic"
)

// BasicProvider keeps instruments in memory and exposes their current values.
// It suits tests, examples and CLI summaries.
type BasicProvider struct {
	mu         sync.RWMutex
	counters   map[string]*BasicCounter
	updowns    map[string]*BasicUpDownCounter
	histograms map[string]*BasicHistogram
}

func NewBasicProvider() *BasicProvider {
	return &BasicProvider{
		counters:   make(map[string]*BasicCounter),
		updowns:    make(map[string]*BasicUpDownCounter),
		histograms: make(map[string]*BasicHistogram),
	}
}

// lookup returns m[name], creating it with mk under the write lock when missing.
func lookup[T any](mu *sync.RWMutex, m map[string]*T, name string, mk func() *T) *T {
	mu.RLock()
	v, ok := m[name]
	mu.RUnlock()
	if ok {
		return v
	}

	mu.Lock()
	defer mu.Unlock()
	if v, ok = m[name]; ok {
		return v
	}
	v = mk()
	m[name] = v
	return v
}

func (p *BasicProvider) Counter(name string, _ ...InstrumentOption) Counter {
	return lookup(&p.mu, p.counters, name, func() *BasicCounter { return &BasicCounter{} })
}

func (p *BasicProvider) UpDownCounter(name string, _ ...InstrumentOption) UpDownCounter {
	return lookup(&p.mu, p.updowns, name, func() *BasicUpDownCounter { return &BasicUpDownCounter{} })
}

func (p *BasicProvider) Histogram(name string, _ ...InstrumentOption) Histogram {
	return lookup(&p.mu, p.histograms, name, func() *BasicHistogram { return &BasicHistogram{} })
}

// Value returns the current value of the counter or up/down counter called name.
// Unknown names read as zero.
func (p *BasicProvider) Value(name string) int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if c, ok := p.counters[name]; ok {
		return c.Snapshot()
	}
	if u, ok := p.updowns[name]; ok {
		return u.Snapshot()
	}
	return 0
}

// HistogramSnapshot returns the state of the histogram called name.
func (p *BasicProvider) HistogramSnapshot(name string) HistSnapshot {
	p.mu.RLock()
	h, ok := p.histograms[name]
	p.mu.RUnlock()
	if !ok {
		return HistSnapshot{}
	}
	return h.Snapshot()
}

type BasicCounter struct{ val atomic.Int64 }

func (c *BasicCounter) Add(n int64)     { c.val.Add(n) }
func (c *BasicCounter) Snapshot() int64 { return c.val.Load() }

type BasicUpDownCounter struct{ val atomic.Int64 }

func (u *BasicUpDownCounter) Add(n int64)     { u.val.Add(n) }
func (u *BasicUpDownCounter) Snapshot() int64 { return u.val.Load() }

// BasicHistogram tracks count, sum, min and max. It keeps no buckets.
type BasicHistogram struct {
	mu    sync.Mutex
	count int64
	sum   float64
	min   float64
	max   float64
}

func (h *BasicHistogram) Record(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.count == 0 || v < h.min {
		h.min = v
	}
	if h.count == 0 || v > h.max {
		h.max = v
	}
	h.count++
	h.sum += v
}

// HistSnapshot is an immutable copy of a BasicHistogram.
type HistSnapshot struct {
	Count int64
	Sum   float64
	Min   float64
	Max   float64
	Mean  float64
}

func (h *BasicHistogram) Snapshot() HistSnapshot {
	h.mu.Lock()
	s := HistSnapshot{Count: h.count, Sum: h.sum, Min: h.min, Max: h.max}
	h.mu.Unlock()
	if s.Count > 0 {
		s.Mean = s.Sum / float64(s.Count)
	}
	return s
}
