// Package monitor tracks runtime performance of the tick loop and the API.
package monitor

import (
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// SystemMetrics tracks overall system performance.
type SystemMetrics struct {
	// Latency histograms
	TickLatency  *LatencyHistogram
	QuoteLatency *LatencyHistogram
	APILatency   *LatencyHistogram

	// Counters
	ticksProcessed uint64
	tradesOpened   uint64
	tradesClosed   uint64
	quoteErrors    uint64
}

// LatencyHistogram tracks latency samples over a sliding window. Stats are
// recomputed lazily, only when samples have changed.
type LatencyHistogram struct {
	mu          sync.Mutex
	samples     []float64
	maxSize     int
	dirty       bool
	cachedStats LatencyStats
}

func NewSystemMetrics() *SystemMetrics {
	return &SystemMetrics{
		TickLatency:  NewLatencyHistogram(1000),
		QuoteLatency: NewLatencyHistogram(1000),
		APILatency:   NewLatencyHistogram(1000),
	}
}

func NewLatencyHistogram(size int) *LatencyHistogram {
	if size <= 0 {
		size = 1000
	}
	return &LatencyHistogram{
		samples: make([]float64, 0, size),
		maxSize: size,
		dirty:   true,
	}
}

// Record adds a latency sample in milliseconds.
func (h *LatencyHistogram) Record(latencyMs float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.samples) >= h.maxSize {
		h.samples = h.samples[1:]
	}
	h.samples = append(h.samples, latencyMs)
	h.dirty = true
}

// RecordDuration converts duration to ms and records.
func (h *LatencyHistogram) RecordDuration(d time.Duration) {
	h.Record(float64(d.Nanoseconds()) / 1e6)
}

// Stats returns min, max, avg, p50, p95, p99 over the window.
func (h *LatencyHistogram) Stats() LatencyStats {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.dirty && h.cachedStats.Count > 0 {
		return h.cachedStats
	}

	n := len(h.samples)
	if n == 0 {
		return LatencyStats{}
	}

	sorted := make([]float64, n)
	copy(sorted, h.samples)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}

	h.cachedStats = LatencyStats{
		Min:   sorted[0],
		Max:   sorted[n-1],
		Avg:   sum / float64(n),
		P50:   sorted[n/2],
		P95:   sorted[int(float64(n)*0.95)],
		P99:   sorted[int(float64(n)*0.99)],
		Count: n,
	}
	h.dirty = false

	return h.cachedStats
}

// LatencyStats holds computed latency statistics.
type LatencyStats struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Avg   float64 `json:"avg"`
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
	P99   float64 `json:"p99"`
	Count int     `json:"count"`
}

// IncrementTicks increments the processed ticks counter.
func (m *SystemMetrics) IncrementTicks() {
	atomic.AddUint64(&m.ticksProcessed, 1)
}

// IncrementTradesOpened increments the opened trades counter.
func (m *SystemMetrics) IncrementTradesOpened() {
	atomic.AddUint64(&m.tradesOpened, 1)
}

// IncrementTradesClosed increments the closed trades counter.
func (m *SystemMetrics) IncrementTradesClosed() {
	atomic.AddUint64(&m.tradesClosed, 1)
}

// IncrementQuoteErrors increments the failed quote fetch counter.
func (m *SystemMetrics) IncrementQuoteErrors() {
	atomic.AddUint64(&m.quoteErrors, 1)
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	TickLatency    LatencyStats `json:"tick_latency"`
	QuoteLatency   LatencyStats `json:"quote_latency"`
	APILatency     LatencyStats `json:"api_latency"`
	TicksProcessed uint64       `json:"ticks_processed"`
	TradesOpened   uint64       `json:"trades_opened"`
	TradesClosed   uint64       `json:"trades_closed"`
	QuoteErrors    uint64       `json:"quote_errors"`
	GoroutineCount int          `json:"goroutine_count"`
	HeapAlloc      uint64       `json:"heap_alloc_bytes"`
	HeapSys        uint64       `json:"heap_sys_bytes"`
	Timestamp      time.Time    `json:"timestamp"`
}

// GetSnapshot returns a point-in-time metrics snapshot.
func (m *SystemMetrics) GetSnapshot() MetricsSnapshot {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return MetricsSnapshot{
		TickLatency:    m.TickLatency.Stats(),
		QuoteLatency:   m.QuoteLatency.Stats(),
		APILatency:     m.APILatency.Stats(),
		TicksProcessed: atomic.LoadUint64(&m.ticksProcessed),
		TradesOpened:   atomic.LoadUint64(&m.tradesOpened),
		TradesClosed:   atomic.LoadUint64(&m.tradesClosed),
		QuoteErrors:    atomic.LoadUint64(&m.quoteErrors),
		GoroutineCount: runtime.NumGoroutine(),
		HeapAlloc:      memStats.HeapAlloc,
		HeapSys:        memStats.HeapSys,
		Timestamp:      time.Now(),
	}
}

// Timer helps measure operation duration.
type Timer struct {
	start     time.Time
	histogram *LatencyHistogram
}

// NewTimer creates a timer that records to the given histogram on Stop.
func NewTimer(h *LatencyHistogram) *Timer {
	return &Timer{start: time.Now(), histogram: h}
}

// Stop records elapsed time to the histogram.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	if t.histogram != nil {
		t.histogram.RecordDuration(elapsed)
	}
	return elapsed
}
