package middleware

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"
)

// Metrics stores application counters
type Metrics struct {
	RequestsTotal   uint64
	RequestsFailed  uint64
	BatchesTotal    uint64
	BatchesRunning  uint64
	BundlesTotal    uint64
	BundlesFailed   uint64
	TokensTotal     uint64
	StartTime       time.Time
}

var globalMetrics = &Metrics{
	StartTime: time.Now(),
}

// IncrementRequests tracks one incoming HTTP request
func IncrementRequests() { atomic.AddUint64(&globalMetrics.RequestsTotal, 1) }

// IncrementRequestsFailed tracks a non-2xx/3xx response
func IncrementRequestsFailed() { atomic.AddUint64(&globalMetrics.RequestsFailed, 1) }

// IncrementBatches tracks one started analysis batch
func IncrementBatches() { atomic.AddUint64(&globalMetrics.BatchesTotal, 1) }

// IncrementBatchesRunning marks a batch in flight
func IncrementBatchesRunning() { atomic.AddUint64(&globalMetrics.BatchesRunning, 1) }

// DecrementBatchesRunning marks a batch finished
func DecrementBatchesRunning() { atomic.AddUint64(&globalMetrics.BatchesRunning, ^uint64(0)) }

// AddBundles adds per-batch bundle totals
func AddBundles(total, failed int) {
	atomic.AddUint64(&globalMetrics.BundlesTotal, uint64(total))
	atomic.AddUint64(&globalMetrics.BundlesFailed, uint64(failed))
}

// AddTokens adds consumed tokens for one batch
func AddTokens(n int) {
	if n > 0 {
		atomic.AddUint64(&globalMetrics.TokensTotal, uint64(n))
	}
}

// GetMetrics returns current metrics
func GetMetrics() map[string]interface{} {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return map[string]interface{}{
		"requests_total":  atomic.LoadUint64(&globalMetrics.RequestsTotal),
		"requests_failed": atomic.LoadUint64(&globalMetrics.RequestsFailed),
		"batches_total":   atomic.LoadUint64(&globalMetrics.BatchesTotal),
		"batches_running": atomic.LoadUint64(&globalMetrics.BatchesRunning),
		"bundles_total":   atomic.LoadUint64(&globalMetrics.BundlesTotal),
		"bundles_failed":  atomic.LoadUint64(&globalMetrics.BundlesFailed),
		"tokens_total":    atomic.LoadUint64(&globalMetrics.TokensTotal),
		"uptime_seconds":  time.Since(globalMetrics.StartTime).Seconds(),
		"memory": map[string]interface{}{
			"alloc_bytes": m.Alloc,
			"sys_bytes":   m.Sys,
			"num_gc":      m.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}
}

// MetricsMiddleware tracks request metrics
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		IncrementRequests()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		if wrapped.statusCode >= 400 {
			IncrementRequestsFailed()
		}
	})
}

// MetricsHandler returns metrics as JSON
func MetricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(GetMetrics())
}
