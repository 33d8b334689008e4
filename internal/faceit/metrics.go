package faceit

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics tracks FACEIT API operations
type Metrics struct {
	// Data API request metrics
	DataRequestsTotal   int64
	DataRequestsSuccess int64
	DataRequestsFailure int64

	// Web API request metrics
	WebRequestsTotal   int64
	WebRequestsSuccess int64
	WebRequestsFailure int64

	// Response metrics
	NotFoundResponses int64
	RateLimitHits     int64
	RequestLatency    []time.Duration
	latencyMu         sync.Mutex

	// Cache metrics
	CacheHits   int64
	CacheMisses int64

	LastRequest time.Time

	mu sync.RWMutex
}

var globalMetrics = &Metrics{}

// RecordDataRequest records a Data API request
func RecordDataRequest(latency time.Duration, success bool) {
	atomic.AddInt64(&globalMetrics.DataRequestsTotal, 1)

	if success {
		atomic.AddInt64(&globalMetrics.DataRequestsSuccess, 1)
	} else {
		atomic.AddInt64(&globalMetrics.DataRequestsFailure, 1)
	}

	globalMetrics.latencyMu.Lock()
	globalMetrics.RequestLatency = append(globalMetrics.RequestLatency, latency)
	globalMetrics.latencyMu.Unlock()

	globalMetrics.mu.Lock()
	globalMetrics.LastRequest = time.Now()
	globalMetrics.mu.Unlock()
}

// RecordWebRequest records a web API request
func RecordWebRequest(latency time.Duration, success bool) {
	atomic.AddInt64(&globalMetrics.WebRequestsTotal, 1)

	if success {
		atomic.AddInt64(&globalMetrics.WebRequestsSuccess, 1)
	} else {
		atomic.AddInt64(&globalMetrics.WebRequestsFailure, 1)
	}

	globalMetrics.mu.Lock()
	globalMetrics.LastRequest = time.Now()
	globalMetrics.mu.Unlock()
}

// RecordNotFound records a 404 response
func RecordNotFound() {
	atomic.AddInt64(&globalMetrics.NotFoundResponses, 1)
}

// RecordRateLimit records a rate limit rejection
func RecordRateLimit() {
	atomic.AddInt64(&globalMetrics.RateLimitHits, 1)
}

// RecordCacheHit records a response cache hit
func RecordCacheHit() {
	atomic.AddInt64(&globalMetrics.CacheHits, 1)
}

// RecordCacheMiss records a response cache miss
func RecordCacheMiss() {
	atomic.AddInt64(&globalMetrics.CacheMisses, 1)
}

// GetMetrics returns a snapshot of current metrics
func GetMetrics() Metrics {
	globalMetrics.mu.RLock()
	defer globalMetrics.mu.RUnlock()

	return Metrics{
		DataRequestsTotal:   atomic.LoadInt64(&globalMetrics.DataRequestsTotal),
		DataRequestsSuccess: atomic.LoadInt64(&globalMetrics.DataRequestsSuccess),
		DataRequestsFailure: atomic.LoadInt64(&globalMetrics.DataRequestsFailure),
		WebRequestsTotal:    atomic.LoadInt64(&globalMetrics.WebRequestsTotal),
		WebRequestsSuccess:  atomic.LoadInt64(&globalMetrics.WebRequestsSuccess),
		WebRequestsFailure:  atomic.LoadInt64(&globalMetrics.WebRequestsFailure),
		NotFoundResponses:   atomic.LoadInt64(&globalMetrics.NotFoundResponses),
		RateLimitHits:       atomic.LoadInt64(&globalMetrics.RateLimitHits),
		CacheHits:           atomic.LoadInt64(&globalMetrics.CacheHits),
		CacheMisses:         atomic.LoadInt64(&globalMetrics.CacheMisses),
		LastRequest:         globalMetrics.LastRequest,
	}
}

// ResetMetrics resets all metrics
func ResetMetrics() {
	atomic.StoreInt64(&globalMetrics.DataRequestsTotal, 0)
	atomic.StoreInt64(&globalMetrics.DataRequestsSuccess, 0)
	atomic.StoreInt64(&globalMetrics.DataRequestsFailure, 0)
	atomic.StoreInt64(&globalMetrics.WebRequestsTotal, 0)
	atomic.StoreInt64(&globalMetrics.WebRequestsSuccess, 0)
	atomic.StoreInt64(&globalMetrics.WebRequestsFailure, 0)
	atomic.StoreInt64(&globalMetrics.NotFoundResponses, 0)
	atomic.StoreInt64(&globalMetrics.RateLimitHits, 0)
	atomic.StoreInt64(&globalMetrics.CacheHits, 0)
	atomic.StoreInt64(&globalMetrics.CacheMisses, 0)

	globalMetrics.mu.Lock()
	defer globalMetrics.mu.Unlock()
	globalMetrics.RequestLatency = nil
	globalMetrics.LastRequest = time.Time{}
}
