// monitor/monitor.go
package monitor

import (
	"expvar"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	ActiveSessions  prometheus.Gauge
	RequestsTotal   prometheus.Counter
	RequestLatency  prometheus.Histogram
	CheckoutsTotal  prometheus.Counter
	RevenueTotalVND prometheus.Counter
}

func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of live login sessions",
		}),
		RequestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests served",
		}),
		RequestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_latency_seconds",
			Help:      "HTTP request handling latency",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 10),
		}),
		CheckoutsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkouts_total",
			Help:      "Total number of completed checkouts",
		}),
		RevenueTotalVND: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "revenue_vnd_total",
			Help:      "Total revenue from checkouts, in VND",
		}),
	}

	prometheus.MustRegister(
		m.ActiveSessions,
		m.RequestsTotal,
		m.RequestLatency,
		m.CheckoutsTotal,
		m.RevenueTotalVND,
	)

	return m
}

type Monitor struct {
	metrics      *Metrics
	startTime    time.Time
	requestCount int64
	mutex        sync.Mutex
}

func NewMonitor(namespace string) *Monitor {
	return &Monitor{
		metrics:   NewMetrics(namespace),
		startTime: time.Now(),
	}
}

func (m *Monitor) StartServer(addr string) {
	http.Handle("/metrics", promhttp.Handler())

	expvar.Publish("uptime", expvar.Func(func() interface{} {
		return time.Since(m.startTime).Seconds()
	}))

	expvar.Publish("requests", expvar.Func(func() interface{} {
		m.mutex.Lock()
		defer m.mutex.Unlock()
		return m.requestCount
	}))

	go http.ListenAndServe(addr, nil)
}

func (m *Monitor) SetActiveSessions(count int) {
	m.metrics.ActiveSessions.Set(float64(count))
}

func (m *Monitor) IncRequests() {
	m.metrics.RequestsTotal.Inc()
	m.mutex.Lock()
	m.requestCount++
	m.mutex.Unlock()
}

func (m *Monitor) ObserveRequestLatency(duration time.Duration) {
	m.metrics.RequestLatency.Observe(duration.Seconds())
}

func (m *Monitor) IncCheckouts() {
	m.metrics.CheckoutsTotal.Inc()
}

func (m *Monitor) AddRevenue(amount int64) {
	m.metrics.RevenueTotalVND.Add(float64(amount))
}
