package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

// Sales collects sale-engine outcomes. A nil *Sales records nothing.
type Sales struct {
	committed      prometheus.Counter
	revenue        prometheus.Counter
	rejected       *prometheus.CounterVec
	commitDuration prometheus.Histogram
}

func NewSales(reg prometheus.Registerer) *Sales {
	m := &Sales{
		committed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pos_sales_committed_total",
			Help: "Total number of committed sales",
		}),
		revenue: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pos_sales_revenue_total",
			Help: "Sum of committed sale totals",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pos_sales_rejected_total",
			Help: "Total number of rejected sales by reason",
		}, []string{"reason"}),
		commitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pos_sale_commit_duration_seconds",
			Help:    "Duration of the sale commit transaction",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.committed, m.revenue, m.rejected, m.commitDuration)
	return m
}

func (m *Sales) ObserveCommit(total decimal.Decimal, took time.Duration) {
	if m == nil {
		return
	}
	m.committed.Inc()
	m.revenue.Add(total.InexactFloat64())
	m.commitDuration.Observe(took.Seconds())
}

func (m *Sales) ObserveRejection(reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(reason).Inc()
}

// HTTP collects request counts and latencies by route pattern.
type HTTP struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewHTTP(reg prometheus.Registerer) *HTTP {
	m := &HTTP{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

func (m *HTTP) Observe(method, route string, status int, took time.Duration) {
	if m == nil {
		return
	}
	statusStr := strconv.Itoa(status)
	m.requests.WithLabelValues(method, route, statusStr).Inc()
	m.duration.WithLabelValues(method, route, statusStr).Observe(took.Seconds())
}

func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
