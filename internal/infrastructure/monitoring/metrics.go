package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type HTTPMetrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

type DBMetrics struct {
	QueryDuration *prometheus.HistogramVec
}

type CacheMetrics struct {
	HitsTotal   prometheus.Counter
	MissesTotal prometheus.Counter
	Entries     prometheus.Gauge
}

type BusinessMetrics struct {
	CustomersCreatedTotal prometheus.Counter
	CustomersTotal        prometheus.Gauge
	CustomersActive       prometheus.Gauge
	CustomersInactive     prometheus.Gauge
	IndustriesTotal       prometheus.Gauge
}

var (
	HTTP = HTTPMetrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "customer_service_http_requests_total",
				Help: "Total number of HTTP requests received.",
			},
			[]string{"method", "path", "code"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "customer_service_http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "code"},
		),
	}

	DB = DBMetrics{
		QueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "customer_service_db_query_duration_seconds",
				Help:    "Histogram of database query latencies.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"query_name", "status"},
		),
	}

	Cache = CacheMetrics{
		HitsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "customer_service_cache_hits_total",
				Help: "Total number of customer cache hits.",
			},
		),
		MissesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "customer_service_cache_misses_total",
				Help: "Total number of customer cache misses.",
			},
		),
		Entries: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "customer_service_cache_entries",
				Help: "Current number of entries held in the customer cache.",
			},
		),
	}

	Business = BusinessMetrics{
		CustomersCreatedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "customer_service_customers_created_total",
				Help: "Total number of customers successfully created.",
			},
		),
		CustomersTotal: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "customer_service_customers_total",
				Help: "Total number of customer records at the last stats snapshot.",
			},
		),
		CustomersActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "customer_service_customers_active",
				Help: "Number of ACTIVE customers at the last stats snapshot.",
			},
		),
		CustomersInactive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "customer_service_customers_inactive",
				Help: "Number of INACTIVE customers at the last stats snapshot.",
			},
		),
		IndustriesTotal: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "customer_service_industries_total",
				Help: "Number of distinct industries among active customers at the last stats snapshot.",
			},
		),
	}
)
