package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InFlightGauge   prometheus.Gauge

	PatientsRegisteredTotal prometheus.Counter
	AppointmentsTotal       *prometheus.CounterVec
	PrescriptionsIssued     prometheus.Counter
	RemindersSentTotal      *prometheus.CounterVec

	JobDuration *prometheus.HistogramVec
	JobErrors   *prometheus.CounterVec

	DBConnections prometheus.Gauge
}

func NewCollector(serviceName string) *Collector {
	return &Collector{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, path, and status code.",
		}, []string{"method", "path", "status"}),

		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"method", "path", "status"}),

		InFlightGauge: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),

		PatientsRegisteredTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "clinical",
			Name:      "patients_registered_total",
			Help:      "Total number of patient records registered.",
		}),

		AppointmentsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "clinical",
			Name:      "appointments_total",
			Help:      "Total appointment status transitions by resulting status.",
		}, []string{"status"}),

		PrescriptionsIssued: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "clinical",
			Name:      "prescriptions_issued_total",
			Help:      "Total prescriptions issued.",
		}),

		RemindersSentTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "notification",
			Name:      "reminders_sent_total",
			Help:      "Total reminders sent by kind.",
		}, []string{"kind"}),

		JobDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: serviceName,
			Subsystem: "scheduler",
			Name:      "job_duration_seconds",
			Help:      "Background job run duration distribution.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 30.0, 120.0},
		}, []string{"job"}),

		JobErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "scheduler",
			Name:      "job_errors_total",
			Help:      "Total background job failures. Alert on growth.",
		}, []string{"job"}),

		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: serviceName,
			Subsystem: "db",
			Name:      "open_connections",
			Help:      "Current number of open database connections.",
		}),
	}
}

// ObserveJob records one background job run. Satisfies the scheduler's
// observer interface.
func (c *Collector) ObserveJob(name string, elapsed time.Duration, err error) {
	c.JobDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	if err != nil {
		c.JobErrors.WithLabelValues(name).Inc()
	}
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
