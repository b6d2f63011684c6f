package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	MatchRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "covaid_match_requests_total",
		Help: "Match requests, labeled by subsystem and outcome",
	}, []string{"subsystem", "outcome"})

	MappingsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "covaid_mappings_created_total",
		Help: "Pending donor mappings created by match requests",
	}, []string{"subsystem"})

	CandidateDistance = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "covaid_candidate_distance_km",
		Help:    "Distance between requester and matched donor",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
	}, []string{"subsystem"})

	Accepts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "covaid_match_accepts_total",
		Help: "Accept calls, labeled by subsystem and outcome",
	}, []string{"subsystem", "outcome"})

	UsersRegistered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "covaid_users_registered_total",
		Help: "Total number of users registered",
	})

	AuthFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "covaid_auth_failures_total",
		Help: "Total number of failed logins",
	})

	EventPublishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "covaid_event_publish_failures_total",
		Help: "Match events that could not be published",
	}, []string{"type"})

	EndpointLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "covaid_endpoint_latency_seconds",
		Help:    "Latency of endpoints in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// Middleware records request latency labeled by the matched route pattern.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}
		EndpointLatency.
			WithLabelValues(c.Method(), c.Route().Path, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler exposes the default registry in Prometheus text format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
