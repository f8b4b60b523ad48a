package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SignupOutcomes counts signup attempts by result. Capacity rejections are
// the interesting signal: a spike means shifts are underprovisioned.
var SignupOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pantryshift_signup_outcomes_total",
	Help: "Signup attempts by outcome (created, conflict, capacity_full, cancelled).",
}, []string{"outcome"})

// InitMetrics creates the Prometheus middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware returns the request-instrumentation handler.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
