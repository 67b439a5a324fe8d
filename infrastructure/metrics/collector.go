// Package metrics records handler invocations as Prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/reglet-dev/lambda-bridge/application/registry"
	"github.com/reglet-dev/lambda-bridge/domain/ports"
	"github.com/reglet-dev/lambda-bridge/internal/invocation"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Collector holds the invocation collectors.
type Collector struct {
	mu sync.Mutex

	invocationsTotal *prometheus.CounterVec
	durationSeconds  *prometheus.HistogramVec
	inFlight         prometheus.Gauge

	registerer prometheus.Registerer
	registered bool
}

// NewCollector creates a collector that registers with registerer, or with
// the default registerer when nil.
func NewCollector(registerer prometheus.Registerer) *Collector {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &Collector{
		registerer: registerer,
		invocationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lambda_bridge",
				Subsystem: "handler",
				Name:      "invocations_total",
				Help:      "Total number of handler invocations by outcome",
			},
			[]string{"handler", "outcome"},
		),
		durationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "lambda_bridge",
				Subsystem: "handler",
				Name:      "duration_seconds",
				Help:      "Handler invocation duration",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"handler"},
		),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lambda_bridge",
			Subsystem: "handler",
			Name:      "in_flight",
			Help:      "Invocations currently running",
		}),
	}
}

// Register registers the collectors. Safe to call multiple times.
func (c *Collector) Register() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.registered {
		return nil
	}
	for _, col := range []prometheus.Collector{c.invocationsTotal, c.durationSeconds, c.inFlight} {
		if err := c.registerer.Register(col); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return err
			}
		}
	}
	c.registered = true
	return nil
}

// Observe records one finished invocation.
func (c *Collector) Observe(handler string, d time.Duration, err error) {
	c.invocationsTotal.WithLabelValues(handler, Outcome(err)).Inc()
	c.durationSeconds.WithLabelValues(handler).Observe(d.Seconds())
}

// Track marks an invocation as started and returns the function that
// records its end.
func (c *Collector) Track(handler string) func(err error) {
	start := time.Now()
	c.inFlight.Inc()
	return func(err error) {
		c.inFlight.Dec()
		c.Observe(handler, time.Since(start), err)
	}
}

// Outcome classifies an invocation result.
func Outcome(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	return OutcomeError
}

// Middleware returns a registry middleware recording every invocation in c.
func Middleware(c *Collector) registry.Middleware {
	return func(next registry.InvokeFunc) registry.InvokeFunc {
		return func(ctx context.Context, event any, host ports.HostObject) (any, error) {
			done := c.Track(invocation.Handler(ctx))
			out, err := next(ctx, event, host)
			done(err)
			return out, err
		}
	}
}
