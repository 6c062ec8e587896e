package middleware

import (
	"context"
	"time"

	"github.com/NeuralTrust/TrustFrame/pkg/common"
	"github.com/NeuralTrust/TrustFrame/pkg/infra/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type metricsMiddleware struct {
	logger *logrus.Logger
	worker metrics.Worker
	cfg    *metrics.Config
}

func NewMetricsMiddleware(logger *logrus.Logger, worker metrics.Worker, cfg *metrics.Config) Middleware {
	return &metricsMiddleware{
		logger: logger,
		worker: worker,
		cfg:    cfg,
	}
}

func (m *metricsMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var opts []metrics.Option
		if id, ok := c.Locals(common.RequestIDContextKey).(string); ok {
			opts = append(opts, metrics.WithRequestID(id))
		}
		collector := metrics.NewCollector(m.cfg, opts...)

		c.Locals(metrics.CollectorKey, collector)
		c.SetUserContext(context.WithValue(c.UserContext(), metrics.CollectorKey, collector))

		startTime, ok := c.Locals(common.LatencyContextKey).(time.Time)
		if !ok {
			startTime = time.Now()
		}

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		route := c.Path()
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path
		}
		m.worker.Process(collector, metrics.RequestInfo{
			Route:  route,
			Method: c.Method(),
			Status: status,
			Start:  startTime,
			End:    time.Now(),
		})
		return err
	}
}

// Collector returns the request's metrics collector, or nil.
func Collector(c *fiber.Ctx) *metrics.Collector {
	collector, _ := c.Locals(metrics.CollectorKey).(*metrics.Collector)
	return collector
}
