package metrics

import (
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/NeuralTrust/TrustFrame/pkg/infra/prometheus"
	"github.com/sirupsen/logrus"
)

const defaultQueueSize = 1000

type Worker interface {
	Shutdown()
	StartWorkers(n int)
	Process(collector *Collector, req RequestInfo)
}

type worker struct {
	logger   *logrus.Logger
	taskChan chan func()
	done     chan struct{}
	wg       sync.WaitGroup
	closed   atomic.Bool
	once     sync.Once
}

func NewWorker(logger *logrus.Logger) Worker {
	return &worker{
		logger:   logger,
		taskChan: make(chan func(), defaultQueueSize),
		done:     make(chan struct{}),
	}
}

// Shutdown stops accepting tasks and waits for queued ones to finish.
func (m *worker) Shutdown() {
	m.once.Do(func() {
		m.closed.Store(true)
		m.logger.Info("shutting down metrics workers")
		close(m.done)
		m.wg.Wait()
		m.logger.Info("metrics workers stopped")
	})
}

func (m *worker) Process(collector *Collector, req RequestInfo) {
	m.enqueueTask(func() {
		m.registryRequest(req)
	}, req.Route)

	if collector == nil {
		return
	}
	m.enqueueTask(func() {
		for _, evt := range collector.Flush() {
			m.registryEvent(evt)
		}
	}, req.Route)
}

func (m *worker) registryRequest(req RequestInfo) {
	route := req.Route
	if !prometheus.Config.EnablePerRoute {
		route = "all"
	}
	prometheus.RequestsTotal.WithLabelValues(route, req.Method, statusClass(req.Status)).Inc()
	if prometheus.Config.EnableLatency && !req.End.IsZero() {
		prometheus.RequestLatency.WithLabelValues(route).
			Observe(float64(req.End.Sub(req.Start).Milliseconds()))
	}
}

func (m *worker) registryEvent(evt *Event) {
	switch evt.Kind {
	case KindSanitize:
		prometheus.SanitizationsTotal.WithLabelValues(evt.Name, evt.Outcome).Inc()
		for kind, n := range evt.Counts {
			if n > 0 {
				prometheus.SanitizerRemovals.WithLabelValues(kind).Add(float64(n))
			}
		}
		if evt.Fallback {
			prometheus.FallbacksTotal.WithLabelValues("sanitize").Inc()
		}
	case KindDispatch:
		prometheus.DispatchTotal.WithLabelValues(evt.Name, strconv.FormatBool(evt.Fallback)).Inc()
		if evt.Fallback {
			reason := evt.Outcome
			if reason == "" {
				reason = "unknown"
			}
			prometheus.FallbacksTotal.WithLabelValues(reason).Inc()
		}
	case KindUpstream:
		if prometheus.Config.EnableUpstreamLatency {
			prometheus.UpstreamLatency.WithLabelValues(evt.Host, statusClass(evt.Status)).
				Observe(float64(evt.Latency.Milliseconds()))
		}
	case KindGuard:
		prometheus.GuardDecisionsTotal.WithLabelValues(
			evt.Name, evt.Action, evt.Outcome, strconv.FormatBool(evt.Blocked),
		).Inc()
	default:
		m.logger.WithField("kind", evt.Kind).Warn("unknown metrics event")
	}
}

func (m *worker) StartWorkers(n int) {
	m.logger.WithField("workers", n).Info("starting metrics workers")
	for i := 0; i < n; i++ {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			for {
				select {
				case task := <-m.taskChan:
					task()
				case <-m.done:
					for {
						select {
						case task := <-m.taskChan:
							task()
						default:
							return
						}
					}
				}
			}
		}()
	}
}

func (m *worker) enqueueTask(task func(), route string) {
	if m.closed.Load() {
		return
	}
	select {
	case m.taskChan <- task:
	default:
		m.logger.WithField("route", route).Warn("taskChan is full, dropping metrics task")
	}
}

func statusClass(code int) string {
	if code <= 0 {
		return "5xx"
	}
	return fmt.Sprintf("%dxx", code/100)
}
