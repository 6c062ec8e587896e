package metrics

import "sync"

const CollectorKey = "__metrics_collector"

type Config struct {
	EnableUpstreamEvents bool
	EnableGuardEvents    bool
}

// Collector gathers the events of one request; the worker flushes it once
// the response is written.
type Collector struct {
	requestID string
	mu        sync.Mutex
	events    []*Event
	cfg       *Config
}

func NewCollector(cfg *Config, opts ...Option) *Collector {
	o := collectorOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.requestID == "" {
		o.requestID = newRequestID()
	}
	if cfg == nil {
		cfg = &Config{}
	}
	return &Collector{
		requestID: o.requestID,
		cfg:       cfg,
	}
}

func (rc *Collector) RequestID() string {
	return rc.requestID
}

// Emit is safe on a nil collector.
func (rc *Collector) Emit(evt *Event) {
	if rc == nil || evt == nil {
		return
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if evt.Kind == KindUpstream && !rc.cfg.EnableUpstreamEvents {
		return
	}
	if evt.Kind == KindGuard && !rc.cfg.EnableGuardEvents {
		return
	}

	evt.RequestID = rc.requestID
	rc.events = append(rc.events, evt)
}

func (rc *Collector) Flush() []*Event {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	out := make([]*Event, len(rc.events))
	copy(out, rc.events)
	rc.events = nil
	return out
}
