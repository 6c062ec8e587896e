package metrics

import "time"

type Kind string

const (
	KindSanitize Kind = "sanitize"
	KindDispatch Kind = "dispatch"
	KindUpstream Kind = "upstream"
	KindGuard    Kind = "guard"
)

// Event is one observation made while serving a request. Only the fields
// relevant to its Kind are set.
type Event struct {
	Kind      Kind
	RequestID string
	Name      string
	Action    string
	Outcome   string
	Fallback  bool
	Blocked   bool
	Host      string
	Status    int
	Latency   time.Duration
	Counts    map[string]int
}

func NewSanitizeEvent(endpoint, outcome string, counts map[string]int) *Event {
	return &Event{
		Kind:     KindSanitize,
		Name:     endpoint,
		Outcome:  outcome,
		Fallback: outcome == OutcomeFallback,
		Counts:   counts,
	}
}

func NewDispatchEvent(strategy string, fallback bool, reason string) *Event {
	return &Event{
		Kind:     KindDispatch,
		Name:     strategy,
		Outcome:  reason,
		Fallback: fallback,
	}
}

func NewUpstreamEvent(host string, status int, latency time.Duration) *Event {
	return &Event{
		Kind:    KindUpstream,
		Host:    host,
		Status:  status,
		Latency: latency,
	}
}

func NewGuardEvent(guard, action, verdict string, blocked bool) *Event {
	return &Event{
		Kind:    KindGuard,
		Name:    guard,
		Action:  action,
		Outcome: verdict,
		Blocked: blocked,
	}
}

const (
	OutcomeOK       = "ok"
	OutcomeFallback = "fallback"
	OutcomeError    = "error"
)

// RequestInfo describes the finished request the events belong to.
type RequestInfo struct {
	Route  string
	Method string
	Status int
	Start  time.Time
	End    time.Time
}
