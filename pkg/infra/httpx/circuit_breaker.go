package httpx

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/NeuralTrust/TrustFrame/pkg/domain"
	"github.com/sony/gobreaker"
)

type CircuitBreaker interface {
	Execute(fn func() error) error
	State() gobreaker.State
}

type circuitBreakerWrapper struct {
	breaker *gobreaker.CircuitBreaker
}

func NewCircuitBreaker(name string, timeout time.Duration, maxFailures uint32) CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
	}
	return &circuitBreakerWrapper{
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// Execute runs fn through the breaker. A rejected call wraps
// domain.ErrCircuitOpen.
func (g *circuitBreakerWrapper) Execute(fn func() error) error {
	_, err := g.breaker.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("breaker (%s): %w", g.breaker.Name(), domain.ErrCircuitOpen)
	}
	return fmt.Errorf("breaker (%s): %w", g.breaker.Name(), err)
}

func (g *circuitBreakerWrapper) State() gobreaker.State {
	return g.breaker.State()
}

// HostBreakers hands out one breaker per upstream host.
type HostBreakers struct {
	mu          sync.Mutex
	breakers    map[string]CircuitBreaker
	timeout     time.Duration
	maxFailures uint32
}

func NewHostBreakers(timeout time.Duration, maxFailures uint32) *HostBreakers {
	return &HostBreakers{
		breakers:    make(map[string]CircuitBreaker),
		timeout:     timeout,
		maxFailures: maxFailures,
	}
}

func (h *HostBreakers) For(host string) CircuitBreaker {
	host = strings.ToLower(host)
	h.mu.Lock()
	defer h.mu.Unlock()
	b, ok := h.breakers[host]
	if !ok {
		b = NewCircuitBreaker(host, h.timeout, h.maxFailures)
		h.breakers[host] = b
	}
	return b
}
