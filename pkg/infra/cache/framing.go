package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/NeuralTrust/TrustFrame/pkg/infra/cache/event"
	"github.com/sirupsen/logrus"
)

const framingKeyPattern = "framing:hostile:"

// FramingMemory remembers hosts that refused to be framed. It stores the
// host and the observed reason only, never a document.
type FramingMemory interface {
	Remember(ctx context.Context, host, reason string) error
	Hostile(ctx context.Context, host string) (bool, error)
	Forget(ctx context.Context, host string) error
}

// FramingPolicyStore keeps a local TTL map in front of Redis. Redis is
// optional; without it the memory is per process.
type FramingPolicyStore struct {
	client    Client
	local     *TTLMap[string]
	ttl       time.Duration
	logger    *logrus.Logger
	publisher EventPublisher
}

type FramingOption func(*FramingPolicyStore)

// WithForgetPublisher broadcasts Forget so other replicas evict their
// local entry.
func WithForgetPublisher(p EventPublisher) FramingOption {
	return func(s *FramingPolicyStore) { s.publisher = p }
}

func NewFramingPolicyStore(client Client, ttl time.Duration, logger *logrus.Logger, opts ...FramingOption) *FramingPolicyStore {
	s := &FramingPolicyStore{
		client: client,
		local:  NewTTLMap[string](ttl),
		ttl:    ttl,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func framingKey(host string) string {
	return framingKeyPattern + strings.ToLower(strings.TrimSpace(host))
}

func (s *FramingPolicyStore) Remember(ctx context.Context, host, reason string) error {
	key := framingKey(host)
	s.local.Set(key, reason)
	if s.client == nil {
		return nil
	}
	if err := s.client.Set(ctx, key, reason, s.ttl); err != nil {
		s.logger.WithError(err).WithField("host", host).Warn("failed to persist framing policy")
		return err
	}
	return nil
}

// Hostile reports whether host is known to block framing. A Redis failure
// is returned alongside a false answer; callers treat it as unknown.
func (s *FramingPolicyStore) Hostile(ctx context.Context, host string) (bool, error) {
	key := framingKey(host)
	if _, ok := s.local.Get(key); ok {
		return true, nil
	}
	if s.client == nil {
		return false, nil
	}
	reason, err := s.client.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	s.local.Set(key, reason)
	return true, nil
}

func (s *FramingPolicyStore) Forget(ctx context.Context, host string) error {
	s.EvictLocal(host)
	if s.client == nil {
		return nil
	}
	if err := s.client.Delete(ctx, framingKey(host)); err != nil {
		return err
	}
	if s.publisher != nil {
		ev := event.FramingPolicyForgottenEvent{Host: strings.ToLower(strings.TrimSpace(host))}
		if err := s.publisher.Publish(ctx, ev); err != nil {
			s.logger.WithError(err).WithField("host", host).Warn("failed to broadcast framing policy eviction")
		}
	}
	return nil
}

// EvictLocal drops the in-process entry for host only.
func (s *FramingPolicyStore) EvictLocal(host string) {
	s.local.Delete(framingKey(host))
}

// KnownLocally reports whether this process holds a verdict for host,
// without a Redis round trip.
func (s *FramingPolicyStore) KnownLocally(host string) bool {
	_, ok := s.local.Get(framingKey(host))
	return ok
}
