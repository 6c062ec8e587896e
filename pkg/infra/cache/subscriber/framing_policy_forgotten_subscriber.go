package subscriber

import (
	"context"

	infraCache "github.com/NeuralTrust/TrustFrame/pkg/infra/cache"
	"github.com/NeuralTrust/TrustFrame/pkg/infra/cache/event"
	"github.com/sirupsen/logrus"
)

type FramingPolicyForgottenSubscriber struct {
	logger *logrus.Logger
	store  *infraCache.FramingPolicyStore
}

func NewFramingPolicyForgottenSubscriber(
	logger *logrus.Logger,
	store *infraCache.FramingPolicyStore,
) infraCache.EventSubscriber[event.FramingPolicyForgottenEvent] {
	return &FramingPolicyForgottenSubscriber{
		logger: logger,
		store:  store,
	}
}

func (s FramingPolicyForgottenSubscriber) OnEvent(ctx context.Context, evt event.FramingPolicyForgottenEvent) error {
	if evt.Host == "" {
		return nil
	}
	s.logger.WithField("host", evt.Host).Debug("evicting local framing policy")
	s.store.EvictLocal(evt.Host)
	return nil
}
