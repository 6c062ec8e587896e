package middleware

import (
	"context"
	"time"

	"github.com/NeuralTrust/TrustFrame/pkg/common"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type requestContextMiddleware struct {
	logger *logrus.Logger
}

// NewRequestContextMiddleware stamps every request with an ID, its start
// time and the client User-Agent used to pick the upstream one.
func NewRequestContextMiddleware(logger *logrus.Logger) Middleware {
	return &requestContextMiddleware{logger: logger}
}

func (m *requestContextMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(common.RequestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.New().String()
		}
		start := time.Now()

		c.Locals(common.RequestIDContextKey, requestID)
		c.Locals(common.LatencyContextKey, start)
		c.Set(common.RequestIDHeader, requestID)

		ctx := context.WithValue(c.UserContext(), common.RequestIDContextKey, requestID)
		ctx = context.WithValue(ctx, common.LatencyContextKey, start)
		ctx = context.WithValue(ctx, common.ClientUAContextKey, c.Get(fiber.HeaderUserAgent))
		c.SetUserContext(ctx)

		return c.Next()
	}
}

func RequestID(c *fiber.Ctx) string {
	id, _ := c.Locals(common.RequestIDContextKey).(string)
	return id
}
