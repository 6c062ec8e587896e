package middleware

import (
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/NeuralTrust/TrustFrame/pkg/infra/cache"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// clientIPHeaders are checked in order before the socket address.
var clientIPHeaders = []string{
	"X-Real-IP",
	"X-Forwarded-For",
	"True-Client-IP",
	"CF-Connecting-IP",
}

var timeNow = time.Now

type rateLimitMiddleware struct {
	logger   *logrus.Logger
	limiter  cache.RateLimiter
	prefixes []string
}

// NewRateLimitMiddleware throttles the routes that make the server fetch a
// third-party page, per client IP. Other routes pass untouched.
func NewRateLimitMiddleware(logger *logrus.Logger, limiter cache.RateLimiter, prefixes []string) Middleware {
	return &rateLimitMiddleware{
		logger:   logger,
		limiter:  limiter,
		prefixes: prefixes,
	}
}

func (m *rateLimitMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodOptions || !m.applies(c.Path()) {
			return c.Next()
		}

		client := clientIP(c)
		res, err := m.limiter.Allow(c.UserContext(), client)
		if err != nil {
			// fail open
			m.logger.WithError(err).WithField("client", client).Warn("rate limiter unavailable")
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(res.Reset.Unix(), 10))
		if !res.Allowed {
			retryAfter := int(res.Reset.Sub(timeNow()).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))
			m.logger.WithFields(logrus.Fields{
				"client": client,
				"path":   c.Path(),
			}).Debug("rate limit exceeded")
			c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
			return c.Status(fiber.StatusTooManyRequests).SendString("rate limit exceeded")
		}
		return c.Next()
	}
}

func (m *rateLimitMiddleware) applies(path string) bool {
	for _, p := range m.prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func clientIP(c *fiber.Ctx) string {
	for _, h := range clientIPHeaders {
		v := c.Get(h)
		if v == "" {
			continue
		}
		first := strings.TrimSpace(strings.Split(v, ",")[0])
		if net.ParseIP(first) != nil {
			return first
		}
	}
	return c.IP()
}
