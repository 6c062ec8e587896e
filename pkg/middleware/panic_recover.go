package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type panicRecoverMiddleware struct {
	logger *logrus.Logger
}

func NewPanicRecoverMiddleware(logger *logrus.Logger) Middleware {
	return &panicRecoverMiddleware{logger: logger}
}

// Middleware turns a panic into a plain-text 500. Proxy responses are
// rendered inside iframes, so no JSON error body is written here.
func (m *panicRecoverMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				m.logger.WithFields(logrus.Fields{
					"error": r,
					"path":  c.Path(),
				}).Error("HTTP server panic recovered")

				c.Response().Reset()
				c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
				err = c.Status(fiber.StatusInternalServerError).SendString("internal server error")
			}
		}()

		return c.Next()
	}
}
