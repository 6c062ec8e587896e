package http

import (
	"errors"

	"github.com/NeuralTrust/TrustFrame/pkg/common"
	"github.com/NeuralTrust/TrustFrame/pkg/domain"
	"github.com/NeuralTrust/TrustFrame/pkg/infra/metrics"
	"github.com/NeuralTrust/TrustFrame/pkg/sanitizer"
	"github.com/gofiber/fiber/v2"
)

const (
	ErrInvalidJsonPayload = "invalid JSON payload"
	ErrInternal           = "internal server error"
)

func isInputError(err error) bool {
	return domain.IsInvalidInputError(err) ||
		errors.Is(err, domain.ErrMissingURL) ||
		errors.Is(err, domain.ErrMissingHTML) ||
		errors.Is(err, domain.ErrUnknownProvider)
}

func sendText(c *fiber.Ctx, status int, message string) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.Status(status).SendString(message)
}

func sendHTML(c *fiber.Ctx, status int, body string, headers sanitizer.HeaderBundle) error {
	headers.Apply(func(k, v string) { c.Set(k, v) })
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(status).SendString(body)
}

// sendFallback serves the page that loads rawURL directly, the floor every
// failed mediation degrades to.
func sendFallback(c *fiber.Ctx, status int, rawURL string, headers sanitizer.HeaderBundle) error {
	c.Set(common.FallbackHeader, "true")
	return sendHTML(c, status, renderFallback(rawURL), headers)
}

func emit(c *fiber.Ctx, evt *metrics.Event) {
	collector, _ := c.Locals(metrics.CollectorKey).(*metrics.Collector)
	collector.Emit(evt)
}

func reportCounts(r sanitizer.Report) map[string]int {
	return map[string]int{
		"scripts":     r.ScriptsRemoved,
		"handlers":    r.HandlersRemoved,
		"anchors":     r.AnchorsRemoved,
		"neutralized": r.Neutralized,
		"metas":       r.MetasRemoved,
		"urls":        r.URLsRewritten,
	}
}
