package http

import (
	"time"

	"github.com/NeuralTrust/TrustFrame/pkg/dispatcher"
	"github.com/NeuralTrust/TrustFrame/pkg/domain/mediation"
	"github.com/NeuralTrust/TrustFrame/pkg/infra/metrics"
	"github.com/NeuralTrust/TrustFrame/pkg/sanitizer"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type sanitizedHandler struct {
	logger     *logrus.Logger
	dispatcher *dispatcher.Dispatcher
	sanitizer  *sanitizer.Sanitizer
	timeout    time.Duration
}

func NewSanitizedHandler(
	logger *logrus.Logger,
	d *dispatcher.Dispatcher,
	s *sanitizer.Sanitizer,
	timeout time.Duration,
) Handler {
	return &sanitizedHandler{
		logger:     logger,
		dispatcher: d,
		sanitizer:  s,
		timeout:    timeout,
	}
}

// Handle @Summary Fetch and sanitize an embed page
// @Description Fetches the page server side and serves the sanitized document, or a fallback page that loads it directly
// @Tags Sanitizer
// @Produce html
// @Param url query string true "Embed page URL"
// @Success 200 {string} string "Sanitized document or fallback page"
// @Failure 400 {string} string "Missing or invalid url"
// @Router /proxy/sanitized [get]
func (h *sanitizedHandler) Handle(c *fiber.Ctx) error {
	target, err := mediation.ParseTargetURL(c.Query("url"))
	if err != nil {
		return sendText(c, fiber.StatusBadRequest, err.Error())
	}
	raw := target.String()

	page, err := h.dispatcher.Fetch(c.UserContext(), target, h.timeout)
	if err != nil {
		h.logger.WithError(err).WithField("url", raw).Warn("sanitized fetch failed, serving fallback")
		emit(c, metrics.NewSanitizeEvent("sanitized", metrics.OutcomeFallback, nil))
		return sendFallback(c, fiber.StatusOK, raw, sanitizer.ProtectiveHeaders(""))
	}

	result, err := h.sanitizer.Sanitize(string(page.Body), page.URL)
	if err != nil {
		h.logger.WithError(err).WithField("url", raw).Warn("sanitization failed, serving fallback")
		emit(c, metrics.NewSanitizeEvent("sanitized", metrics.OutcomeFallback, nil))
		return sendFallback(c, fiber.StatusOK, raw, sanitizer.ProtectiveHeaders(""))
	}

	emit(c, metrics.NewSanitizeEvent("sanitized", metrics.OutcomeOK, reportCounts(result.Report)))
	return sendHTML(c, fiber.StatusOK, result.HTML, result.Headers)
}
