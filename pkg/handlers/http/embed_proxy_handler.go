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

type EmbedProxyConfig struct {
	// FailureStatus is the status sent with the fallback page.
	FailureStatus int
	FetchTimeout  time.Duration
}

type embedProxyHandler struct {
	logger     *logrus.Logger
	dispatcher *dispatcher.Dispatcher
	cfg        EmbedProxyConfig
	route      string
}

// NewEmbedProxyHandler serves /proxy/<route>?url=: the provider page is
// fetched server side and returned without its framing restrictions.
func NewEmbedProxyHandler(
	logger *logrus.Logger,
	d *dispatcher.Dispatcher,
	cfg EmbedProxyConfig,
	route string,
) Handler {
	if cfg.FailureStatus == 0 {
		cfg.FailureStatus = fiber.StatusOK
	}
	return &embedProxyHandler{
		logger:     logger,
		dispatcher: d,
		cfg:        cfg,
		route:      route,
	}
}

// Handle @Summary Proxy a provider embed page
// @Description Fetches the embed page and strips X-Frame-Options and frame-ancestors so it can be framed
// @Tags Proxy
// @Produce html
// @Param url query string true "Embed page URL"
// @Success 200 {string} string "Unframed document or fallback page"
// @Failure 400 {string} string "Missing or invalid url"
// @Router /proxy/{provider} [get]
func (h *embedProxyHandler) Handle(c *fiber.Ctx) error {
	raw := c.Query("url")
	target, err := mediation.ParseTargetURL(raw)
	if err != nil {
		return sendText(c, fiber.StatusBadRequest, err.Error())
	}

	fields := logrus.Fields{"route": h.route, "url": target.String()}
	page, err := h.dispatcher.Fetch(c.UserContext(), target, h.cfg.FetchTimeout)
	if err != nil {
		h.logger.WithError(err).WithFields(fields).Warn("embed proxy fetch failed, serving fallback")
		emit(c, metrics.NewSanitizeEvent("proxy_"+h.route, metrics.OutcomeFallback, nil))
		return sendFallback(c, h.cfg.FailureStatus, target.String(), sanitizer.EmbedHeaders())
	}

	body, err := sanitizer.Unframe(string(page.Body), page.URL)
	if err != nil {
		h.logger.WithError(err).WithFields(fields).Warn("failed to unframe embed page, serving fallback")
		emit(c, metrics.NewSanitizeEvent("proxy_"+h.route, metrics.OutcomeFallback, nil))
		return sendFallback(c, h.cfg.FailureStatus, target.String(), sanitizer.EmbedHeaders())
	}

	emit(c, metrics.NewSanitizeEvent("proxy_"+h.route, metrics.OutcomeOK, nil))
	return sendHTML(c, fiber.StatusOK, body, sanitizer.EmbedHeaders())
}
