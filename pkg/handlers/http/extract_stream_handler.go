package http

import (
	"net/http"

	"github.com/NeuralTrust/TrustFrame/pkg/common"
	"github.com/NeuralTrust/TrustFrame/pkg/dispatcher"
	"github.com/NeuralTrust/TrustFrame/pkg/handlers/http/response"
	"github.com/NeuralTrust/TrustFrame/pkg/infra/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type extractStreamHandler struct {
	logger     *logrus.Logger
	dispatcher *dispatcher.Dispatcher
}

func NewExtractStreamHandler(logger *logrus.Logger, d *dispatcher.Dispatcher) Handler {
	return &extractStreamHandler{
		logger:     logger,
		dispatcher: d,
	}
}

// Handle @Summary Extract a playable stream URL
// @Description Scrapes the embed page for an HLS/DASH/MP4 URL. A miss returns an iframe fallback.
// @Tags Dispatcher
// @Produce json
// @Param url query string true "Embed page URL"
// @Success 200 {object} response.StreamOutput
// @Failure 400 {object} response.StreamOutput "Missing or invalid url"
// @Failure 404 {object} response.StreamOutput "Upstream page not found"
// @Router /extract-stream [get]
func (h *extractStreamHandler) Handle(c *fiber.Ctx) error {
	delivery, err := h.dispatcher.Extract(c.UserContext(), c.Query("url"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(response.StreamOutput{
			Success: false,
			Error:   err.Error(),
		})
	}

	emit(c, metrics.NewDispatchEvent(string(delivery.Strategy), delivery.Fallback, delivery.Reason()))
	c.Set(common.StrategyHeader, string(delivery.Strategy))
	if delivery.Fallback {
		h.logger.WithFields(logrus.Fields{
			"url":    delivery.OriginalURL,
			"reason": delivery.Reason(),
		}).Debug("stream extraction fell back to iframe")
	}

	out := response.NewStreamOutput(delivery)
	if delivery.UpstreamStatus() == http.StatusNotFound {
		// the page is gone, an iframe of it would render nothing
		out.Fallback = false
		out.IframeURL = ""
		return c.Status(fiber.StatusNotFound).JSON(out)
	}
	return c.Status(fiber.StatusOK).JSON(out)
}
