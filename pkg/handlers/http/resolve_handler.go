package http

import (
	"github.com/NeuralTrust/TrustFrame/pkg/common"
	"github.com/NeuralTrust/TrustFrame/pkg/dispatcher"
	"github.com/NeuralTrust/TrustFrame/pkg/domain/mediation"
	"github.com/NeuralTrust/TrustFrame/pkg/infra/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type resolveHandler struct {
	logger     *logrus.Logger
	dispatcher *dispatcher.Dispatcher
}

func NewResolveHandler(logger *logrus.Logger, d *dispatcher.Dispatcher) Handler {
	return &resolveHandler{
		logger:     logger,
		dispatcher: d,
	}
}

// Handle @Summary Resolve a delivery strategy
// @Description Picks direct, scrape, unframe, sanitize or iframe delivery for a watch URL
// @Tags Dispatcher
// @Produce json
// @Param url query string true "Source URL"
// @Param provider query string false "Provider name"
// @Param type query string false "Declared source type (hls-direct, embed-sanitized, embed-raw)"
// @Success 200 {object} dispatcher.Delivery
// @Failure 400 {object} map[string]interface{} "Invalid input"
// @Router /proxy/resolve [get]
func (h *resolveHandler) Handle(c *fiber.Ctx) error {
	sourceType, err := mediation.ParseSourceType(c.Query("type"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	provider := c.Query("provider")
	if provider != "" {
		if _, err := h.dispatcher.Providers().Lookup(provider); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}

	req, err := mediation.NewRequest(
		c.Query("url"),
		mediation.WithSourceType(sourceType),
		mediation.WithProvider(provider),
	)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	delivery := h.dispatcher.Resolve(c.UserContext(), req)
	emit(c, metrics.NewDispatchEvent(string(delivery.Strategy), delivery.Fallback, delivery.Reason()))
	h.logger.WithFields(logrus.Fields{
		"request_id": req.ID().String(),
		"host":       req.Host(),
		"strategy":   delivery.Strategy,
		"fallback":   delivery.Fallback,
	}).Debug("delivery resolved")

	c.Set(common.StrategyHeader, string(delivery.Strategy))
	return c.Status(fiber.StatusOK).JSON(delivery)
}
