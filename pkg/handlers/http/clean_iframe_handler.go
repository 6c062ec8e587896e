package http

import (
	"github.com/NeuralTrust/TrustFrame/pkg/domain/mediation"
	"github.com/NeuralTrust/TrustFrame/pkg/handlers/http/request"
	"github.com/NeuralTrust/TrustFrame/pkg/infra/metrics"
	"github.com/NeuralTrust/TrustFrame/pkg/sanitizer"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type cleanIframeHandler struct {
	logger    *logrus.Logger
	sanitizer *sanitizer.Sanitizer
	endpoint  string
}

// NewCleanIframeHandler serves both /proxy/clean-iframe and
// /proxy/content-security; endpoint only labels logs and metrics.
func NewCleanIframeHandler(logger *logrus.Logger, s *sanitizer.Sanitizer, endpoint string) Handler {
	return &cleanIframeHandler{
		logger:    logger,
		sanitizer: s,
		endpoint:  endpoint,
	}
}

// Handle @Summary Sanitize an embed document
// @Description Strips ad scripts, handlers and anchors from the posted HTML and returns it with protective headers
// @Tags Sanitizer
// @Accept json
// @Produce html
// @Param request body request.SanitizeRequest true "Document and its source URL"
// @Success 200 {string} string "Sanitized document"
// @Failure 400 {string} string "Missing or invalid html/url"
// @Failure 500 {string} string "Sanitization failed"
// @Router /proxy/clean-iframe [post]
func (h *cleanIframeHandler) Handle(c *fiber.Ctx) error {
	var req request.SanitizeRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.WithError(err).Debug("failed to parse sanitize request")
		return sendText(c, fiber.StatusBadRequest, ErrInvalidJsonPayload)
	}
	if err := req.Validate(); err != nil {
		return sendText(c, fiber.StatusBadRequest, err.Error())
	}

	doc, err := mediation.NewRequest(req.URL,
		mediation.WithHTML(req.HTML),
		mediation.WithSourceType(mediation.SourceEmbedSanitized),
	)
	if err != nil {
		return sendText(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.sanitizer.Sanitize(doc.HTML(), doc.RawURL())
	if err != nil {
		if isInputError(err) {
			return sendText(c, fiber.StatusBadRequest, err.Error())
		}
		h.logger.WithError(err).WithFields(logrus.Fields{
			"endpoint":     h.endpoint,
			"url":          doc.RawURL(),
			"mediation_id": doc.ID().String(),
		}).Error("failed to sanitize document")
		emit(c, metrics.NewSanitizeEvent(h.endpoint, metrics.OutcomeError, nil))
		return sendText(c, fiber.StatusInternalServerError, ErrInternal)
	}

	emit(c, metrics.NewSanitizeEvent(h.endpoint, metrics.OutcomeOK, reportCounts(result.Report)))
	h.logger.WithFields(logrus.Fields{
		"endpoint":     h.endpoint,
		"url":          doc.RawURL(),
		"mediation_id": doc.ID().String(),
		"scripts":      result.Report.ScriptsRemoved,
		"handlers":     result.Report.HandlersRemoved,
		"anchors":      result.Report.AnchorsRemoved,
	}).Debug("document sanitized")
	return sendHTML(c, fiber.StatusOK, result.HTML, result.Headers)
}
