package http

import (
	"strconv"

	"github.com/NeuralTrust/TrustFrame/pkg/common"
	"github.com/NeuralTrust/TrustFrame/pkg/guard"
	"github.com/NeuralTrust/TrustFrame/pkg/handlers/http/request"
	"github.com/NeuralTrust/TrustFrame/pkg/handlers/http/response"
	"github.com/NeuralTrust/TrustFrame/pkg/infra/metrics"
	"github.com/NeuralTrust/TrustFrame/pkg/patterns"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type guardDecideHandler struct {
	logger    *logrus.Logger
	evaluator *guard.Evaluator
	content   *guard.ContentGuard
	policy    guard.RoutePolicy
}

// NewGuardDecideHandler evaluates guard decisions server side for clients
// that cannot ship the pattern table.
func NewGuardDecideHandler(logger *logrus.Logger, evaluator *guard.Evaluator, policy guard.RoutePolicy) Handler {
	content := guard.NewContentGuard(evaluator, logger, nil)
	content.Enable()
	return &guardDecideHandler{
		logger:    logger,
		evaluator: evaluator,
		content:   content,
		policy:    policy,
	}
}

// Handle @Summary Evaluate a guard decision
// @Description Classifies a popup, navigation, message, resource or element with the live pattern table
// @Tags Guard
// @Accept json
// @Produce json
// @Param request body request.GuardDecideRequest true "Decision input"
// @Success 200 {object} response.GuardDecisionOutput
// @Failure 400 {object} map[string]interface{} "Invalid input"
// @Router /guard/decide [post]
func (h *guardDecideHandler) Handle(c *fiber.Ctx) error {
	var req request.GuardDecideRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrInvalidJsonPayload})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	action := guard.Action(req.Action)
	guardName := "popup"
	var d patterns.Decision
	switch action {
	case guard.ActionOpen, guard.ActionNavigation:
		d = h.evaluator.Navigation(req.URL, req.BaseURL, req.UserInitiated)
	case guard.ActionMessage:
		d = h.evaluator.Message(req.Origin, req.SelfOrigin, req.Payload)
	case guard.ActionResource, guard.ActionElement:
		guardName = "content"
		// The content guard is off on routes that do not opt in.
		if req.Route != "" && !h.policy.ContentGuard(req.Route) {
			d = patterns.Clean()
			break
		}
		if action == guard.ActionResource {
			d = h.content.CheckResource(req.URL, guard.ResourceKind(req.Kind))
		} else {
			d = h.content.CheckElement(req.Tag, req.Attrs)
		}
	}

	emit(c, metrics.NewGuardEvent(guardName, string(action), string(d.Verdict), d.Blocked))
	if d.Blocked {
		h.logger.WithFields(logrus.Fields{
			"action":  req.Action,
			"route":   req.Route,
			"verdict": string(d.Verdict),
			"rule":    d.Rule,
		}).Debug("guard decision blocked")
	}

	version := h.evaluator.Table().Version
	c.Set(common.PatternVerHeader, version)
	c.Set("X-Guard-Blocked", strconv.FormatBool(d.Blocked))
	return c.Status(fiber.StatusOK).JSON(response.GuardDecisionOutput{
		Action:         req.Action,
		PatternVersion: version,
		Decision:       d,
	})
}
