package http

import (
	"time"

	"github.com/NeuralTrust/TrustFrame/pkg/guard"
	"github.com/NeuralTrust/TrustFrame/pkg/handlers/http/response"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// GuardIntervals are the client-side timings handed to the guard script.
type GuardIntervals struct {
	LocationPoll  time.Duration
	PopupSweep    time.Duration
	GestureWindow time.Duration
	Toast         time.Duration
}

type guardPolicyHandler struct {
	logger    *logrus.Logger
	evaluator *guard.Evaluator
	policy    guard.RoutePolicy
	intervals GuardIntervals
}

func NewGuardPolicyHandler(
	logger *logrus.Logger,
	evaluator *guard.Evaluator,
	policy guard.RoutePolicy,
	intervals GuardIntervals,
) Handler {
	if intervals.LocationPoll <= 0 {
		intervals.LocationPoll = guard.DefaultLocationPoll
	}
	if intervals.PopupSweep <= 0 {
		intervals.PopupSweep = guard.DefaultPopupSweep
	}
	if intervals.GestureWindow <= 0 {
		intervals.GestureWindow = guard.DefaultGestureWindow
	}
	if intervals.Toast <= 0 {
		intervals.Toast = guard.DefaultToastDuration
	}
	return &guardPolicyHandler{
		logger:    logger,
		evaluator: evaluator,
		policy:    policy,
		intervals: intervals,
	}
}

// Handle @Summary Guard policy for a route
// @Description Tells the hosting page which guards to install on a route
// @Tags Guard
// @Produce json
// @Param route query string true "Client route, e.g. /watch/42"
// @Success 200 {object} response.GuardPolicyOutput
// @Failure 400 {object} map[string]interface{} "Missing route"
// @Router /guard/policy [get]
func (h *guardPolicyHandler) Handle(c *fiber.Ctx) error {
	route := c.Query("route")
	if route == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "route is required"})
	}
	return c.Status(fiber.StatusOK).JSON(response.GuardPolicyOutput{
		Route:           route,
		Active:          h.policy.Active(route),
		ContentGuard:    h.policy.ContentGuard(route),
		PatternVersion:  h.evaluator.Table().Version,
		AllowDomains:    h.evaluator.AllowDomains(),
		LocationPollMs:  h.intervals.LocationPoll.Milliseconds(),
		PopupSweepMs:    h.intervals.PopupSweep.Milliseconds(),
		GestureWindowMs: h.intervals.GestureWindow.Milliseconds(),
		ToastMs:         h.intervals.Toast.Milliseconds(),
	})
}
