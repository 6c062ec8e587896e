package http

import (
	"github.com/NeuralTrust/TrustFrame/pkg/patterns"
	"github.com/NeuralTrust/TrustFrame/pkg/version"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type getVersionHandler struct {
	logger *logrus.Logger
	table  *patterns.Table
}

func NewGetVersionHandler(logger *logrus.Logger, table *patterns.Table) Handler {
	return &getVersionHandler{
		logger: logger,
		table:  table,
	}
}

// Handle @Summary Get TrustFrame Version
// @Description Returns the build version and the loaded pattern table version
// @Tags Version
// @Produce json
// @Success 200 {object} version.Info "Version information"
// @Router /version [get]
func (h *getVersionHandler) Handle(c *fiber.Ctx) error {
	info := version.GetInfo()
	if h.table != nil {
		info.PatternVersion = h.table.Version
	}
	return c.Status(fiber.StatusOK).JSON(info)
}
