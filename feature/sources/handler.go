package sources

import (
	"card-catalog/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the source sync.
type Handler struct {
	orchestrator *Orchestrator
	logger       *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(orchestrator *Orchestrator, logger *zap.Logger) *Handler {
	return &Handler{orchestrator: orchestrator, logger: logger}
}

// RegisterRoutes registers the sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sync")
	group.Post("/full", h.HandleFullSync)
}

// HandleFullSync runs one synchronous full sync cycle across all feeds. The
// call blocks until the cycle finishes; feed failures surface in the result
// body, not as an HTTP error.
func (h *Handler) HandleFullSync(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	result, err := h.orchestrator.SyncAll(c.Context())
	if err != nil {
		l.Error("Full source sync failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(result)
}
