package catalog

import (
	"errors"

	"card-catalog/core/logger"
	"card-catalog/feature/catalog/models"
	"card-catalog/feature/prices"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the catalog replica.
type Handler struct {
	service *Service
	trends  *prices.TrendCalculator
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, trends *prices.TrendCalculator) *Handler {
	return &Handler{service: service, trends: trends}
}

// RegisterRoutes registers the catalog routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/catalog")
	group.Get("/state", h.HandleGetState)
	group.Get("/verify", h.HandleVerifyState)
	group.Post("/snapshot", h.HandleApplySnapshot)
	group.Post("/patch", h.HandleApplyPatch)
	group.Get("/trends/:printingID", h.HandleGetTrend)
	group.Post("/reset", h.HandleReset)
}

// HandleGetState returns the dataset's current version pointer and hash.
func (h *Handler) HandleGetState(c *fiber.Ctx) error {
	view, err := h.service.State(datasetParam(c))
	if err != nil {
		return h.renderError(c, "State query failed", err)
	}
	return c.JSON(view)
}

// HandleVerifyState recomputes the content hash and reports drift as 409.
func (h *Handler) HandleVerifyState(c *fiber.Ctx) error {
	view, err := h.service.VerifyState(datasetParam(c))
	if err != nil {
		return h.renderError(c, "State verification failed", err)
	}
	return c.JSON(view)
}

// HandleApplySnapshot applies a full-replacement snapshot payload.
func (h *Handler) HandleApplySnapshot(c *fiber.Ctx) error {
	var input models.SnapshotInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "malformed snapshot payload: " + err.Error(),
		})
	}
	result, err := h.service.ApplySnapshot(input)
	if err != nil {
		return h.renderError(c, "Snapshot apply failed", err)
	}
	return c.JSON(result)
}

// HandleApplyPatch applies an incremental patch payload.
func (h *Handler) HandleApplyPatch(c *fiber.Ctx) error {
	var input models.PatchInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "malformed patch payload: " + err.Error(),
		})
	}
	result, err := h.service.ApplyPatch(input)
	if err != nil {
		return h.renderError(c, "Patch apply failed", err)
	}
	return c.JSON(result)
}

// HandleGetTrend returns the short-term price movement for one printing.
// The channel query parameter picks the price channel, defaulting to the
// market price.
func (h *Handler) HandleGetTrend(c *fiber.Ctx) error {
	printingID := c.Params("printingID")
	channel := c.Query("channel")
	trend, err := h.trends.ComputeTrend(printingID, channel)
	if err != nil {
		return h.renderError(c, "Trend query failed", err)
	}
	return c.JSON(trend)
}

// HandleReset wipes the catalog tables. Test environments only; the route is
// behind the same API key as the mutating sync routes.
func (h *Handler) HandleReset(c *fiber.Ctx) error {
	view, err := h.service.ResetForTest(datasetParam(c))
	if err != nil {
		return h.renderError(c, "Catalog reset failed", err)
	}
	return c.JSON(view)
}

func datasetParam(c *fiber.Ctx) *string {
	dataset := c.Query("dataset")
	if dataset == "" {
		return nil
	}
	return &dataset
}

// renderError maps the error taxonomy onto HTTP statuses: rejected input is
// 400, a chain or hash mismatch is 409, anything else is 500.
func (h *Handler) renderError(c *fiber.Ctx, message string, err error) error {
	l := logger.WithRayID(h.service.logger, c)

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		l.Warn(message, zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	var consistencyErr *ConsistencyError
	if errors.As(err, &consistencyErr) {
		l.Warn(message,
			zap.String("kind", consistencyErr.Kind),
			zap.String("expected", consistencyErr.Expected),
			zap.String("actual", consistencyErr.Actual))
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
			"kind":  consistencyErr.Kind,
		})
	}
	l.Error(message, zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}
