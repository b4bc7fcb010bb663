package batches

import (
	"dash-sync/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for batch tests.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the batch routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/batchtests")
	group.Get("/", h.HandleList)
	group.Get("/trashed", h.HandleTrashed)
	group.Get("/status", h.HandleStatus)
	group.Get("/:id/runs", h.HandleRuns)
	group.Post("/", h.HandleCreate)
	group.Post("/:id/trash", h.HandleTrash)
	group.Post("/:id/restore", h.HandleRestore)
	group.Delete("/:id", h.HandleDelete)
}

// HandleList returns the active batch collection.
func (h *Handler) HandleList(c *fiber.Ctx) error {
	return c.JSON(h.service.All())
}

// HandleTrashed returns the trashed batch collection.
func (h *Handler) HandleTrashed(c *fiber.Ctx) error {
	return c.JSON(h.service.Trashed())
}

// HandleStatus returns sync health for the batch cache.
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	st := h.service.Store()
	status := fiber.Map{
		"loading": st.Loading(),
		"stale":   st.Stale(),
		"count":   st.Len(),
		"trashed": len(st.Trashed()),
	}
	if err := st.Err(); err != nil {
		status["error"] = err.Error()
	}
	return c.JSON(status)
}

// HandleRuns returns the cached run list of one batch.
func (h *Handler) HandleRuns(c *fiber.Ctx) error {
	return c.JSON(h.service.RunsFor(c.Params("id")))
}

// HandleCreate creates a batch through the upstream API.
func (h *Handler) HandleCreate(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	var b Batch
	if err := c.BodyParser(&b); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	created, err := h.service.Create(c.Context(), b)
	if err != nil {
		l.Error("Batch create failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// HandleTrash trashes a batch.
func (h *Handler) HandleTrash(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	if err := h.service.Trash(c.Context(), c.Params("id")); err != nil {
		l.Error("Batch trash failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleRestore restores a trashed batch.
func (h *Handler) HandleRestore(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	if err := h.service.Restore(c.Context(), c.Params("id")); err != nil {
		l.Error("Batch restore failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleDelete permanently deletes a batch.
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	if err := h.service.Delete(c.Context(), c.Params("id")); err != nil {
		l.Error("Batch delete failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
