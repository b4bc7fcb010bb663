package issues

import (
	"dash-sync/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for issues.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the issue routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/issues")
	group.Get("/", h.HandleList)
	group.Get("/trashed", h.HandleTrashed)
	group.Get("/status", h.HandleStatus)
	group.Post("/", h.HandleCreate)
	group.Patch("/:id", h.HandleUpdate)
	group.Post("/:id/trash", h.HandleTrash)
	group.Post("/:id/restore", h.HandleRestore)
	group.Delete("/:id", h.HandleDelete)
}

// HandleList returns the active issue collection.
func (h *Handler) HandleList(c *fiber.Ctx) error {
	return c.JSON(h.service.All())
}

// HandleTrashed returns the trashed issue collection.
func (h *Handler) HandleTrashed(c *fiber.Ctx) error {
	return c.JSON(h.service.Trashed())
}

// HandleStatus returns sync health for the issue cache.
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

// HandleCreate creates an issue through the upstream API.
func (h *Handler) HandleCreate(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	var i Issue
	if err := c.BodyParser(&i); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	created, err := h.service.Create(c.Context(), i)
	if err != nil {
		l.Error("Issue create failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// HandleUpdate patches an issue through the upstream API.
func (h *Handler) HandleUpdate(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	var i Issue
	if err := c.BodyParser(&i); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	updated, err := h.service.Update(c.Context(), c.Params("id"), i)
	if err != nil {
		l.Error("Issue update failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(updated)
}

// HandleTrash trashes an issue.
func (h *Handler) HandleTrash(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	if err := h.service.Trash(c.Context(), c.Params("id")); err != nil {
		l.Error("Issue trash failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleRestore restores a trashed issue.
func (h *Handler) HandleRestore(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	if err := h.service.Restore(c.Context(), c.Params("id")); err != nil {
		l.Error("Issue restore failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleDelete permanently deletes an issue.
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	if err := h.service.Delete(c.Context(), c.Params("id")); err != nil {
		l.Error("Issue delete failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
