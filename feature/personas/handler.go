package personas

import (
	"dash-sync/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for personas.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the persona routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/personas")
	group.Get("/", h.HandleList)
	group.Get("/trashed", h.HandleTrashed)
	group.Get("/status", h.HandleStatus)
	group.Get("/:id/detail", h.HandleDetail)
	group.Post("/", h.HandleCreate)
	group.Patch("/:id", h.HandleUpdate)
	group.Post("/:id/trash", h.HandleTrash)
	group.Post("/:id/restore", h.HandleRestore)
	group.Delete("/:id", h.HandleDelete)
}

// HandleList returns the active persona collection.
func (h *Handler) HandleList(c *fiber.Ctx) error {
	return c.JSON(h.service.All())
}

// HandleTrashed returns the trashed persona collection.
func (h *Handler) HandleTrashed(c *fiber.Ctx) error {
	return c.JSON(h.service.Trashed())
}

// HandleStatus returns sync health for the persona cache.
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

// HandleDetail loads a persona through the detail endpoint, resolving its
// credential values, and returns the merged document.
func (h *Handler) HandleDetail(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	doc, err := h.service.LoadDetail(c.Context(), c.Params("id"))
	if err != nil {
		l.Error("Persona detail load failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(doc)
}

// HandleCreate creates a persona through the upstream API.
func (h *Handler) HandleCreate(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	var p Persona
	if err := c.BodyParser(&p); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	created, err := h.service.Create(c.Context(), p)
	if err != nil {
		l.Error("Persona create failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// HandleUpdate patches a persona through the upstream API.
func (h *Handler) HandleUpdate(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	var p Persona
	if err := c.BodyParser(&p); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	updated, err := h.service.Update(c.Context(), c.Params("id"), p)
	if err != nil {
		l.Error("Persona update failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(updated)
}

// HandleTrash trashes a persona.
func (h *Handler) HandleTrash(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	if err := h.service.Trash(c.Context(), c.Params("id")); err != nil {
		l.Error("Persona trash failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleRestore restores a trashed persona.
func (h *Handler) HandleRestore(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	if err := h.service.Restore(c.Context(), c.Params("id")); err != nil {
		l.Error("Persona restore failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleDelete permanently deletes a persona.
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	if err := h.service.Delete(c.Context(), c.Params("id")); err != nil {
		l.Error("Persona delete failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
