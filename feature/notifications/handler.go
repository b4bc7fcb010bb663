package notifications

import (
	"dash-sync/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for notifications.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the notification routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/notifications")
	group.Get("/", h.HandleList)
	group.Get("/status", h.HandleStatus)
	group.Post("/:id/read", h.HandleMarkRead)
}

// HandleList returns the notification feed.
func (h *Handler) HandleList(c *fiber.Ctx) error {
	return c.JSON(h.service.All())
}

// HandleStatus returns sync health for the notification cache.
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	st := h.service.Store()
	status := fiber.Map{
		"loading": st.Loading(),
		"stale":   st.Stale(),
		"count":   st.Len(),
	}
	if err := st.Err(); err != nil {
		status["error"] = err.Error()
	}
	return c.JSON(status)
}

// HandleMarkRead marks one notification as read.
func (h *Handler) HandleMarkRead(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	if err := h.service.MarkRead(c.Context(), c.Params("id")); err != nil {
		l.Error("Notification mark-read failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
