package runs

import (
	"dash-sync/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for runs.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the run routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/runs")
	group.Get("/", h.HandleList)
	group.Get("/status", h.HandleStatus)
	group.Get("/test/:id", h.HandleForTest)
	group.Post("/start", h.HandleStart)
}

// HandleList returns the run collection ordered by effective timestamp.
func (h *Handler) HandleList(c *fiber.Ctx) error {
	return c.JSON(h.service.All())
}

// HandleStatus returns sync health for the run cache.
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

// HandleForTest returns the cached run list of one test.
func (h *Handler) HandleForTest(c *fiber.Ctx) error {
	return c.JSON(h.service.ForTest(c.Params("id")))
}

// HandleStart launches a run for a test/persona pair.
func (h *Handler) HandleStart(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	var req struct {
		TestID    string `json:"testId"`
		PersonaID string `json:"personaId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if req.TestID == "" || req.PersonaID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "testId and personaId are required"})
	}
	run, err := h.service.Start(c.Context(), req.TestID, req.PersonaID)
	if err != nil {
		l.Error("Run start failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(run)
}
