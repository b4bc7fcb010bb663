package schedules

import (
	"errors"
	"time"

	"dash-sync/core/logger"
	"dash-sync/core/recurrence"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for schedules.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the schedule routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/schedules")
	group.Get("/", h.HandleList)
	group.Get("/status", h.HandleStatus)
	group.Get("/:id/selection", h.HandleSelection)
	group.Post("/recurring", h.HandleCreateRecurring)
	group.Patch("/recurring/:id", h.HandleUpdateRecurring)
	group.Post("/oneshot", h.HandleCreateOneShot)
	group.Delete("/:id", h.HandleDelete)
}

// HandleList returns the active schedule collection.
func (h *Handler) HandleList(c *fiber.Ctx) error {
	return c.JSON(h.service.All())
}

// HandleStatus returns sync health for the schedule cache.
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

// HandleSelection decompiles a schedule's rule into editor fields.
func (h *Handler) HandleSelection(c *fiber.Ctx) error {
	sel, err := h.service.Selection(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(sel)
}

type recurringBody struct {
	TestID    string `json:"testId"`
	PersonaID string `json:"personaId"`
	Date      string `json:"date"`
	Hour      int    `json:"hour"`
	Minute    int    `json:"minute"`
	Frequency string `json:"frequency"`
}

// HandleCreateRecurring compiles and creates a recurring schedule.
func (h *Handler) HandleCreateRecurring(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	var body recurringBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	date, err := time.Parse(time.RFC3339, body.Date)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date must be RFC 3339"})
	}
	created, err := h.service.CreateRecurring(c.Context(), body.TestID, body.PersonaID,
		date, body.Hour, body.Minute, recurrence.Frequency(body.Frequency))
	if err != nil {
		if errors.Is(err, ErrMissingSelection) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		l.Error("Recurring schedule create failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// HandleUpdateRecurring recompiles the rule of an existing schedule.
func (h *Handler) HandleUpdateRecurring(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	var body recurringBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	date, err := time.Parse(time.RFC3339, body.Date)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date must be RFC 3339"})
	}
	updated, err := h.service.UpdateRecurring(c.Context(), c.Params("id"),
		date, body.Hour, body.Minute, recurrence.Frequency(body.Frequency))
	if err != nil {
		l.Error("Recurring schedule update failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(updated)
}

type oneShotBody struct {
	TestID    string `json:"testId"`
	PersonaID string `json:"personaId"`
	At        string `json:"at"`
}

// HandleCreateOneShot schedules a single run at an absolute time.
func (h *Handler) HandleCreateOneShot(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	var body oneShotBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	at, err := time.Parse(time.RFC3339, body.At)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "at must be RFC 3339"})
	}
	created, err := h.service.CreateOneShot(c.Context(), body.TestID, body.PersonaID, at)
	if err != nil {
		if errors.Is(err, ErrMissingSelection) || errors.Is(err, recurrence.ErrNotInFuture) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		l.Error("One-shot schedule create failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// HandleDelete removes a schedule.
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	if err := h.service.Delete(c.Context(), c.Params("id")); err != nil {
		l.Error("Schedule delete failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
