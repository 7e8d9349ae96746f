package overview

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/inventory-dashboard/internal/inventoryapi"
	"github.com/wichananm65/inventory-dashboard/internal/logging"
	"github.com/wichananm65/inventory-dashboard/internal/reportquery"
)

type Handler struct {
	service  *Service
	defaults reportquery.Defaults
	now      func() time.Time
}

func NewHandler(s *Service, defaults reportquery.Defaults) *Handler {
	return &Handler{service: s, defaults: defaults, now: time.Now}
}

func (h *Handler) RegisterRoutes(router fiber.Router) {
	router.Get("/api/v1/overview", h.getOverview)
}

func (h *Handler) getOverview(c *fiber.Ctx) error {
	q, errs := reportquery.Parse(c, h.defaults, h.now())
	if errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}
	out, err := h.service.Get(c.UserContext(), q)
	if err != nil {
		status := inventoryapi.HTTPStatus(err)
		logging.Warn().Err(err).Int("status", status).Msg("overview failed")
		return c.Status(status).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(out)
}
