package branch

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/inventory-dashboard/internal/inventoryapi"
	"github.com/wichananm65/inventory-dashboard/internal/logging"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterRoutes(router fiber.Router) {
	router.Get("/api/v1/branches", h.getBranches)
}

func (h *Handler) getBranches(c *fiber.Ctx) error {
	items, err := h.service.List(c.UserContext())
	if err != nil {
		status := inventoryapi.HTTPStatus(err)
		logging.Warn().Err(err).Int("status", status).Msg("branch list failed")
		return c.Status(status).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(items)
}
