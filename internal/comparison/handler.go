package comparison

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/inventory-dashboard/internal/inventoryapi"
	"github.com/wichananm65/inventory-dashboard/internal/logging"
	"github.com/wichananm65/inventory-dashboard/internal/recommendation"
	"github.com/wichananm65/inventory-dashboard/internal/reportquery"
)

type Handler struct {
	service     *Service
	defaults    reportquery.Defaults
	historySize int
	now         func() time.Time
}

func NewHandler(s *Service, defaults reportquery.Defaults, historySize int) *Handler {
	return &Handler{service: s, defaults: defaults, historySize: historySize, now: time.Now}
}

func (h *Handler) RegisterRoutes(router fiber.Router) {
	router.Get("/api/v1/recommendations/rule", h.getRuleFeed)
	router.Get("/api/v1/recommendations/ml", h.getMLFeed)
	router.Get("/api/v1/recommendations/comparison", h.getComparison)
	router.Get("/api/v1/recommendations/comparison/conflicts.csv", h.getConflictsCSV)
	router.Get("/api/v1/recommendations/comparison/history", h.getHistory)
}

func upstreamError(c *fiber.Ctx, err error) error {
	status := inventoryapi.HTTPStatus(err)
	logging.Warn().Err(err).Int("status", status).Str("path", c.Path()).Msg("inventory api request failed")
	return c.Status(status).JSON(fiber.Map{"message": err.Error()})
}

func (h *Handler) getRuleFeed(c *fiber.Ctx) error {
	q, errs := reportquery.Parse(c, h.defaults, h.now())
	if errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}
	feed, err := h.service.RuleFeed(c.UserContext(), q)
	if err != nil {
		return upstreamError(c, err)
	}
	return c.JSON(feed)
}

func (h *Handler) getMLFeed(c *fiber.Ctx) error {
	q, errs := reportquery.Parse(c, h.defaults, h.now())
	if errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}
	feed, err := h.service.MLFeed(c.UserContext(), q)
	if err != nil {
		return upstreamError(c, err)
	}
	return c.JSON(feed)
}

func (h *Handler) getComparison(c *fiber.Ctx) error {
	q, errs := reportquery.Parse(c, h.defaults, h.now())
	if errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}
	res, err := h.service.Compare(c.UserContext(), q)
	if err != nil {
		return upstreamError(c, err)
	}
	return c.JSON(res)
}

func (h *Handler) getConflictsCSV(c *fiber.Ctx) error {
	q, errs := reportquery.Parse(c, h.defaults, h.now())
	if errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}
	res, err := h.service.Reconcile(c.UserContext(), q)
	if err != nil {
		return upstreamError(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="recommendation-conflicts-%s.csv"`, res.To))
	if err := recommendation.WriteConflictsCSV(c, res.Conflicts); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return nil
}

func (h *Handler) getHistory(c *fiber.Ctx) error {
	limit := reportquery.Limit(c, "limit", 20, h.historySize)
	items, err := h.service.History(c.UserContext(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(items)
}
