package handler

import (
	"strconv"

	"go-shop-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	service service.DashboardService
}

func NewDashboardHandler(s service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

func positiveQuery(c *fiber.Ctx, name string, def int) int {
	n, err := strconv.Atoi(c.Query(name, strconv.Itoa(def)))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// GetStockMovement returns daily IN/OUT totals for charts
// GET /api/v1/dashboard/stock-movement?days=7
func (h *DashboardHandler) GetStockMovement(c *fiber.Ctx) error {
	days := positiveQuery(c, "days", 7)

	data, err := h.service.GetStockMovement(c.UserContext(), days)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch stock movement"})
	}

	return c.JSON(fiber.Map{
		"period": days,
		"data":   data,
	})
}

// GetDashboardStats returns overview statistics
// GET /api/v1/dashboard/stats?months=12
func (h *DashboardHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.GetDashboardStats(c.UserContext(), positiveQuery(c, "months", 12))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch dashboard stats"})
	}

	return c.JSON(stats)
}
