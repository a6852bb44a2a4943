package handler

import (
	"go-shop-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ReorderHandler struct {
	service service.ReorderService
}

func NewReorderHandler(s service.ReorderService) *ReorderHandler {
	return &ReorderHandler{service: s}
}

// Preview groups low-stock products by category
// GET /api/v1/reorder?category_id=&subcategory_id=
func (h *ReorderHandler) Preview(c *fiber.Ctx) error {
	var f service.ReorderFilter
	var err error
	if f.CategoryID, err = queryUUID(c, "category_id"); err != nil {
		return badRequest(c, "Invalid category ID")
	}
	if f.SubcategoryID, err = queryUUID(c, "subcategory_id"); err != nil {
		return badRequest(c, "Invalid subcategory ID")
	}

	groups, err := h.service.Preview(c.UserContext(), f)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to build reorder list"})
	}
	return c.JSON(groups)
}

// CreateOrderRequest names the category to order for.
type CreateOrderRequest struct {
	CategoryName string `json:"category_name"`
}

// CreateOrder raises a purchase order for one category
// POST /api/v1/reorder/orders
func (h *ReorderHandler) CreateOrder(c *fiber.Ctx) error {
	var req CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	if req.CategoryName == "" {
		return badRequest(c, "category_name is required")
	}

	order, err := h.service.CreateOrder(c.UserContext(), req.CategoryName, actorFrom(c))
	if err != nil {
		return respondError(c, err, "Failed to create purchase order")
	}
	return c.Status(201).JSON(fiber.Map{"message": "Purchase order created", "data": order})
}
