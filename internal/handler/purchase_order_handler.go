package handler

import (
	"go-shop-pos/internal/model"
	"go-shop-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type PurchaseOrderHandler struct {
	service service.PurchaseOrderService
}

func NewPurchaseOrderHandler(s service.PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{service: s}
}

// GET /api/v1/purchase-orders?status=pending|completed
func (h *PurchaseOrderHandler) GetOrders(c *fiber.Ctx) error {
	status := model.OrderStatus(c.Query("status"))
	switch status {
	case "", model.OrderPending, model.OrderCompleted:
	default:
		return badRequest(c, "Invalid status")
	}

	orders, err := h.service.List(c.UserContext(), status)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch purchase orders"})
	}
	return c.JSON(orders)
}

// GET /api/v1/purchase-orders/:id
func (h *PurchaseOrderHandler) GetOrder(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid order ID")
	}

	order, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, "Failed to fetch purchase order")
	}
	return c.JSON(order)
}

// ReceiveItem books a delivered line into stock
// POST /api/v1/purchase-orders/:id/items/:itemId/receive
func (h *PurchaseOrderHandler) ReceiveItem(c *fiber.Ctx) error {
	orderID, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid order ID")
	}
	itemID, ok := paramUUID(c, "itemId")
	if !ok {
		return badRequest(c, "Invalid item ID")
	}

	var req service.ReceiveRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	order, err := h.service.ReceiveItem(c.UserContext(), orderID, itemID, &req, actorFrom(c))
	if err != nil {
		return respondError(c, err, "Failed to receive item")
	}
	return c.JSON(fiber.Map{"message": "Item received", "data": order})
}

// UpdateItemRequest carries a new ordered quantity.
type UpdateItemRequest struct {
	Qty int `json:"qty"`
}

// PUT /api/v1/purchase-orders/:id/items/:itemId
func (h *PurchaseOrderHandler) UpdateItemQty(c *fiber.Ctx) error {
	orderID, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid order ID")
	}
	itemID, ok := paramUUID(c, "itemId")
	if !ok {
		return badRequest(c, "Invalid item ID")
	}

	var req UpdateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	order, err := h.service.UpdateItemQty(c.UserContext(), orderID, itemID, req.Qty, actorFrom(c))
	if err != nil {
		return respondError(c, err, "Failed to update item")
	}
	return c.JSON(fiber.Map{"message": "Item updated", "data": order})
}

// DELETE /api/v1/purchase-orders/:id
func (h *PurchaseOrderHandler) DeleteOrder(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid order ID")
	}

	if err := h.service.DeleteOrder(c.UserContext(), id, actorFrom(c)); err != nil {
		return respondError(c, err, "Failed to delete purchase order")
	}
	return c.JSON(fiber.Map{"message": "Purchase order deleted"})
}
