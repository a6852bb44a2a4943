package handler

import (
	"go-shop-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CustomerHandler struct {
	service service.CustomerService
}

func NewCustomerHandler(s service.CustomerService) *CustomerHandler {
	return &CustomerHandler{service: s}
}

// GET /api/v1/customers
func (h *CustomerHandler) GetCustomers(c *fiber.Ctx) error {
	customers, err := h.service.List(c.UserContext())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch customers"})
	}
	return c.JSON(customers)
}

// GetByPhone looks a customer up for checkout prefill
// GET /api/v1/customers/phone/:phone
func (h *CustomerHandler) GetByPhone(c *fiber.Ctx) error {
	customer, err := h.service.GetByPhone(c.UserContext(), c.Params("phone"))
	if err != nil {
		return respondError(c, err, "Failed to fetch customer")
	}
	return c.JSON(customer)
}

// GetHistory returns sales, repairs and the profile tag
// GET /api/v1/customers/phone/:phone/history
func (h *CustomerHandler) GetHistory(c *fiber.Ctx) error {
	history, err := h.service.History(c.UserContext(), c.Params("phone"))
	if err != nil {
		return respondError(c, err, "Failed to fetch customer history")
	}
	return c.JSON(history)
}

// PUT /api/v1/customers/:id
func (h *CustomerHandler) UpdateCustomer(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid customer ID")
	}

	var req service.UpdateCustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	customer, err := h.service.Update(c.UserContext(), id, &req, actorFrom(c))
	if err != nil {
		return respondError(c, err, "Failed to update customer")
	}
	return c.JSON(fiber.Map{"message": "Customer updated", "data": customer})
}

// CreateCustomer is the shop's intake form
// POST /api/v1/customers
func (h *CustomerHandler) CreateCustomer(c *fiber.Ctx) error {
	return h.register(c, actorFrom(c))
}

// RegisterPublic serves the QR self-registration page; no login.
// POST /api/v1/public/customers
func (h *CustomerHandler) RegisterPublic(c *fiber.Ctx) error {
	return h.register(c, service.Actor{ID: "public", Name: "QR registration"})
}

func (h *CustomerHandler) register(c *fiber.Ctx, actor service.Actor) error {
	var req service.RegisterCustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	customer, err := h.service.Register(c.UserContext(), &req, actor)
	if err != nil {
		return respondError(c, err, "Failed to register customer")
	}
	return c.Status(201).JSON(fiber.Map{"message": "Customer registered", "data": customer})
}

// DELETE /api/v1/customers/:id
func (h *CustomerHandler) DeleteCustomer(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid customer ID")
	}

	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err, "Failed to delete customer")
	}
	return c.JSON(fiber.Map{"message": "Customer deleted"})
}

// GET /api/v1/customers/campaigns/pending?limit=5
func (h *CustomerHandler) GetPendingTargets(c *fiber.Ctx) error {
	targets, err := h.service.TopPending(c.UserContext(), c.QueryInt("limit", 0))
	if err != nil {
		return respondError(c, err, "Failed to fetch campaign targets")
	}
	return c.JSON(targets)
}

// GET /api/v1/customers/campaigns/inactive?days=30
func (h *CustomerHandler) GetInactiveTargets(c *fiber.Ctx) error {
	targets, err := h.service.Inactive(c.UserContext(), c.QueryInt("days", 0))
	if err != nil {
		return respondError(c, err, "Failed to fetch campaign targets")
	}
	return c.JSON(targets)
}

// POST /api/v1/customers/:id/campaign-sent
func (h *CustomerHandler) MarkCampaignSent(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid customer ID")
	}

	customer, err := h.service.MarkCampaignSent(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, "Failed to record campaign")
	}
	return c.JSON(fiber.Map{"message": "Campaign recorded", "data": customer})
}
