package handler

import (
	"go-shop-pos/internal/model"
	"go-shop-pos/internal/repository"
	"go-shop-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type RepairHandler struct {
	service service.RepairService
}

func NewRepairHandler(s service.RepairService) *RepairHandler {
	return &RepairHandler{service: s}
}

// POST /api/v1/repairs
func (h *RepairHandler) CreateRepair(c *fiber.Ctx) error {
	var req service.CreateRepairRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	repair, err := h.service.Create(c.UserContext(), &req, actorFrom(c))
	if err != nil {
		return respondError(c, err, "Failed to create repair")
	}
	return c.Status(201).JSON(fiber.Map{"message": "Repair created", "data": repair})
}

// GET /api/v1/repairs?status=&from=&to=&q=
func (h *RepairHandler) GetRepairs(c *fiber.Ctx) error {
	f := repository.RepairFilter{
		Status: model.RepairStatus(c.Query("status")),
		Search: c.Query("q"),
	}
	switch f.Status {
	case "", model.RepairPending, model.RepairCompleted, model.RepairDelivered:
	default:
		return badRequest(c, "Invalid status")
	}

	var err error
	if f.From, err = queryDate(c, "from", false); err != nil {
		return badRequest(c, "Invalid from date, use YYYY-MM-DD")
	}
	if f.To, err = queryDate(c, "to", true); err != nil {
		return badRequest(c, "Invalid to date, use YYYY-MM-DD")
	}

	repairs, err := h.service.List(c.UserContext(), f)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch repairs"})
	}
	return c.JSON(repairs)
}

// GET /api/v1/repairs/:id
func (h *RepairHandler) GetRepair(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid repair ID")
	}

	repair, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, "Failed to fetch repair")
	}
	return c.JSON(repair)
}

func (h *RepairHandler) paymentBody(c *fiber.Ctx) (*service.RepairPaymentRequest, error) {
	var req service.RepairPaymentRequest
	if len(c.Body()) == 0 {
		return &req, nil
	}
	if err := c.BodyParser(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// POST /api/v1/repairs/:id/payments
func (h *RepairHandler) AddPayment(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid repair ID")
	}
	req, err := h.paymentBody(c)
	if err != nil {
		return badRequest(c, "Invalid JSON")
	}

	repair, err := h.service.AddPayment(c.UserContext(), id, req, actorFrom(c))
	if err != nil {
		return respondError(c, err, "Failed to record payment")
	}
	return c.JSON(fiber.Map{"message": "Payment recorded", "data": repair})
}

// POST /api/v1/repairs/:id/complete
func (h *RepairHandler) Complete(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid repair ID")
	}
	req, err := h.paymentBody(c)
	if err != nil {
		return badRequest(c, "Invalid JSON")
	}

	repair, err := h.service.Complete(c.UserContext(), id, req, actorFrom(c))
	if err != nil {
		return respondError(c, err, "Failed to complete repair")
	}
	return c.JSON(fiber.Map{"message": "Repair completed", "data": repair})
}

// POST /api/v1/repairs/:id/deliver
func (h *RepairHandler) Deliver(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid repair ID")
	}

	repair, err := h.service.Deliver(c.UserContext(), id, actorFrom(c))
	if err != nil {
		return respondError(c, err, "Failed to deliver repair")
	}
	return c.JSON(fiber.Map{"message": "Repair delivered", "data": repair})
}
