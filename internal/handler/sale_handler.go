package handler

import (
	"errors"
	"log"
	"time"

	"go-shop-pos/internal/model"
	"go-shop-pos/internal/repository"
	"go-shop-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type SaleHandler struct {
	service service.SaleService
}

func NewSaleHandler(s service.SaleService) *SaleHandler {
	return &SaleHandler{service: s}
}

// Checkout commits a cart as a sale
// POST /api/v1/sales
func (h *SaleHandler) Checkout(c *fiber.Ctx) error {
	var req service.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	sale, err := h.service.Checkout(c.UserContext(), &req, actorFrom(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return badRequest(c, err.Error())
		case errors.Is(err, service.ErrCheckoutInProgress):
			return c.Status(409).JSON(fiber.Map{"error": err.Error()})
		default:
			log.Printf("checkout failed: %v", err)
			return c.Status(500).JSON(fiber.Map{"error": "Failed to record sale"})
		}
	}

	return c.Status(201).JSON(fiber.Map{"message": "Sale recorded", "data": sale})
}

// rangeStart resolves the shorthand range query (7d, 1m, 3m, 6m, 12m).
func rangeStart(rangeParam string, now time.Time) (time.Time, bool) {
	switch rangeParam {
	case "7d":
		return now.AddDate(0, 0, -7), true
	case "1m":
		return now.AddDate(0, -1, 0), true
	case "3m":
		return now.AddDate(0, -3, 0), true
	case "6m":
		return now.AddDate(0, -6, 0), true
	case "12m":
		return now.AddDate(0, -12, 0), true
	}
	return time.Time{}, false
}

// GetSales lists sales, newest first
// GET /api/v1/sales?phone=&from=&to=&range=&pending=
func (h *SaleHandler) GetSales(c *fiber.Ctx) error {
	f := repository.SaleFilter{
		CustomerPhone: c.Query("phone"),
		PendingOnly:   c.QueryBool("pending", false),
	}

	var err error
	if f.From, err = queryDate(c, "from", false); err != nil {
		return badRequest(c, "Invalid from date, use YYYY-MM-DD")
	}
	if f.To, err = queryDate(c, "to", true); err != nil {
		return badRequest(c, "Invalid to date, use YYYY-MM-DD")
	}
	if f.From == nil {
		if start, ok := rangeStart(c.Query("range"), time.Now()); ok {
			f.From = &start
		}
	}

	sales, err := h.service.ListSales(c.UserContext(), f)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch sales"})
	}
	return c.JSON(sales)
}

// GET /api/v1/sales/pending
func (h *SaleHandler) GetPendingSales(c *fiber.Ctx) error {
	sales, err := h.service.ListPendingSales(c.UserContext())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch pending sales"})
	}
	return c.JSON(sales)
}

// GET /api/v1/sales/:id
func (h *SaleHandler) GetSale(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid sale ID")
	}

	sale, err := h.service.GetSale(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, "Failed to fetch sale")
	}
	return c.JSON(sale)
}

// PaySale collects part or all of a sale's pending amount
// POST /api/v1/sales/:id/payments
func (h *SaleHandler) PaySale(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid sale ID")
	}

	var req service.PaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	sale, err := h.service.PaySale(c.UserContext(), id, &req, actorFrom(c))
	if err != nil {
		return respondError(c, err, "Failed to record payment")
	}
	return c.JSON(fiber.Map{"message": "Payment recorded", "data": sale})
}

// SettleSale collects the full pending amount
// POST /api/v1/sales/:id/settle
func (h *SaleHandler) SettleSale(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid sale ID")
	}

	var req struct {
		Method string `json:"method"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid JSON")
		}
	}

	sale, err := h.service.SettleSale(c.UserContext(), id, req.Method, actorFrom(c))
	if err != nil {
		return respondError(c, err, "Failed to settle sale")
	}
	return c.JSON(fiber.Map{"message": "Sale settled", "data": sale})
}

// GetPayments lists ledger rows
// GET /api/v1/payments?status=completed|pending
func (h *SaleHandler) GetPayments(c *fiber.Ctx) error {
	status := model.LedgerStatus(c.Query("status"))
	switch status {
	case "", model.LedgerCompleted, model.LedgerPending:
	default:
		return badRequest(c, "Invalid status")
	}

	payments, err := h.service.ListPayments(c.UserContext(), status)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch payments"})
	}
	return c.JSON(payments)
}
