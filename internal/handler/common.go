package handler

import (
	"errors"
	"log"
	"time"

	"go-shop-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// dateLayout is the format accepted by the from/to query parameters.
const dateLayout = "2006-01-02"

func getUserID(c *fiber.Ctx) string {
	if v, ok := c.Locals("user_id").(string); ok {
		return v
	}
	return ""
}

func getUserName(c *fiber.Ctx) string {
	if v, ok := c.Locals("user_name").(string); ok {
		return v
	}
	return ""
}

func getUserEmail(c *fiber.Ctx) string {
	if v, ok := c.Locals("user_email").(string); ok {
		return v
	}
	return ""
}

// actorFrom builds the service actor from the locals set by RequireAuth.
func actorFrom(c *fiber.Ctx) service.Actor {
	return service.Actor{
		ID:    getUserID(c),
		Name:  getUserName(c),
		Email: getUserEmail(c),
	}
}

func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func queryUUID(c *fiber.Ctx, name string) (*uuid.UUID, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// queryDate parses a YYYY-MM-DD query parameter. endOfDay moves the result to
// the last instant of that day so "to" filters are inclusive.
func queryDate(c *fiber.Ctx, name string, endOfDay bool) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, time.Local)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(400).JSON(fiber.Map{"error": msg})
}

var notFoundErrors = []error{
	service.ErrNotFound,
	service.ErrProductNotFound,
	service.ErrCategoryNotFound,
	service.ErrSubcategoryNotFound,
	service.ErrCustomerNotFound,
	service.ErrSaleNotFound,
	service.ErrOrderNotFound,
	service.ErrOrderItemNotFound,
	service.ErrRepairNotFound,
	service.ErrUserNotFound,
	service.ErrRoleNotFound,
}

var conflictErrors = []error{
	service.ErrCheckoutInProgress,
	service.ErrPendingOrderExists,
	service.ErrOrderCompleted,
	service.ErrItemAlreadyReceived,
	service.ErrCategoryExists,
	service.ErrProductInPendingOrder,
	service.ErrRepairDelivered,
	service.ErrEmailExists,
	service.ErrCustomerExists,
	service.ErrCampaignTooSoon,
}

var badRequestErrors = []error{
	service.ErrValidation,
	service.ErrNothingToReorder,
	service.ErrNothingPending,
	service.ErrWrongPassword,
}

func matches(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// statusOf maps a service error to its HTTP status.
func statusOf(err error) int {
	switch {
	case matches(err, badRequestErrors):
		return fiber.StatusBadRequest
	case matches(err, notFoundErrors):
		return fiber.StatusNotFound
	case matches(err, conflictErrors):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err with its mapped status. Internal errors are logged
// and replaced by fallback so driver messages never reach the client.
func respondError(c *fiber.Ctx, err error, fallback string) error {
	status := statusOf(err)
	if status == fiber.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Method(), c.Path(), err)
		return c.Status(status).JSON(fiber.Map{"error": fallback})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
