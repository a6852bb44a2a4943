package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-shop-pos/internal/model"
	"go-shop-pos/internal/repository"
	"go-shop-pos/internal/service"
	"go-shop-pos/pkg/database"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testServer struct {
	app *fiber.App
	db  *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open("sqlite", "file:"+name+"?mode=memory&cache=shared", logger.Silent)
	require.NoError(t, err)
	require.NoError(t, model.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	productRepo := repository.NewProductRepo(db)
	subcategoryRepo := repository.NewSubcategoryRepo(db)
	customerRepo := repository.NewCustomerRepo(db)
	saleRepo := repository.NewSaleRepo(db)
	paymentRepo := repository.NewPaymentRepo(db)
	orderRepo := repository.NewPurchaseOrderRepo(db)
	repairRepo := repository.NewRepairRepo(db)
	movementRepo := repository.NewStockMovementRepo(db)

	catalog := NewCatalogHandler(service.NewCatalogService(db, repository.NewCategoryRepo(db), subcategoryRepo, productRepo, orderRepo, movementRepo, nil))
	sales := NewSaleHandler(service.NewSaleService(db, saleRepo, productRepo, customerRepo, paymentRepo, movementRepo, nil))
	reorder := NewReorderHandler(service.NewReorderService(db, productRepo, orderRepo, nil))
	orders := NewPurchaseOrderHandler(service.NewPurchaseOrderService(db, orderRepo, productRepo, subcategoryRepo, movementRepo, nil))
	customers := NewCustomerHandler(service.NewCustomerService(customerRepo, saleRepo, repairRepo))
	repairs := NewRepairHandler(service.NewRepairService(db, repairRepo, customerRepo, paymentRepo, nil))
	dash := NewDashboardHandler(service.NewDashboardService(movementRepo, saleRepo))

	app := fiber.New()
	app.Post("/api/v1/public/customers", customers.RegisterPublic)
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Locals("user_id", "u-1")
		c.Locals("user_name", "Ravi")
		c.Locals("user_email", "ravi@example.com")
		return c.Next()
	})
	api.Post("/categories", catalog.CreateCategory)
	api.Post("/subcategories", catalog.CreateSubcategory)
	api.Get("/products", catalog.GetProducts)
	api.Get("/products/:id", catalog.GetProduct)
	api.Post("/products", catalog.CreateProduct)
	api.Delete("/products/:id", catalog.DeleteProduct)
	api.Post("/sales", sales.Checkout)
	api.Get("/sales", sales.GetSales)
	api.Get("/sales/:id", sales.GetSale)
	api.Post("/sales/:id/payments", sales.PaySale)
	api.Post("/sales/:id/settle", sales.SettleSale)
	api.Get("/reorder", reorder.Preview)
	api.Post("/reorder/orders", reorder.CreateOrder)
	api.Get("/purchase-orders/:id", orders.GetOrder)
	api.Post("/purchase-orders/:id/items/:itemId/receive", orders.ReceiveItem)
	api.Delete("/purchase-orders/:id", orders.DeleteOrder)
	api.Post("/customers", customers.CreateCustomer)
	api.Get("/customers/phone/:phone", customers.GetByPhone)
	api.Get("/customers/phone/:phone/history", customers.GetHistory)
	api.Get("/customers/campaigns/pending", customers.GetPendingTargets)
	api.Get("/customers/campaigns/inactive", customers.GetInactiveTargets)
	api.Delete("/customers/:id", customers.DeleteCustomer)
	api.Post("/customers/:id/campaign-sent", customers.MarkCampaignSent)
	api.Post("/repairs", repairs.CreateRepair)
	api.Post("/repairs/:id/payments", repairs.AddPayment)
	api.Post("/repairs/:id/deliver", repairs.Deliver)
	api.Get("/dashboard/stats", dash.GetDashboardStats)

	return &testServer{app: app, db: db}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func (s *testServer) seedProduct(t *testing.T, p model.Product) model.Product {
	t.Helper()
	require.NoError(t, repository.NewProductRepo(s.db).Create(context.Background(), &p))
	return p
}

type envelope[T any] struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Data    T      `json:"data"`
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func TestCheckoutEndpoint(t *testing.T) {
	s := newTestServer(t)
	p := s.seedProduct(t, model.Product{Name: "Type-C cable", Price: decimal.NewFromInt(80), SellingPrice: decimal.NewFromInt(150), Stock: 5, MinStock: 1})

	status, raw := s.do(t, http.MethodPost, "/api/v1/sales", fiber.Map{
		"customer_phone": "9876543210",
		"customer_name":  "Anil",
		"payment_mode":   "partial",
		"paid_amount":    100,
		"items": []fiber.Map{
			{"product_id": p.ID, "name": p.Name, "qty": 2, "cost_price": 80, "selling_price": 150},
		},
	})
	require.Equal(t, http.StatusCreated, status, string(raw))

	sale := decode[envelope[model.Sale]](t, raw).Data
	assert.True(t, sale.Total.Equal(decimal.NewFromInt(300)))
	assert.True(t, sale.PendingAmount.Equal(decimal.NewFromInt(200)))
	assert.Equal(t, model.PaymentStatusPartial, sale.PaymentStatus)

	status, raw = s.do(t, http.MethodGet, "/api/v1/products/"+p.ID.String(), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 3, decode[model.Product](t, raw).Stock)

	status, raw = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/sales/%s/settle", sale.ID), fiber.Map{"method": "upi"})
	require.Equal(t, http.StatusOK, status, string(raw))
	settled := decode[envelope[model.Sale]](t, raw).Data
	assert.Equal(t, model.PaymentStatusPaid, settled.PaymentStatus)

	status, raw = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/sales/%s/settle", sale.ID), nil)
	assert.Equal(t, http.StatusBadRequest, status, string(raw))
}

func TestCheckoutRejectsInvalidCart(t *testing.T) {
	s := newTestServer(t)

	status, raw := s.do(t, http.MethodPost, "/api/v1/sales", fiber.Map{
		"customer_phone": "9876543210",
		"payment_mode":   "cash",
		"items":          []fiber.Map{},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, decode[envelope[any]](t, raw).Error, "validation failed")

	status, _ = s.do(t, http.MethodPost, "/api/v1/sales", fiber.Map{
		"customer_phone": "12345",
		"payment_mode":   "cash",
		"items":          []fiber.Map{{"product_id": uuid.New(), "qty": 1}},
	})
	assert.Equal(t, http.StatusBadRequest, status)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetSaleStatuses(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.do(t, http.MethodGet, "/api/v1/sales/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, raw := s.do(t, http.MethodGet, "/api/v1/sales/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, service.ErrSaleNotFound.Error(), decode[envelope[any]](t, raw).Error)

	status, _ = s.do(t, http.MethodGet, "/api/v1/sales?from=2024-13-40", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, raw = s.do(t, http.MethodGet, "/api/v1/sales?range=7d", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, decode[[]model.Sale](t, raw))
}

func TestReorderAndReceiveFlow(t *testing.T) {
	s := newTestServer(t)

	status, raw := s.do(t, http.MethodPost, "/api/v1/categories", fiber.Map{"name": "Batteries"})
	require.Equal(t, http.StatusCreated, status, string(raw))
	cat := decode[envelope[model.Category]](t, raw).Data

	p := s.seedProduct(t, model.Product{Name: "BL-5C", Price: decimal.NewFromInt(150), Stock: 1, MinStock: 4,
		CategoryID: &cat.ID, CategoryName: cat.Name})

	status, raw = s.do(t, http.MethodGet, "/api/v1/reorder", nil)
	require.Equal(t, http.StatusOK, status)
	groups := decode[[]service.ReorderGroup](t, raw)
	require.Len(t, groups, 1)
	assert.Equal(t, 3, groups[0].Lines[0].OrderQty)

	status, raw = s.do(t, http.MethodPost, "/api/v1/reorder/orders", fiber.Map{"category_name": "Batteries"})
	require.Equal(t, http.StatusCreated, status, string(raw))
	order := decode[envelope[model.PurchaseOrder]](t, raw).Data
	require.Len(t, order.Items, 1)

	status, _ = s.do(t, http.MethodPost, "/api/v1/reorder/orders", fiber.Map{"category_name": "Batteries"})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = s.do(t, http.MethodDelete, "/api/v1/products/"+p.ID.String(), nil)
	assert.Equal(t, http.StatusConflict, status)

	receivePath := fmt.Sprintf("/api/v1/purchase-orders/%s/items/%s/receive", order.ID, order.Items[0].ID)
	status, raw = s.do(t, http.MethodPost, receivePath, fiber.Map{"received_qty": 3})
	require.Equal(t, http.StatusOK, status, string(raw))
	received := decode[envelope[model.PurchaseOrder]](t, raw).Data
	assert.Equal(t, model.OrderCompleted, received.Status)

	status, _ = s.do(t, http.MethodPost, receivePath, fiber.Map{"received_qty": 3})
	assert.Equal(t, http.StatusConflict, status)

	status, raw = s.do(t, http.MethodGet, "/api/v1/products/"+p.ID.String(), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 4, decode[model.Product](t, raw).Stock)
}

func TestDeletePendingOrderFreesCategory(t *testing.T) {
	s := newTestServer(t)

	status, raw := s.do(t, http.MethodPost, "/api/v1/categories", fiber.Map{"name": "Chargers"})
	require.Equal(t, http.StatusCreated, status, string(raw))
	cat := decode[envelope[model.Category]](t, raw).Data
	s.seedProduct(t, model.Product{Name: "20W Charger", Price: decimal.NewFromInt(250), Stock: 0, MinStock: 2,
		CategoryID: &cat.ID, CategoryName: cat.Name})

	status, raw = s.do(t, http.MethodPost, "/api/v1/reorder/orders", fiber.Map{"category_name": "Chargers"})
	require.Equal(t, http.StatusCreated, status, string(raw))
	order := decode[envelope[model.PurchaseOrder]](t, raw).Data

	status, raw = s.do(t, http.MethodDelete, "/api/v1/purchase-orders/"+order.ID.String(), nil)
	require.Equal(t, http.StatusOK, status, string(raw))

	status, _ = s.do(t, http.MethodGet, "/api/v1/purchase-orders/"+order.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, raw = s.do(t, http.MethodPost, "/api/v1/reorder/orders", fiber.Map{"category_name": "Chargers"})
	assert.Equal(t, http.StatusCreated, status, string(raw))
}

func TestReorderCreateOrderValidation(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.do(t, http.MethodPost, "/api/v1/reorder/orders", fiber.Map{})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodPost, "/api/v1/reorder/orders", fiber.Map{"category_name": "Nothing low"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodGet, "/api/v1/reorder?category_id=bad", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestCustomerEndpoints(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.do(t, http.MethodGet, "/api/v1/customers/phone/123", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodGet, "/api/v1/customers/phone/9876543210", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, raw := s.do(t, http.MethodPost, "/api/v1/repairs", fiber.Map{
		"customer_phone":   "9876543210",
		"customer_name":    "Meena",
		"device_name":      "Galaxy A12",
		"issue":            "charging port",
		"estimated_amount": 800,
		"paid_amount":      200,
	})
	require.Equal(t, http.StatusCreated, status, string(raw))

	status, raw = s.do(t, http.MethodGet, "/api/v1/customers/phone/9876543210/history", nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	history := decode[service.CustomerHistory](t, raw)
	assert.Len(t, history.Repairs, 1)
	assert.True(t, history.TotalPending.Equal(decimal.NewFromInt(600)))
}

func TestCustomerIntakeAndCampaigns(t *testing.T) {
	s := newTestServer(t)

	status, raw := s.do(t, http.MethodPost, "/api/v1/public/customers", fiber.Map{"name": "Sahil", "phone": "9811111111"})
	require.Equal(t, http.StatusCreated, status, string(raw))
	registered := decode[envelope[model.Customer]](t, raw).Data
	assert.Equal(t, "public", registered.CreatedBy)

	status, _ = s.do(t, http.MethodPost, "/api/v1/public/customers", fiber.Map{"name": "Sahil", "phone": "9811111111"})
	assert.Equal(t, http.StatusConflict, status)
	status, _ = s.do(t, http.MethodPost, "/api/v1/customers", fiber.Map{"name": "Bad phone", "phone": "55555"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, raw = s.do(t, http.MethodPost, "/api/v1/customers", fiber.Map{"name": "Nisha", "phone": "9822222222"})
	require.Equal(t, http.StatusCreated, status, string(raw))
	assert.Equal(t, "u-1", decode[envelope[model.Customer]](t, raw).Data.CreatedBy)

	// neither customer has visited, so both are win-back targets
	status, raw = s.do(t, http.MethodGet, "/api/v1/customers/campaigns/inactive", nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.Len(t, decode[[]service.CampaignTarget](t, raw), 2)

	sentPath := "/api/v1/customers/" + registered.ID.String() + "/campaign-sent"
	status, raw = s.do(t, http.MethodPost, sentPath, nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	status, _ = s.do(t, http.MethodPost, sentPath, nil)
	assert.Equal(t, http.StatusConflict, status)

	status, raw = s.do(t, http.MethodGet, "/api/v1/customers/campaigns/inactive?days=30", nil)
	require.Equal(t, http.StatusOK, status)
	targets := decode[[]service.CampaignTarget](t, raw)
	require.Len(t, targets, 1)
	assert.Equal(t, "9822222222", targets[0].Phone)

	status, raw = s.do(t, http.MethodGet, "/api/v1/customers/campaigns/pending?limit=3", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decode[[]service.CampaignTarget](t, raw))

	status, _ = s.do(t, http.MethodDelete, "/api/v1/customers/"+registered.ID.String(), nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = s.do(t, http.MethodDelete, "/api/v1/customers/"+registered.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = s.do(t, http.MethodGet, "/api/v1/customers/phone/9811111111", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestRepairDeliveredRejectsPayment(t *testing.T) {
	s := newTestServer(t)

	status, raw := s.do(t, http.MethodPost, "/api/v1/repairs", fiber.Map{
		"customer_phone":   "9123456789",
		"customer_name":    "Joseph",
		"device_name":      "iPhone 11",
		"estimated_amount": 1500,
	})
	require.Equal(t, http.StatusCreated, status, string(raw))
	repair := decode[envelope[model.Repair]](t, raw).Data

	status, raw = s.do(t, http.MethodPost, "/api/v1/repairs/"+repair.ID.String()+"/deliver", nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.Equal(t, model.RepairDelivered, decode[envelope[model.Repair]](t, raw).Data.Status)

	status, _ = s.do(t, http.MethodPost, "/api/v1/repairs/"+repair.ID.String()+"/payments", fiber.Map{"amount": 100})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = s.do(t, http.MethodPost, "/api/v1/repairs/"+uuid.NewString()+"/deliver", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestProductEndpoints(t *testing.T) {
	s := newTestServer(t)

	status, raw := s.do(t, http.MethodPost, "/api/v1/products", fiber.Map{
		"name":          "Redmi Note 9 Display",
		"price":         900,
		"selling_price": 1400,
		"stock":         2,
	})
	require.Equal(t, http.StatusCreated, status, string(raw))
	created := decode[envelope[model.Product]](t, raw).Data
	assert.NotEmpty(t, created.Keywords)

	status, _ = s.do(t, http.MethodPost, "/api/v1/products", fiber.Map{"price": 1})
	assert.Equal(t, http.StatusBadRequest, status)

	status, raw = s.do(t, http.MethodGet, "/api/v1/products?q=redmi", nil)
	require.Equal(t, http.StatusOK, status)
	page := decode[service.ProductPage](t, raw)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 50, page.Limit)

	status, _ = s.do(t, http.MethodGet, "/api/v1/products?subcategory_id=x", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodDelete, "/api/v1/products/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = s.do(t, http.MethodGet, "/api/v1/products/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestDashboardStatsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.seedProduct(t, model.Product{Name: "Empty", Price: decimal.NewFromInt(1), Stock: 0, MinStock: 1})

	status, raw := s.do(t, http.MethodGet, "/api/v1/dashboard/stats?months=abc", nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	stats := decode[service.DashboardStats](t, raw)
	assert.Equal(t, int64(1), stats.OutOfStock)
}

func TestStatusOfMapsWrappedErrors(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: qty", service.ErrValidation), fiber.StatusBadRequest},
		{service.ErrCheckoutInProgress, fiber.StatusConflict},
		{fmt.Errorf("receive: %w", service.ErrItemAlreadyReceived), fiber.StatusConflict},
		{service.ErrOrderNotFound, fiber.StatusNotFound},
		{service.ErrCustomerNotFound, fiber.StatusNotFound},
		{service.ErrCustomerExists, fiber.StatusConflict},
		{service.ErrSaleFailed, fiber.StatusInternalServerError},
		{fmt.Errorf("boom"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusOf(tc.err), tc.err.Error())
	}
}
