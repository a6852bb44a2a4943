package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-shop-pos/internal/config"
	"go-shop-pos/internal/handler"
	"go-shop-pos/internal/middleware"
	"go-shop-pos/internal/model"
	"go-shop-pos/internal/repository"
	"go-shop-pos/internal/service"
	"go-shop-pos/internal/ws"
	"go-shop-pos/pkg/database"
	"go-shop-pos/pkg/jwt"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}
	cfg := config.Load()
	jwt.Configure(cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour)

	// 2. Setup Database
	db := database.ConnectDB(cfg.DBDriver, cfg.DatabaseURL)
	if err := model.AutoMigrate(db); err != nil {
		log.Fatalf("Auto migration failed: %v", err)
	}

	// 3. Seed default privileges, roles, and admin user
	seedPrivilegesRolesAndAdmin(db, cfg)

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 5. Dependency Injection (Wiring Layers)
	productRepo := repository.NewProductRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	subcategoryRepo := repository.NewSubcategoryRepo(db)
	customerRepo := repository.NewCustomerRepo(db)
	saleRepo := repository.NewSaleRepo(db)
	paymentRepo := repository.NewPaymentRepo(db)
	orderRepo := repository.NewPurchaseOrderRepo(db)
	repairRepo := repository.NewRepairRepo(db)
	movementRepo := repository.NewStockMovementRepo(db)
	userRepo := repository.NewUserRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	catalogService := service.NewCatalogService(db, categoryRepo, subcategoryRepo, productRepo, orderRepo, movementRepo, wsHub)
	saleService := service.NewSaleService(db, saleRepo, productRepo, customerRepo, paymentRepo, movementRepo, wsHub)
	reorderService := service.NewReorderService(db, productRepo, orderRepo, wsHub)
	orderService := service.NewPurchaseOrderService(db, orderRepo, productRepo, subcategoryRepo, movementRepo, wsHub)
	customerService := service.NewCustomerService(customerRepo, saleRepo, repairRepo)
	repairService := service.NewRepairService(db, repairRepo, customerRepo, paymentRepo, wsHub)
	dashService := service.NewDashboardService(movementRepo, saleRepo)
	authService := service.NewAuthService(userRepo, wsHub)
	userService := service.NewUserService(userRepo, privilegeRepo, roleRepo)

	catalogHandler := handler.NewCatalogHandler(catalogService)
	saleHandler := handler.NewSaleHandler(saleService)
	reorderHandler := handler.NewReorderHandler(reorderService)
	orderHandler := handler.NewPurchaseOrderHandler(orderService)
	customerHandler := handler.NewCustomerHandler(customerService)
	repairHandler := handler.NewRepairHandler(repairService)
	dashHandler := handler.NewDashboardHandler(dashService)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(userService)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: cfg.AppName,
	})

	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	// 7. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Post("/validate-token", authHandler.ValidateToken)
	auth.Post("/heartbeat", middleware.RequireAuth(userRepo), authHandler.Heartbeat)

	// QR self-registration
	api.Post("/public/customers", customerHandler.RegisterPublic)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(userRepo))
	priv := middleware.RequirePrivilege

	// Dashboard
	protected.Get("/dashboard/stats", priv(model.PrivDashboardView), dashHandler.GetDashboardStats)
	protected.Get("/dashboard/stock-movement", priv(model.PrivDashboardView), dashHandler.GetStockMovement)

	// Catalog
	protected.Get("/categories", priv(model.PrivCatalogView), catalogHandler.GetCategories)
	protected.Post("/categories", priv(model.PrivCatalogEdit), catalogHandler.CreateCategory)
	protected.Put("/categories/:id", priv(model.PrivCatalogEdit), catalogHandler.UpdateCategory)
	protected.Delete("/categories/:id", priv(model.PrivCatalogDelete), catalogHandler.DeleteCategory)
	protected.Get("/subcategories", priv(model.PrivCatalogView), catalogHandler.GetSubcategories)
	protected.Post("/subcategories", priv(model.PrivCatalogEdit), catalogHandler.CreateSubcategory)
	protected.Delete("/subcategories/:id", priv(model.PrivCatalogDelete), catalogHandler.DeleteSubcategory)
	protected.Get("/products", priv(model.PrivCatalogView), catalogHandler.GetProducts)
	protected.Get("/products/count", priv(model.PrivCatalogView), catalogHandler.CountProducts)
	protected.Get("/products/:id", priv(model.PrivCatalogView), catalogHandler.GetProduct)
	protected.Get("/products/:id/movements", priv(model.PrivCatalogView), catalogHandler.GetStockHistory)
	protected.Post("/products", priv(model.PrivCatalogEdit), catalogHandler.CreateProduct)
	protected.Put("/products/:id", priv(model.PrivCatalogEdit), catalogHandler.UpdateProduct)
	protected.Delete("/products/:id", priv(model.PrivCatalogDelete), catalogHandler.DeleteProduct)
	protected.Post("/maintenance/backfill-keywords", priv(model.PrivMaintenanceTasks), catalogHandler.BackfillKeywords)

	// Sales and payments
	protected.Post("/sales", priv(model.PrivSaleCreate), saleHandler.Checkout)
	protected.Get("/sales", priv(model.PrivSaleView), saleHandler.GetSales)
	protected.Get("/sales/pending", priv(model.PrivSaleView), saleHandler.GetPendingSales)
	protected.Get("/sales/:id", priv(model.PrivSaleView), saleHandler.GetSale)
	protected.Post("/sales/:id/payments", priv(model.PrivPaymentCreate), saleHandler.PaySale)
	protected.Post("/sales/:id/settle", priv(model.PrivPaymentCreate), saleHandler.SettleSale)
	protected.Get("/payments", priv(model.PrivSaleView), saleHandler.GetPayments)

	// Reorder and purchase orders
	protected.Get("/reorder", priv(model.PrivReorderView), reorderHandler.Preview)
	protected.Post("/reorder/orders", priv(model.PrivPurchaseOrder), reorderHandler.CreateOrder)
	protected.Get("/purchase-orders", middleware.RequireAnyPrivilege(model.PrivPurchaseOrder, model.PrivPurchaseReceive), orderHandler.GetOrders)
	protected.Get("/purchase-orders/:id", middleware.RequireAnyPrivilege(model.PrivPurchaseOrder, model.PrivPurchaseReceive), orderHandler.GetOrder)
	protected.Post("/purchase-orders/:id/items/:itemId/receive", priv(model.PrivPurchaseReceive), orderHandler.ReceiveItem)
	protected.Put("/purchase-orders/:id/items/:itemId", priv(model.PrivPurchaseOrder), orderHandler.UpdateItemQty)
	protected.Delete("/purchase-orders/:id", priv(model.PrivPurchaseOrder), orderHandler.DeleteOrder)

	// Customers
	protected.Get("/customers", priv(model.PrivCustomerView), customerHandler.GetCustomers)
	protected.Post("/customers", priv(model.PrivCustomerEdit), customerHandler.CreateCustomer)
	protected.Get("/customers/phone/:phone", priv(model.PrivCustomerView), customerHandler.GetByPhone)
	protected.Get("/customers/phone/:phone/history", priv(model.PrivCustomerView), customerHandler.GetHistory)
	protected.Get("/customers/campaigns/pending", priv(model.PrivCustomerView), customerHandler.GetPendingTargets)
	protected.Get("/customers/campaigns/inactive", priv(model.PrivCustomerView), customerHandler.GetInactiveTargets)
	protected.Put("/customers/:id", priv(model.PrivCustomerEdit), customerHandler.UpdateCustomer)
	protected.Delete("/customers/:id", priv(model.PrivCustomerEdit), customerHandler.DeleteCustomer)
	protected.Post("/customers/:id/campaign-sent", priv(model.PrivCustomerEdit), customerHandler.MarkCampaignSent)

	// Repairs
	protected.Get("/repairs", priv(model.PrivRepairView), repairHandler.GetRepairs)
	protected.Get("/repairs/:id", priv(model.PrivRepairView), repairHandler.GetRepair)
	protected.Post("/repairs", priv(model.PrivRepairManage), repairHandler.CreateRepair)
	protected.Post("/repairs/:id/payments", priv(model.PrivRepairManage), repairHandler.AddPayment)
	protected.Post("/repairs/:id/complete", priv(model.PrivRepairManage), repairHandler.Complete)
	protected.Post("/repairs/:id/deliver", priv(model.PrivRepairManage), repairHandler.Deliver)

	// User management
	protected.Get("/users", priv(model.PrivUserView), userHandler.GetUsers)
	protected.Get("/users/:id", priv(model.PrivUserView), userHandler.GetUser)
	protected.Post("/users", priv(model.PrivUserManage), userHandler.CreateUser)
	protected.Put("/users/:id", priv(model.PrivUserManage), userHandler.UpdateUser)
	protected.Delete("/users/:id", priv(model.PrivUserManage), userHandler.DeleteUser)
	protected.Put("/users/:id/privileges", priv(model.PrivUserManage), userHandler.UpdateUserPrivileges)
	protected.Get("/roles", roleHandler.GetRoles)
	protected.Get("/privileges", roleHandler.GetPrivileges)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		if !wsHub.Join(c) {
			return
		}
		defer wsHub.Leave(c)

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}
	wsHub.Stop()

	log.Println("Server exited")
}

// seedPrivilegesRolesAndAdmin creates default privileges, roles, and the
// OWNER account if they don't exist
func seedPrivilegesRolesAndAdmin(db *gorm.DB, cfg config.Config) {
	ctx := context.Background()
	privilegeRepo := repository.NewPrivilegeRepo(db)
	userRepo := repository.NewUserRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	if err := privilegeRepo.SeedDefaults(ctx); err != nil {
		log.Printf("Warning: Failed to seed privileges: %v", err)
	}
	if err := roleRepo.SeedDefaults(ctx); err != nil {
		log.Printf("Warning: Failed to seed roles: %v", err)
	}

	if _, err := userRepo.FindByEmail(ctx, cfg.AdminEmail); err == nil {
		return
	}

	ownerRole, err := roleRepo.FindByCode(ctx, model.RoleOwner)
	if err != nil {
		log.Printf("Warning: OWNER role missing, admin not created: %v", err)
		return
	}

	admin := &model.User{
		Email:      cfg.AdminEmail,
		FullName:   "Shop Owner",
		RoleID:     &ownerRole.ID,
		IsActive:   true,
		Privileges: ownerRole.Privileges,
	}
	admin.CreatedBy = "system"
	admin.UpdatedBy = "system"

	if err := admin.SetPassword(cfg.AdminPassword); err != nil {
		log.Printf("Warning: Failed to hash admin password: %v", err)
		return
	}

	if err := userRepo.Create(ctx, admin); err != nil {
		log.Printf("Warning: Failed to create admin user: %v", err)
	} else {
		log.Printf("Admin user created: %s (OWNER)", cfg.AdminEmail)
	}
}
