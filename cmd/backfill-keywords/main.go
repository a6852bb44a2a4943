package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-shop-pos/internal/config"
	"go-shop-pos/internal/repository"
	"go-shop-pos/internal/service"
	"go-shop-pos/pkg/database"

	"github.com/joho/godotenv"
)

// backfill-keywords regenerates search keywords and minimum stock for every
// product. Batches commit independently, so an interrupted run can simply be
// restarted.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}
	cfg := config.Load()

	db := database.ConnectDB(cfg.DBDriver, cfg.DatabaseURL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog := service.NewCatalogService(
		db,
		repository.NewCategoryRepo(db),
		repository.NewSubcategoryRepo(db),
		repository.NewProductRepo(db),
		repository.NewPurchaseOrderRepo(db),
		repository.NewStockMovementRepo(db),
		nil,
	)

	updated, err := catalog.BackfillKeywords(ctx)
	if err != nil {
		log.Fatalf("Backfill stopped after %d products: %v", updated, err)
	}
	log.Printf("Backfill complete: %d products updated", updated)
}
