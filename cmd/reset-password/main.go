package main

import (
	"context"
	"flag"
	"log"

	"go-shop-pos/internal/config"
	"go-shop-pos/internal/repository"
	"go-shop-pos/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}
	cfg := config.Load()

	email := flag.String("email", cfg.AdminEmail, "account to reset")
	password := flag.String("password", cfg.AdminPassword, "new password (min 6 characters)")
	flag.Parse()

	if len(*password) < 6 {
		log.Fatal("Password must be at least 6 characters")
	}

	// 2. Setup Database
	db := database.ConnectDB(cfg.DBDriver, cfg.DatabaseURL)
	userRepo := repository.NewUserRepo(db)
	ctx := context.Background()

	// 3. Find user
	user, err := userRepo.FindByEmail(ctx, *email)
	if err != nil {
		log.Fatalf("User %s not found in database: %v", *email, err)
	}

	// 4. Hash new password and drop any live session
	if err := user.SetPassword(*password); err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}
	user.TokenVersion = uuid.New().String()
	user.UpdatedBy = "system"

	// 5. Update
	if err := userRepo.Update(ctx, user); err != nil {
		log.Fatalf("Failed to update password in DB: %v", err)
	}

	log.Printf("Password for %s has been reset", *email)
}
