package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
)

type Config struct {
	AppName       string
	Port          string
	DBDriver      string // postgres | sqlite
	DatabaseURL   string
	JWTSecret     string
	JWTTTLHours   int
	AdminEmail    string
	AdminPassword string
}

// Load reads configuration from the environment. Call godotenv.Load first if
// a .env file should be honoured.
func Load() Config {
	cfg := Config{
		AppName:       getEnv("APP_NAME", "Shop POS v1.0"),
		Port:          getEnv("PORT", "3000"),
		DBDriver:      getEnv("DB_DRIVER", "postgres"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JWTSecret:     getEnv("JWT_SECRET", "your-super-secret-key-change-in-production"),
		JWTTTLHours:   getInt("JWT_TTL_HOURS", 24),
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin123"),
	}

	if cfg.DatabaseURL == "" {
		if cfg.DBDriver == "sqlite" {
			cfg.DatabaseURL = "file:shop.db?_foreign_keys=on"
		} else {
			cfg.DatabaseURL = fmt.Sprintf(
				"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=Asia/Kolkata",
				os.Getenv("DB_HOST"),
				os.Getenv("DB_USER"),
				os.Getenv("DB_PASSWORD"),
				os.Getenv("DB_NAME"),
				getEnv("DB_PORT", "5432"),
			)
		}
	}
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("invalid integer for %s: %s", key, v)
		return def
	}
	return n
}
