package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the service.
type Config struct {
	Env         string // "production" or "development"
	Port        string // HTTP port (default: 8080)
	MongoURI    string // MongoDB connection string
	MongoDB     string // Database name
	RedisAddr   string // Redis address; empty disables the alert cache
	RedisPass   string
	RedisDB     int
	JWTSecret   string // Secret for signing session tokens
	CORSOrigins string // Comma-separated allowed origins; empty allows all
}

// LoadConfig loads environment variables into a Config struct.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// No .env file is fine; plain environment variables apply.
	}

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	cfg := &Config{
		Env:         getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:     getEnv("MONGO_DB", "homestock"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		RedisPass:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:     redisDB,
		JWTSecret:   os.Getenv("JWT_SECRET"),
		CORSOrigins: os.Getenv("CORS_ORIGINS"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
