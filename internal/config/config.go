package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var AppEnv Config

type Config struct {
	MongoURI            string
	DBName              string
	JWTSecret           string
	AccessTokenTTL      time.Duration
	RefreshTokenTTL     time.Duration
	StripeSecretKey     string
	StripeWebhookSecret string
	SendgridAPIKey      string
	FromEmail           string
	FromName            string
	CheckoutSuccessURL  string
	CheckoutCancelURL   string
	PendingOrderTTL     time.Duration
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = Config{
		MongoURI:            getEnvOrDefault("MONGO_URI", ""),
		DBName:              getEnvOrDefault("DB_NAME", "bentoandfriends"),
		JWTSecret:           getEnvOrDefault("JWT_SECRET", ""),
		AccessTokenTTL:      getDurationEnv("ACCESS_TOKEN_TTL", 20, time.Minute),
		RefreshTokenTTL:     getDurationEnv("REFRESH_TOKEN_TTL", 7, 24*time.Hour),
		StripeSecretKey:     getEnvOrDefault("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnvOrDefault("STRIPE_WEBHOOK_SECRET", ""),
		SendgridAPIKey:      getEnvOrDefault("SENDGRID_API_KEY", ""),
		FromEmail:           getEnvOrDefault("FROM_EMAIL", "orders@bentoandfriends.com.au"),
		FromName:            getEnvOrDefault("FROM_NAME", "Bento & Friends"),
		CheckoutSuccessURL:  getEnvOrDefault("CHECKOUT_SUCCESS_URL", "http://localhost:3000/order-success"),
		CheckoutCancelURL:   getEnvOrDefault("CHECKOUT_CANCEL_URL", "http://localhost:3000/cart"),
		PendingOrderTTL:     getDurationEnv("PENDING_ORDER_TTL", 7, 24*time.Hour),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}
