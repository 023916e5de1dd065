package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Mail     MailConfig
	Payment  PaymentConfig
	Geocoder GeocoderConfig
	CORS     CORSConfig
	Security SecurityConfig
	App      AppConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	Secret            string
	AccessTokenExpiry time.Duration
}

// MailConfig holds SMTP configuration for outbound notifications
type MailConfig struct {
	Mode        string // "dev" logs instead of sending, "production" sends via SMTP
	Host        string
	Port        string
	Username    string
	Password    string
	FromAddress string
	DialTimeout time.Duration
}

// PaymentConfig holds Razorpay gateway configuration
type PaymentConfig struct {
	KeyID           string
	KeySecret       string // shared secret, also signs webhook callbacks - never expose
	Currency        string
	RequestTimeout  time.Duration
	PaymentLinkBase string // front-end checkout page, order id is appended
}

// GeocoderConfig holds the address geocoding configuration
type GeocoderConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	BcryptCost int
}

// AppConfig holds application-level settings
type AppConfig struct {
	BaseURL string // front-end base URL used in confirmation links
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "3800"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", ""),
			AccessTokenExpiry: time.Duration(getEnvAsInt("JWT_ACCESS_TOKEN_EXPIRY", 86400)) * time.Second,
		},
		Mail: MailConfig{
			Mode:        getEnv("MAIL_MODE", "dev"),
			Host:        getEnv("SMTP_HOST", ""),
			Port:        getEnv("SMTP_PORT", "587"),
			Username:    getEnv("SMTP_USERNAME", ""),
			Password:    getEnv("SMTP_PASSWORD", ""),
			FromAddress: getEnv("SMTP_FROM_ADDRESS", ""),
			DialTimeout: time.Duration(getEnvAsInt("SMTP_DIAL_TIMEOUT", 10)) * time.Second,
		},
		Payment: PaymentConfig{
			KeyID:           getEnv("RAZORPAY_KEY_ID", ""),
			KeySecret:       getEnv("RAZORPAY_SECRET_KEY", ""),
			Currency:        getEnv("RAZORPAY_CURRENCY", "INR"),
			RequestTimeout:  time.Duration(getEnvAsInt("RAZORPAY_REQUEST_TIMEOUT", 30)) * time.Second,
			PaymentLinkBase: getEnv("PAYMENT_LINK_BASE", "http://localhost:3000/payment"),
		},
		Geocoder: GeocoderConfig{
			BaseURL:        getEnv("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org"),
			RequestTimeout: time.Duration(getEnvAsInt("GEOCODER_REQUEST_TIMEOUT", 10)) * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		},
		Security: SecurityConfig{
			BcryptCost: getEnvAsInt("BCRYPT_COST", 12),
		},
		App: AppConfig{
			BaseURL: getEnv("APP_BASE_URL", "http://localhost:3000"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.Payment.KeyID == "" || c.Payment.KeySecret == "" {
		return fmt.Errorf("RAZORPAY_KEY_ID and RAZORPAY_SECRET_KEY are required")
	}

	if c.Mail.Mode == "production" {
		if c.Mail.Host == "" {
			return fmt.Errorf("SMTP_HOST is required in production mail mode")
		}
		if c.Mail.FromAddress == "" {
			return fmt.Errorf("SMTP_FROM_ADDRESS is required in production mail mode")
		}
	}

	return nil
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
