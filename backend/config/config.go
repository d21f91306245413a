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

type Config struct {
	Environment string

	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string
	AutoMigrate bool

	JWTSecret    string
	JWTTTL       time.Duration
	CookieSecure bool

	ServerPort   string
	ClientOrigin string
	AppURL       string

	StripeSecret           string
	StripeSuccessURL       string
	StripeCancelURL        string
	StripeRedirectURL      string
	StripeSettingsRedirect string
	PlatformFeePercent     float64
	Currency               string

	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSBucket          string
	AWSEndpoint        string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	EmailFrom    string
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	jwtTTL, err := time.ParseDuration(getEnv("JWT_TTL", "168h"))
	if err != nil {
		return nil, fmt.Errorf("parse JWT_TTL: %w", err)
	}
	feePercent, err := strconv.ParseFloat(getEnv("PLATFORM_FEE_PERCENT", "30"), 64)
	if err != nil {
		return nil, fmt.Errorf("parse PLATFORM_FEE_PERCENT: %w", err)
	}
	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("parse SMTP_PORT: %w", err)
	}

	clientOrigin := getEnv("CLIENT_ORIGIN", "http://localhost:3000")

	return &Config{
		Environment: getEnv("NODE_ENV", "development"),

		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  getEnv("DB_PASSWORD", "postgres"),
		DBName:      getEnv("DB_NAME", "scholarly"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),
		AutoMigrate: getEnvBool("AUTO_MIGRATE", false),

		JWTSecret:    getEnv("JWT_SECRET", "secret"),
		JWTTTL:       jwtTTL,
		CookieSecure: getEnvBool("COOKIE_SECURE", false),

		ServerPort:   getEnv("PORT", "8000"),
		ClientOrigin: clientOrigin,
		AppURL:       getEnv("APP_URL", clientOrigin),

		StripeSecret:           getEnv("STRIPE_SECRET", ""),
		StripeSuccessURL:       getEnv("STRIPE_SUCCESS_URL", clientOrigin+"/stripe/success"),
		StripeCancelURL:        getEnv("STRIPE_CANCEL_URL", clientOrigin+"/stripe/cancel"),
		StripeRedirectURL:      getEnv("STRIPE_REDIRECT_URL", clientOrigin+"/stripe/callback"),
		StripeSettingsRedirect: getEnv("STRIPE_SETTINGS_REDIRECT", clientOrigin+"/instructor"),
		PlatformFeePercent:     feePercent,
		Currency:               strings.ToLower(getEnv("CURRENCY", "usd")),

		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSBucket:          getEnv("AWS_BUCKET", "scholarly-bucket"),
		AWSEndpoint:        getEnv("AWS_ENDPOINT", ""),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     smtpPort,
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		EmailFrom:    getEnv("EMAIL_FROM", "no-reply@scholarly.local"),
	}, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Validate reports configuration that must not fall back to defaults in production.
func (c *Config) Validate() error {
	if c.PlatformFeePercent < 0 || c.PlatformFeePercent > 100 {
		return fmt.Errorf("PLATFORM_FEE_PERCENT must be between 0 and 100, got %v", c.PlatformFeePercent)
	}
	if !c.IsProduction() {
		return nil
	}
	var missing []string
	if c.JWTSecret == "" || c.JWTSecret == "secret" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.StripeSecret == "" {
		missing = append(missing, "STRIPE_SECRET")
	}
	if c.AWSAccessKeyID == "" || c.AWSSecretAccessKey == "" {
		missing = append(missing, "AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing production configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// DSN returns the Postgres connection string for gorm and goose.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
