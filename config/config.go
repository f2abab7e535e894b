// config/config.go
package config

import (
	"errors"
	"os"
	"strconv"
)

// Config holds all settings loaded once at process start. It is passed by
// reference into the components that need it; no package keeps ambient
// copies of the secret or connection string.
type Config struct {
	Port     string
	MongoURI string
	MongoDB  string

	JWTSecret string

	UploadDir string

	SendGridAPIKey  string
	MailFromName    string
	MailFromAddress string

	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads configuration from the environment and applies defaults.
// JWT_SECRET is the only setting with no sane default.
func Load() (*Config, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}

	cfg := &Config{
		Port:            getEnv("PORT", "8000"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:         getEnv("MONGO_DB", "storefront"),
		JWTSecret:       secret,
		UploadDir:       getEnv("UPLOAD_DIR", "uploads"),
		SendGridAPIKey:  os.Getenv("SENDGRID_API_KEY"),
		MailFromName:    getEnv("MAIL_FROM_NAME", "Storefront"),
		MailFromAddress: getEnv("MAIL_FROM_ADDRESS", "no-reply@storefront.local"),
		RateLimitRPS:    getEnvFloat("RATE_LIMIT_RPS", 50),
		RateLimitBurst:  getEnvInt("RATE_LIMIT_BURST", 100),
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
