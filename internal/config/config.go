package config

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// MinSessionSecretLength is the minimum secret length accepted in production.
const MinSessionSecretLength = 32

type Config struct {
	ServerPort  string
	Environment string

	DBDriver         string // "postgres" or "sqlite"
	DBHost           string
	DBPort           uint
	DBName           string
	DBUsername       string
	DBPassword       string
	DBSecretID       string
	DBSSLModeDisable bool
	DBPath           string

	SessionSecret string
	SessionTTL    time.Duration
	CookieSecure  bool

	AllowedOrigins    []string
	NotifyWebhookURL  string
	AWSRegion         string
	RenewalWindowDays int

	AdminEmail    string
	AdminPassword string
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	environment := getEnv("ENVIRONMENT", "development")
	secret := os.Getenv("SESSION_SECRET")
	if err := ValidateSessionSecret(secret, environment); err != nil {
		return nil, err
	}
	if secret == "" {
		generated, err := GenerateSecureSecret()
		if err != nil {
			return nil, err
		}
		secret = generated
		log.Println("[WARNING] SESSION_SECRET not set: generated a temporary secret, sessions will not survive a restart")
	}

	port, err := strconv.ParseUint(getEnv("DB_PORT", "5432"), 10, 32)
	if err != nil {
		port = 5432
	}

	return &Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		Environment:       environment,
		DBDriver:          strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            uint(port),
		DBName:            getEnv("DB_NAME", "claims"),
		DBUsername:        os.Getenv("DB_USERNAME"),
		DBPassword:        os.Getenv("DB_PASSWORD"),
		DBSecretID:        os.Getenv("DB_SECRET_ID"),
		DBSSLModeDisable:  getEnvBool("DB_SSL_MODE_DISABLE", false),
		DBPath:            getEnv("DB_PATH", "claims.db"),
		SessionSecret:     secret,
		SessionTTL:        time.Duration(getEnvInt("SESSION_TTL_HOURS", 24)) * time.Hour,
		CookieSecure:      getEnvBool("COOKIE_SECURE", environment == "production"),
		AllowedOrigins:    strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:3000"), ","),
		NotifyWebhookURL:  os.Getenv("NOTIFY_WEBHOOK_URL"),
		AWSRegion:         getEnv("AWS_REGION", "us-east-1"),
		RenewalWindowDays: getEnvInt("RENEWAL_WINDOW_DAYS", 30),
		AdminEmail:        os.Getenv("ADMIN_EMAIL"),
		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
	}, nil
}

func (c *Config) IsProduction() bool { return c.Environment == "production" }

// ValidateSessionSecret rejects missing, short or well-known secrets in production.
// Outside production an empty secret is allowed; Load replaces it with a random one.
func ValidateSessionSecret(secret, environment string) error {
	insecure := []string{"secret", "change-me", "changeme", "development", "test", "default"}
	for _, v := range insecure {
		if strings.EqualFold(secret, v) {
			if environment == "production" {
				return fmt.Errorf("SESSION_SECRET is set to an insecure default value")
			}
			log.Printf("[WARNING] SESSION_SECRET is set to an insecure default value, acceptable only in development")
			return nil
		}
	}
	if environment == "production" && len(secret) < MinSessionSecretLength {
		return fmt.Errorf("SESSION_SECRET must be at least %d characters in production (got %d)", MinSessionSecretLength, len(secret))
	}
	return nil
}

func GenerateSecureSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session secret: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return def
	}
	return n
}

func getEnvBool(key string, def bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return def
	}
}
