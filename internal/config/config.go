package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Org      OrgConfig
	Face     FaceConfig
	Storage  StorageConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret            string
	RefreshExpiration string
	AccessExpiration  string
}

// AppConfig holds application configuration
type AppConfig struct {
	Name           string
	Version        string
	Port           int
	Env            string
	AllowedOrigins []string
}

// OrgConfig holds the organization's attendance policy.
type OrgConfig struct {
	// TimezoneOffset is the fixed UTC offset all calendar days are bucketed
	// by, e.g. "+05:30".
	TimezoneOffset string
	// WorkdayStart is the local time work begins, HH:MM.
	WorkdayStart string
	// GraceMinutes past WorkdayStart before a check-in counts as late.
	GraceMinutes int
}

// FaceConfig holds face verification settings. When disabled, evidence
// photos are stored without comparison.
type FaceConfig struct {
	Enabled             bool
	AWSRegion           string
	SimilarityThreshold float32
	Timeout             time.Duration
}

type StorageConfig struct {
	BasePath string
	BaseURL  string
}

func Load() (*Config, error) {
	// .env is optional outside local development
	_ = godotenv.Load()

	config := &Config{}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "attendance"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Name:           getEnv("APP_NAME", "attendance-backend"),
		Version:        getEnv("APP_VERSION", "v1.0.0"),
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}

	config.JWT = JWTConfig{
		Secret:            getEnv("JWT_SECRET_KEY", ""),
		RefreshExpiration: getEnv("JWT_REFRESH_EXPIRATION_TIME", "168h"),
		AccessExpiration:  getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	graceMinutes, err := strconv.Atoi(getEnv("ORG_GRACE_MINUTES", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid ORG_GRACE_MINUTES: %w", err)
	}

	config.Org = OrgConfig{
		TimezoneOffset: getEnv("ORG_TIMEZONE_OFFSET", "+05:30"),
		WorkdayStart:   getEnv("ORG_WORKDAY_START", "09:00"),
		GraceMinutes:   graceMinutes,
	}

	faceThreshold, err := strconv.ParseFloat(getEnv("FACE_SIMILARITY_THRESHOLD", "90"), 32)
	if err != nil {
		return nil, fmt.Errorf("invalid FACE_SIMILARITY_THRESHOLD: %w", err)
	}
	faceTimeout, err := time.ParseDuration(getEnv("FACE_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid FACE_TIMEOUT: %w", err)
	}

	config.Face = FaceConfig{
		Enabled:             getEnv("FACE_VERIFICATION_ENABLED", "true") == "true",
		AWSRegion:           getEnv("AWS_REGION", "ap-south-1"),
		SimilarityThreshold: float32(faceThreshold),
		Timeout:             faceTimeout,
	}

	config.Storage = StorageConfig{
		BasePath: getEnv("STORAGE_BASE_PATH", "./uploads"),
		BaseURL:  getEnv("STORAGE_BASE_URL", "http://localhost:8080/uploads"),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Org.GraceMinutes < 0 {
		return fmt.Errorf("ORG_GRACE_MINUTES must not be negative")
	}
	if c.Face.SimilarityThreshold < 0 || c.Face.SimilarityThreshold > 100 {
		return fmt.Errorf("FACE_SIMILARITY_THRESHOLD must be between 0 and 100")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return strings.Split(value, ",")
}
