package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Report   ReportConfig
	Storage  StorageConfig
	Analysis AnalysisConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	URL            string
	MaxConns       int
	MinConns       int
	MigrationsPath string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret string
}

// ReportConfig drives the AI report gateway. With no keys configured the
// gateway falls back to the built-in template composer.
type ReportConfig struct {
	OpenAIKey        string
	AnthropicKey     string
	DefaultProvider  string
	DefaultModel     string
	FallbackProvider string
	MaxRetries       int
}

// StorageConfig selects where raw uploads live: "local" keeps them on disk,
// "s3" uses any S3-compatible endpoint.
type StorageConfig struct {
	Backend   string
	LocalDir  string
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

type AnalysisConfig struct {
	MaxUploadBytes     int64
	MaxDurationSeconds float64
	SampleRate         int
}

func Load() (*Config, error) {
	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	maxConns, err := getEnvInt("DB_MAX_CONNS", 20)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	minConns, err := getEnvInt("DB_MIN_CONNS", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxRetries, err := getEnvInt("REPORT_MAX_RETRIES", 3)
	if err != nil {
		return nil, fmt.Errorf("invalid REPORT_MAX_RETRIES: %w", err)
	}

	maxUploadMB, err := getEnvInt("ANALYSIS_MAX_UPLOAD_MB", 20)
	if err != nil {
		return nil, fmt.Errorf("invalid ANALYSIS_MAX_UPLOAD_MB: %w", err)
	}

	maxDuration, err := getEnvInt("ANALYSIS_MAX_DURATION_SECONDS", 300)
	if err != nil {
		return nil, fmt.Errorf("invalid ANALYSIS_MAX_DURATION_SECONDS: %w", err)
	}

	sampleRate, err := getEnvInt("ANALYSIS_SAMPLE_RATE", 22050)
	if err != nil {
		return nil, fmt.Errorf("invalid ANALYSIS_SAMPLE_RATE: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConns:       maxConns,
			MinConns:       minConns,
			MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Report: ReportConfig{
			OpenAIKey:        getEnv("OPENAI_API_KEY", ""),
			AnthropicKey:     getEnv("ANTHROPIC_API_KEY", ""),
			DefaultProvider:  getEnv("REPORT_DEFAULT_PROVIDER", "openai"),
			DefaultModel:     getEnv("REPORT_DEFAULT_MODEL", "gpt-4o-mini"),
			FallbackProvider: getEnv("REPORT_FALLBACK_PROVIDER", ""),
			MaxRetries:       maxRetries,
		},
		Storage: StorageConfig{
			Backend:   getEnv("STORAGE_BACKEND", "local"),
			LocalDir:  getEnv("STORAGE_LOCAL_DIR", "data/uploads"),
			Bucket:    getEnv("STORAGE_BUCKET", "voice-uploads"),
			Region:    getEnv("STORAGE_S3_REGION", "us-east-1"),
			Endpoint:  getEnv("STORAGE_S3_ENDPOINT", ""),
			AccessKey: getEnv("STORAGE_S3_ACCESS_KEY", ""),
			SecretKey: getEnv("STORAGE_S3_SECRET_KEY", ""),
		},
		Analysis: AnalysisConfig{
			MaxUploadBytes:     int64(maxUploadMB) << 20,
			MaxDurationSeconds: float64(maxDuration),
			SampleRate:         sampleRate,
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) Validate() error {
	var missing []string
	if c.Database.URL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.Auth.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.Storage.Backend == "s3" && c.Storage.Bucket == "" {
		missing = append(missing, "STORAGE_BUCKET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}
