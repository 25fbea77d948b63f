package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/geocoder89/todohub/internal/security"
	"github.com/joho/godotenv"
)

var (
	ErrMissingJWTSecret     = errors.New("JWT_SECRET must be set")
	ErrUnsupportedAlgorithm = errors.New("JWT_ALGORITHM must be one of HS256, HS384, HS512")
)

type Config struct {
	Env         string
	Port        int
	DBURL       string
	DBMaxConns  int
	StoreDriver string

	JWTSecret           string
	JWTAlgorithm        string
	JWTAccessTTLMinutes int

	PasswordScheme string
	BcryptCost     int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LoginRateLimit         int
	LoginRateWindowSeconds int

	OTelEndpoint    string
	OTelSampleRatio float64

	AdminUsername string
	AdminEmail    string
	AdminPassword string

	CORSAllowedOrigins []string
}

// Load reads the process configuration from the environment. A .env file in
// the working directory is loaded first when present; real env vars win.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Env:         getEnv("APP_ENV", "dev"),
		Port:        getEnvInt("PORT", 8080),
		DBURL:       getEnv("DATABASE_URL", buildDBURL()),
		DBMaxConns:  getEnvInt("DB_MAX_CONNS", 10),
		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", "postgres")),

		JWTSecret:           os.Getenv("JWT_SECRET"),
		JWTAlgorithm:        strings.ToUpper(getEnv("JWT_ALGORITHM", "HS256")),
		JWTAccessTTLMinutes: getEnvInt("JWT_ACCESS_TTL_MINUTES", 20),

		PasswordScheme: strings.ToLower(getEnv("PASSWORD_SCHEME", "bcrypt")),
		BcryptCost:     getEnvInt("BCRYPT_COST", 12),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		LoginRateLimit:         getEnvInt("LOGIN_RATE_LIMIT", 10),
		LoginRateWindowSeconds: getEnvInt("LOGIN_RATE_WINDOW_SECONDS", 60),

		OTelEndpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTelSampleRatio: getEnvFloat("OTEL_TRACES_SAMPLER_ARG", 1),

		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the settings that have no safe default.
func (c Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return ErrMissingJWTSecret
	}

	switch c.JWTAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("%w (got %q)", ErrUnsupportedAlgorithm, c.JWTAlgorithm)
	}

	if c.JWTAccessTTLMinutes <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL_MINUTES must be positive (got %d)", c.JWTAccessTTLMinutes)
	}

	if c.LoginRateLimit <= 0 {
		return fmt.Errorf("LOGIN_RATE_LIMIT must be positive (got %d)", c.LoginRateLimit)
	}

	if c.LoginRateWindowSeconds <= 0 {
		return fmt.Errorf("LOGIN_RATE_WINDOW_SECONDS must be positive (got %d)", c.LoginRateWindowSeconds)
	}

	if len(c.AdminPassword) > security.MaxPasswordBytes {
		return fmt.Errorf("ADMIN_PASSWORD must be at most %d bytes (got %d)", security.MaxPasswordBytes, len(c.AdminPassword))
	}

	if c.OTelSampleRatio < 0 || c.OTelSampleRatio > 1 {
		return fmt.Errorf("OTEL_TRACES_SAMPLER_ARG must be within [0, 1] (got %v)", c.OTelSampleRatio)
	}

	switch c.StoreDriver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("STORE_DRIVER must be postgres or memory (got %q)", c.StoreDriver)
	}

	return nil
}

func (c Config) AccessTTL() time.Duration {
	return time.Duration(c.JWTAccessTTLMinutes) * time.Minute
}

func (c Config) LoginRateWindow() time.Duration {
	return time.Duration(c.LoginRateWindowSeconds) * time.Second
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "todohub")
	pass := getEnv("DB_PASSWORD", "todohub")
	name := getEnv("DB_NAME", "todohub")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
