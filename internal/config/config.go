package config

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DevFallbackSecret is the guessable secret the original deployment shipped
// with. It is only ever used outside prod, and only with a loud warning.
const DevFallbackSecret = "supersecretkey"

type Config struct {
	Env   string
	Port  int
	DBURL string

	JWTSecret     string
	JWTTTLMinutes int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	DashboardCacheTTLSeconds int

	CORSAllowedOrigins []string

	AdminEmail    string
	AdminPassword string
	AdminName     string
	AdminRole     string

	RateLimitRPS       float64
	RateLimitBurst     int
	AuthRateLimitRPS   float64
	AuthRateLimitBurst int

	OTLPEndpoint string

	WorkerPort            int
	DigestIntervalMinutes int
}

func Load() Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	return Config{
		Env:   getEnv("APP_ENV", "dev"),
		Port:  getEnvInt("PORT", 8080),
		DBURL: buildDBURL(),

		// no fallback here on purpose: main decides whether the weak
		// development default is acceptable for the current env.
		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTTTLMinutes: getEnvInt("JWT_TTL_MINUTES", 60),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		DashboardCacheTTLSeconds: getEnvInt("DASHBOARD_CACHE_TTL_SECONDS", 15),

		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),

		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		AdminName:     getEnv("ADMIN_NAME", "Admin"),
		AdminRole:     getEnv("ADMIN_ROLE", "admin"),

		RateLimitRPS:       getEnvFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 40),
		AuthRateLimitRPS:   getEnvFloat("RATE_LIMIT_AUTH_RPS", 5),
		AuthRateLimitBurst: getEnvInt("RATE_LIMIT_AUTH_BURST", 10),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		WorkerPort:            getEnvInt("WORKER_PORT", 8081),
		DigestIntervalMinutes: getEnvInt("DIGEST_INTERVAL_MINUTES", 60),
	}
}

// ResolveJWTSecret applies the secret policy: an explicit secret always wins,
// prod refuses to start without one, and everywhere else the weak development
// default is substituted with a warning.
func (c Config) ResolveJWTSecret(log *slog.Logger) (string, error) {
	if c.JWTSecret != "" {
		return c.JWTSecret, nil
	}

	if c.Env == "prod" {
		return "", errors.New("JWT_SECRET must be set in prod")
	}

	log.Warn("JWT_SECRET is not set; falling back to the built-in development secret",
		"secret", DevFallbackSecret,
		"hint", "set JWT_SECRET before deploying anywhere that matters",
	)

	return DevFallbackSecret, nil
}

func (c Config) JWTTTL() time.Duration {
	return time.Duration(c.JWTTTLMinutes) * time.Minute
}

func (c Config) DashboardCacheTTL() time.Duration {
	return time.Duration(c.DashboardCacheTTLSeconds) * time.Second
}

func (c Config) DigestInterval() time.Duration {
	return time.Duration(c.DigestIntervalMinutes) * time.Minute
}

func buildDBURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "projecthub")
	pass := getEnv("DB_PASSWORD", "projecthub")
	name := getEnv("DB_NAME", "projecthub")
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

		if err == nil {
			return num
		}
	}

	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.ParseFloat(v, 64)

		if err == nil {
			return num
		}
	}

	return fallback
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)

		if p != "" {
			out = append(out, p)
		}
	}

	return out
}
