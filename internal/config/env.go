package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// DefaultJWTSecret is only fit for local development.
const DefaultJWTSecret = "change-me-in-production"

type Env struct {
	AppAddr string
	GinMode string

	DBUser     string
	DBPassword string
	DBHost     string
	DBName     string
	DBDSN      string

	JWTSecret string
	JWTTTL    time.Duration

	RedisAddr       string
	RedisPassword   string
	RateLimitWindow time.Duration
	RateLimitMax    int

	RACQuota           float64
	SeatCodeScheme     string
	WaitlistLimit      int
	BookingLockTimeout time.Duration
	BookingMaxRetries  int

	CORSAllowedOrigins []string
	LogLevel           string
	LogFormat          string
}

// LoadEnv reads configuration from the process environment, after loading a
// .env file when one exists.
func LoadEnv() Env {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file found, using system environment")
	}

	return Env{
		AppAddr: getEnv("APP_ADDR", ":8080"),
		GinMode: getEnv("GIN_MODE", ""),

		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBHost:     getEnv("DB_HOST", "127.0.0.1:3306"),
		DBName:     getEnv("DB_NAME", "railway"),
		DBDSN:      getEnv("DB_DSN", ""),

		JWTSecret: getEnv("JWT_SECRET", DefaultJWTSecret),
		JWTTTL:    getDuration("JWT_TTL", 24*time.Hour),

		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RateLimitWindow: getDuration("RATE_LIMIT_WINDOW", time.Minute),
		RateLimitMax:    getInt("RATE_LIMIT_MAX", 10),

		RACQuota:           getFloat("RAC_QUOTA", 0.10),
		SeatCodeScheme:     getEnv("SEAT_CODE_SCHEME", "short"),
		WaitlistLimit:      getInt("WAITLIST_LIMIT", 0),
		BookingLockTimeout: getDuration("BOOKING_LOCK_TIMEOUT", 5*time.Second),
		BookingMaxRetries:  getInt("BOOKING_MAX_RETRIES", 3),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173,http://127.0.0.1:5173")),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
	}
}

// Validate rejects settings that are unsafe to serve with. The default JWT
// secret is tolerated outside release mode with a warning.
func (e Env) Validate() error {
	if e.JWTSecret == "" || e.JWTSecret == DefaultJWTSecret {
		if e.GinMode == gin.ReleaseMode {
			return errors.New("JWT_SECRET must be set in release mode")
		}
		logrus.Warn("JWT_SECRET not set, using the development default; tokens can be forged")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logrus.WithField("key", key).Warnf("invalid integer %q, using %d", v, fallback)
		return fallback
	}
	return n
}

func getFloat(key string, fallback float64) float64 {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		logrus.WithField("key", key).Warnf("invalid number %q, using %v", v, fallback)
		return fallback
	}
	return f
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logrus.WithField("key", key).Warnf("invalid duration %q, using %s", v, fallback)
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	out := []string{}
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
