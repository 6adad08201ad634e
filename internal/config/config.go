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

const (
	defaultHTTPAddr         = ":8080"
	defaultDatabaseURL      = "meetingrooms.db"
	defaultJWTSecret        = "change-me-jwt-secret"
	defaultVenueTimezone    = "America/Sao_Paulo"
	defaultOpeningHour      = "8"
	defaultClosingHour      = "18"
	defaultMaxDuration      = "4h"
	defaultPastGrace        = "2m"
	defaultSettingsCacheTTL = "30s"
	defaultRedisChannel     = "meetingrooms:updates"
	defaultAMQPQueue        = "meetingrooms.events"
	defaultRateLimitRPS     = "5"
	defaultRateLimitBurst   = "10"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	DatabaseURL string
	JWTSecret   string

	VenueTimezone      string
	DefaultOpeningHour int
	DefaultClosingHour int
	MaxDuration        time.Duration
	PastGrace          time.Duration
	SettingsCacheTTL   time.Duration

	RedisURL     string
	RedisChannel string
	AMQPURL      string
	AMQPQueue    string

	RateLimitRPS   float64
	RateLimitBurst int

	CORSAllowedOrigins []string
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: .env not loaded: %v", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables only.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.VenueTimezone = strings.TrimSpace(getEnv("VENUE_TIMEZONE", defaultVenueTimezone))

	var err error
	cfg.DefaultOpeningHour, err = parseIntEnv("DEFAULT_OPENING_HOUR", defaultOpeningHour)
	if err != nil {
		return nil, err
	}
	cfg.DefaultClosingHour, err = parseIntEnv("DEFAULT_CLOSING_HOUR", defaultClosingHour)
	if err != nil {
		return nil, err
	}
	cfg.MaxDuration, err = parseDurationEnv("MAX_RESERVATION_DURATION", defaultMaxDuration)
	if err != nil {
		return nil, err
	}
	cfg.PastGrace, err = parseDurationEnv("PAST_GRACE", defaultPastGrace)
	if err != nil {
		return nil, err
	}
	cfg.SettingsCacheTTL, err = parseDurationEnv("SETTINGS_CACHE_TTL", defaultSettingsCacheTTL)
	if err != nil {
		return nil, err
	}

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.RedisChannel = strings.TrimSpace(getEnv("REDIS_CHANNEL", defaultRedisChannel))
	cfg.AMQPURL = strings.TrimSpace(os.Getenv("AMQP_URL"))
	cfg.AMQPQueue = strings.TrimSpace(getEnv("AMQP_QUEUE", defaultAMQPQueue))

	rps := strings.TrimSpace(getEnv("RATE_LIMIT_RPS", defaultRateLimitRPS))
	cfg.RateLimitRPS, err = strconv.ParseFloat(rps, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS value %q: %w", rps, err)
	}
	cfg.RateLimitBurst, err = parseIntEnv("RATE_LIMIT_BURST", defaultRateLimitBurst)
	if err != nil {
		return nil, err
	}

	for _, o := range strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	log.Printf("config loaded: env=%s addr=%s venue_tz=%s hours=%02d-%02d redis=%t amqp=%t",
		cfg.AppEnv, cfg.HTTPAddr, cfg.VenueTimezone, cfg.DefaultOpeningHour, cfg.DefaultClosingHour,
		cfg.RedisURL != "", cfg.AMQPURL != "")

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return isProdLike(c.AppEnv)
}

func validateConfig(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.VenueTimezone == "" {
		return fmt.Errorf("VENUE_TIMEZONE must not be empty")
	}
	if cfg.DefaultOpeningHour < 0 || cfg.DefaultOpeningHour > 23 {
		return fmt.Errorf("DEFAULT_OPENING_HOUR must be within 0..23")
	}
	if cfg.DefaultClosingHour < 0 || cfg.DefaultClosingHour > 23 {
		return fmt.Errorf("DEFAULT_CLOSING_HOUR must be within 0..23")
	}
	if cfg.DefaultOpeningHour >= cfg.DefaultClosingHour {
		return fmt.Errorf("DEFAULT_OPENING_HOUR must be before DEFAULT_CLOSING_HOUR")
	}
	if cfg.MaxDuration <= 0 {
		return fmt.Errorf("MAX_RESERVATION_DURATION must be > 0")
	}
	if cfg.PastGrace < 0 {
		return fmt.Errorf("PAST_GRACE must be >= 0")
	}
	if cfg.SettingsCacheTTL < 0 {
		return fmt.Errorf("SETTINGS_CACHE_TTL must be >= 0")
	}
	if cfg.RateLimitRPS <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be > 0")
	}
	if cfg.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_BURST must be >= 1")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
	}

	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name, fallback string) (int, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
