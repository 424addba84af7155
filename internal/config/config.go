package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
)

type Config struct {
	Server     ServerConfig
	Upstream   UpstreamConfig
	Database   DatabaseConfig
	CORS       CORSConfig
	RateLimit  RateLimitConfig
	Moderation ModerationConfig
	Log        LogConfig
}

type ServerConfig struct {
	Port         string `validate:"required,numeric"`
	AdminPort    string `validate:"omitempty,numeric"`
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type UpstreamConfig struct {
	URL         string `validate:"omitempty,url"`
	Key         string
	DatabaseURL string
	Timeout     time.Duration `validate:"gt=0"`
}

// DatabaseConfig sizes the pool used in direct Postgres mode.
type DatabaseConfig struct {
	MaxOpenConns    int           `validate:"gt=0"`
	MaxIdleConns    int           `validate:"gte=0"`
	ConnMaxLifetime time.Duration `validate:"gt=0"`
}

type CORSConfig struct {
	AllowedOrigins []string
}

type RateLimitConfig struct {
	RedisURL string
	Requests int           `validate:"gt=0"`
	Window   time.Duration `validate:"gt=0"`
	IPHeader string        `validate:"required"`
}

type ModerationConfig struct {
	WordsFile string
}

type LogConfig struct {
	Level  string `validate:"oneof=trace debug info warn warning error fatal panic"`
	Format string `validate:"oneof=json text"`
}

var validate = validator.New()

func LoadConfig() (*Config, error) {
	upstreamTimeout, err := durationEnv("UPSTREAM_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	window, err := durationEnv("RATE_LIMIT_WINDOW", time.Minute)
	if err != nil {
		return nil, err
	}
	requests, err := intEnv("RATE_LIMIT_REQUESTS", 10)
	if err != nil {
		return nil, err
	}
	maxOpen, err := intEnv("DB_MAX_OPEN_CONNS", 25)
	if err != nil {
		return nil, err
	}
	maxIdle, err := intEnv("DB_MAX_IDLE_CONNS", 25)
	if err != nil {
		return nil, err
	}
	connLifetime, err := durationEnv("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         stringEnv("SERVER_PORT", "8787"),
			AdminPort:    optionalEnv("ADMIN_PORT", "9090"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Upstream: UpstreamConfig{
			URL:         strings.TrimRight(os.Getenv("UPSTREAM_URL"), "/"),
			Key:         os.Getenv("UPSTREAM_KEY"),
			DatabaseURL: os.Getenv("UPSTREAM_DATABASE_URL"),
			Timeout:     upstreamTimeout,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    maxOpen,
			MaxIdleConns:    maxIdle,
			ConnMaxLifetime: connLifetime,
		},
		CORS: CORSConfig{
			AllowedOrigins: ParseOrigins(os.Getenv("ALLOWED_ORIGINS")),
		},
		RateLimit: RateLimitConfig{
			RedisURL: os.Getenv("RATE_LIMIT_REDIS_URL"),
			Requests: requests,
			Window:   window,
			IPHeader: stringEnv("RATE_LIMIT_IP_HEADER", "CF-Connecting-IP"),
		},
		Moderation: ModerationConfig{
			WordsFile: os.Getenv("MODERATION_WORDS_FILE"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(stringEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(stringEnv("LOG_FORMAT", "json")),
		},
	}

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, fmt.Errorf("invalid configuration: %s failed on '%s'", verrs[0].Namespace(), verrs[0].Tag())
		}
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Upstream.URL == "" && cfg.Upstream.DatabaseURL == "" {
		return nil, errors.New("invalid configuration: one of UPSTREAM_URL or UPSTREAM_DATABASE_URL is required")
	}

	return cfg, nil
}

// ParseOrigins splits a comma-separated allow-list, trimming entries and
// dropping empty ones.
func ParseOrigins(csv string) []string {
	var origins []string
	for _, o := range strings.Split(csv, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// KeyRole reports the "role" claim of the upstream key when it is a JWT.
// The signature is not checked: this is only used to warn about keys that
// carry more privilege than the proxy needs.
func (u UpstreamConfig) KeyRole() string {
	if u.Key == "" {
		return ""
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(u.Key, claims); err != nil {
		return ""
	}
	role, _ := claims["role"].(string)
	return role
}

func stringEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

// optionalEnv keeps an explicitly empty value, which turns the setting off.
func optionalEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(v)
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", key, err)
	}
	return d, nil
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", key, err)
	}
	return n, nil
}
