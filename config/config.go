package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every runtime setting of the API server.
type Config struct {
	Port           int
	GinMode        string
	DBDriver       string
	DBDSN          string
	FrontendURL    string
	JWTSecret      string
	JWTTTL         time.Duration
	LogLevel       string
	LogFormat      string
	RateLimit      int
	RateWindow     time.Duration
	CORSOrigins    []string
	ResetTokenTTL  time.Duration
	FrontendURLSet bool
}

const devJWTSecret = "smartmenu-dev-secret"

var defaultOrigins = []string{
	"https://smartmenuai.vercel.app",
	"https://smart-menu-ai.onrender.com",
	"http://localhost:8080",
	"http://localhost:5173",
	"http://localhost:5174",
	"http://localhost:3000",
}

// envBindings maps viper keys to environment variables.
var envBindings = map[string]string{
	"port":            "PORT",
	"gin_mode":        "GIN_MODE",
	"db.driver":       "DB_DRIVER",
	"db.dsn":          "DB_DSN",
	"frontend_url":    "FRONTEND_URL",
	"jwt.secret":      "JWT_SECRET",
	"jwt.ttl":         "JWT_TTL",
	"log.level":       "LOG_LEVEL",
	"log.format":      "LOG_FORMAT",
	"rate.limit":      "RATE_LIMIT",
	"rate.window":     "RATE_WINDOW",
	"cors.origins":    "CORS_ORIGINS",
	"reset_token_ttl": "RESET_TOKEN_TTL",
}

// NewViper returns a viper instance with defaults and env bindings set.
// Command line flags are bound on top of it by the cmd package.
func NewViper() (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault("port", 5000)
	v.SetDefault("gin_mode", "debug")
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "smartmenu.db")
	v.SetDefault("frontend_url", "")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.ttl", 24*time.Hour)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("rate.limit", 200)
	v.SetDefault("rate.window", time.Minute)
	v.SetDefault("cors.origins", strings.Join(defaultOrigins, ","))
	v.SetDefault("reset_token_ttl", time.Hour)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}
	return v, nil
}

// LoadDotEnv reads .env files into the process environment. A missing file
// is not an error.
func LoadDotEnv(files ...string) bool {
	return godotenv.Load(files...) == nil
}

// FromViper builds and validates a Config.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:          v.GetInt("port"),
		GinMode:       v.GetString("gin_mode"),
		DBDriver:      strings.ToLower(v.GetString("db.driver")),
		DBDSN:         v.GetString("db.dsn"),
		FrontendURL:   strings.TrimSpace(v.GetString("frontend_url")),
		JWTSecret:     v.GetString("jwt.secret"),
		JWTTTL:        v.GetDuration("jwt.ttl"),
		LogLevel:      v.GetString("log.level"),
		LogFormat:     v.GetString("log.format"),
		RateLimit:     v.GetInt("rate.limit"),
		RateWindow:    v.GetDuration("rate.window"),
		CORSOrigins:   splitList(v.GetString("cors.origins")),
		ResetTokenTTL: v.GetDuration("reset_token_ttl"),
	}
	cfg.FrontendURLSet = cfg.FrontendURL != ""

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = devJWTSecret
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load is FromViper over a fresh env-bound viper.
func Load() (*Config, error) {
	v, err := NewViper()
	if err != nil {
		return nil, err
	}
	return FromViper(v)
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want sqlite or mysql)", c.DBDriver)
	}
	if c.DBDSN == "" {
		return fmt.Errorf("DB_DSN must not be empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.RateLimit <= 0 || c.RateWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT and RATE_WINDOW must be positive")
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	return nil
}

// IsRelease reports whether gin runs in release mode.
func (c *Config) IsRelease() bool {
	return c.GinMode == "release"
}

// UsingDevSecret is true when no JWT_SECRET was configured.
func (c *Config) UsingDevSecret() bool {
	return c.JWTSecret == devJWTSecret
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
