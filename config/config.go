package config

import (
	"errors"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Occupancy OccupancyConfig `yaml:"occupancy"`
	Reports   ReportsConfig   `yaml:"reports"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	RateLimitPerSec float64       `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int           `yaml:"rate_limit_burst"`
	CacheTTLSeconds int           `yaml:"cache_ttl_seconds"`
	CacheTTL        time.Duration `yaml:"-"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // postgres, sqlite or mysql
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	LogLevel               string `yaml:"log_level"` // silent, error, warn, info
}

// AuthConfig controls token signing and credential handling.
type AuthConfig struct {
	JWTSecret              string `yaml:"jwt_secret"`
	AdminSecret            string `yaml:"admin_secret"`
	UserTokenTTLMinutes    int    `yaml:"user_token_ttl_minutes"` // 0 means tokens never expire
	AdminTokenTTLMinutes   int    `yaml:"admin_token_ttl_minutes"`
	PasswordStorage        string `yaml:"password_storage"` // plaintext or bcrypt
	VerifyAdminCredentials bool   `yaml:"verify_admin_credentials"`
}

// DefaultMaxRoomsPerBuilding caps the rooms of a single building when the
// config leaves it unset.
const DefaultMaxRoomsPerBuilding = 1000

// OccupancyConfig holds check-in/check-out policy switches.
type OccupancyConfig struct {
	AllowOverlappingCheckIn bool `yaml:"allow_overlapping_checkin"`
	MaxRoomsPerBuilding     int  `yaml:"max_rooms_per_building"`
}

// ReportsConfig holds reporting settings.
type ReportsConfig struct {
	PageSize int `yaml:"page_size"`
}

// Load reads the configuration from the given path. Values from the
// environment (and a .env file, if present) take precedence over the file.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	// an empty file leaves everything to env and defaults
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		} else {
			log.Printf("ignoring invalid PORT %q", v)
		}
	}
	if v := os.Getenv("DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("SECRET_KEY"); v != "" {
		cfg.Auth.AdminSecret = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 3001
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 20
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 30
	}
	cfg.Server.CacheTTL = time.Duration(cfg.Server.CacheTTLSeconds) * time.Second

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.LogLevel == "" {
		cfg.Database.LogLevel = "warn"
	}

	if cfg.Auth.AdminTokenTTLMinutes <= 0 {
		cfg.Auth.AdminTokenTTLMinutes = 60
	}
	if cfg.Auth.UserTokenTTLMinutes < 0 {
		cfg.Auth.UserTokenTTLMinutes = 0
	}
	if cfg.Auth.PasswordStorage == "" {
		cfg.Auth.PasswordStorage = "plaintext"
	}
	if cfg.Auth.AdminSecret == "" {
		log.Printf("auth.admin_secret is not set; admin tokens will be signed with auth.jwt_secret")
		cfg.Auth.AdminSecret = cfg.Auth.JWTSecret
	}

	if cfg.Occupancy.MaxRoomsPerBuilding <= 0 {
		cfg.Occupancy.MaxRoomsPerBuilding = DefaultMaxRoomsPerBuilding
	}

	if cfg.Reports.PageSize <= 0 {
		cfg.Reports.PageSize = 10
	}
}
