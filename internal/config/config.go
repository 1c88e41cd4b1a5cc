package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Email     EmailConfig     `yaml:"email"`
	JWT       JWTConfig       `yaml:"jwt"`
	Workflow  WorkflowConfig  `yaml:"workflow"`
	Log       LogConfig       `yaml:"log"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP and gRPC listener settings
type ServerConfig struct {
	Host               string   `yaml:"host" env:"SERVER_HOST"`
	Port               int      `yaml:"port" env:"SERVER_PORT"`
	GRPCPort           int      `yaml:"grpc_port" env:"SERVER_GRPC_PORT"`
	PublicBaseURL      string   `yaml:"public_base_url" env:"PUBLIC_BASE_URL"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins" env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

// DatabaseConfig contains repository backend settings
type DatabaseConfig struct {
	Driver          string `yaml:"driver" env:"DB_DRIVER"` // "postgres" or "memory"
	Host            string `yaml:"host" env:"DB_HOST"`
	Port            int    `yaml:"port" env:"DB_PORT"`
	User            string `yaml:"user" env:"DB_USER"`
	Password        string `yaml:"password" env:"DB_PASSWORD"`
	Database        string `yaml:"database" env:"DB_NAME"`
	SSLMode         string `yaml:"ssl_mode" env:"DB_SSL_MODE"`
	ConnectAttempts uint   `yaml:"connect_attempts" env:"DB_CONNECT_ATTEMPTS"`
}

// EmailConfig contains notification delivery settings
type EmailConfig struct {
	Provider        string   `yaml:"provider" env:"EMAIL_PROVIDER"` // "sendgrid" or "log"
	APIKey          string   `yaml:"api_key" env:"SENDGRID_API_KEY"`
	From            string   `yaml:"from" env:"EMAIL_FROM"`
	FromName        string   `yaml:"from_name" env:"EMAIL_FROM_NAME"`
	AdminRecipients []string `yaml:"admin_recipients" env:"EMAIL_ADMIN_RECIPIENTS" envSeparator:","`
}

// JWTConfig contains session token settings
type JWTConfig struct {
	Secret            string `yaml:"secret" env:"JWT_SECRET"`
	AccessTokenExpiry int    `yaml:"access_token_expiry_minutes" env:"JWT_ACCESS_TOKEN_EXPIRY_MINUTES"`
}

type WorkflowConfig struct {
	CompletionPath string `yaml:"completion_path" env:"WORKFLOW_COMPLETION_PATH"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level      string `yaml:"level" env:"LOG_LEVEL"`   // "debug", "info", "warn", "error"
	Format     string `yaml:"format" env:"LOG_FORMAT"` // "json" or "text"
	File       string `yaml:"file" env:"LOG_FILE"`     // optional rotated log file
	MaxSizeMB  int    `yaml:"max_size_mb" env:"LOG_MAX_SIZE_MB"`
	MaxBackups int    `yaml:"max_backups" env:"LOG_MAX_BACKUPS"`
	MaxAgeDays int    `yaml:"max_age_days" env:"LOG_MAX_AGE_DAYS"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	PurgeRejectedRequests string `yaml:"purge_rejected_requests" env:"SCHEDULE_PURGE_REJECTED"`
	SendPendingDigest     string `yaml:"send_pending_digest" env:"SCHEDULE_PENDING_DIGEST"`
	ProbeHealth           string `yaml:"probe_health" env:"SCHEDULE_PROBE_HEALTH"`
	RejectedRetentionDays int    `yaml:"rejected_retention_days" env:"REJECTED_RETENTION_DAYS"`
}

// Load reads configuration from a YAML file, then applies .env files and
// environment overrides.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadDotEnv loads variables from the given files when they exist. Variables
// already present in the environment win.
func loadDotEnv(files ...string) error {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// Validate checks the configuration and fills in defaults
func (c *Config) Validate() error {
	// Server
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.GRPCPort < 0 || c.Server.GRPCPort > 65535 {
		return fmt.Errorf("invalid grpc port: %d", c.Server.GRPCPort)
	}

	// Database
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	switch c.Database.Driver {
	case "memory":
	case "postgres":
		if c.Database.Host == "" {
			return errors.New("database host is required")
		}
		if c.Database.User == "" {
			return errors.New("database user is required")
		}
		if c.Database.Database == "" {
			return errors.New("database name is required")
		}
		if c.Database.Port == 0 {
			c.Database.Port = 5432
		}
		if c.Database.SSLMode == "" {
			c.Database.SSLMode = "disable"
		}
		if c.Database.ConnectAttempts == 0 {
			c.Database.ConnectAttempts = 5
		}
	default:
		return fmt.Errorf("unknown database driver: %q", c.Database.Driver)
	}

	// Email
	if c.Email.Provider == "" {
		c.Email.Provider = "log"
	}
	switch c.Email.Provider {
	case "log":
	case "sendgrid":
		if c.Email.APIKey == "" {
			return errors.New("sendgrid api key is required")
		}
		if c.Email.From == "" {
			return errors.New("email from address is required")
		}
	default:
		return fmt.Errorf("unknown email provider: %q", c.Email.Provider)
	}

	// JWT
	if c.JWT.Secret == "" {
		return errors.New("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return errors.New("JWT secret must be at least 32 characters")
	}
	if c.JWT.AccessTokenExpiry == 0 {
		c.JWT.AccessTokenExpiry = 60
	}

	// Workflow
	if c.Workflow.CompletionPath == "" {
		c.Workflow.CompletionPath = "/registration-complete"
	}
	if !strings.HasPrefix(c.Workflow.CompletionPath, "/") {
		c.Workflow.CompletionPath = "/" + c.Workflow.CompletionPath
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	// Scheduler defaults
	if c.Scheduler.PurgeRejectedRequests == "" {
		c.Scheduler.PurgeRejectedRequests = "0 0 3 * * *" // 3 AM UTC
	}
	if c.Scheduler.SendPendingDigest == "" {
		c.Scheduler.SendPendingDigest = "0 0 8 * * *" // Daily at 8 AM UTC
	}
	if c.Scheduler.ProbeHealth == "" {
		c.Scheduler.ProbeHealth = "*/30 * * * * *"
	}
	if c.Scheduler.RejectedRetentionDays == 0 {
		c.Scheduler.RejectedRetentionDays = 90
	}

	return nil
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// Address returns the HTTP listen address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GRPCAddress returns the health-check listen address, or "" when disabled
func (c *Config) GRPCAddress() string {
	if c.Server.GRPCPort == 0 {
		return ""
	}
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.GRPCPort)
}

func (c *JWTConfig) AccessTTL() time.Duration {
	return time.Duration(c.AccessTokenExpiry) * time.Minute
}

func (c *SchedulerConfig) RejectedRetention() time.Duration {
	return time.Duration(c.RejectedRetentionDays) * 24 * time.Hour
}
