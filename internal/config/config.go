package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Firebase  FirebaseConfig  `yaml:"firebase"`
	Database  DatabaseConfig  `yaml:"database"`
	Email     EmailConfig     `yaml:"email"`
	Reports   ReportsConfig   `yaml:"reports"`
	Clock     ClockConfig     `yaml:"clock"`
	Log       LogConfig       `yaml:"log"`
	Scheduler SchedulerConfig `yaml:"scheduler"`

	location *time.Location
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// FirebaseConfig points at the Firestore project holding checkouts
type FirebaseConfig struct {
	ProjectID           string `yaml:"project_id"`
	CredentialsFile     string `yaml:"credentials_file"`
	CheckoutsCollection string `yaml:"checkouts_collection"`
	InventoryCollection string `yaml:"inventory_collection"`
}

// DatabaseConfig contains PostgreSQL settings for the dispatch log
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// EmailConfig selects and configures the report email provider
type EmailConfig struct {
	Provider      string         `yaml:"provider"` // "sendgrid" or "smtp"
	From          string         `yaml:"from"`
	FromName      string         `yaml:"from_name"`
	SendGrid      SendGridConfig `yaml:"sendgrid"`
	SMTP          SMTPConfig     `yaml:"smtp"`
	RatePerMinute int            `yaml:"rate_per_minute"`
	Burst         int            `yaml:"burst"`
}

type SendGridConfig struct {
	APIKey     string `yaml:"api_key"`
	TemplateID string `yaml:"template_id"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// ReportsConfig contains scheduled report settings
type ReportsConfig struct {
	Recipients      []string `yaml:"recipients"`
	ViewItemBaseURL string   `yaml:"view_item_base_url"`
	// ScheduleInServer runs the report jobs inside the server process
	// instead of cmd/reporter.
	ScheduleInServer bool `yaml:"schedule_in_server"`
}

// ClockConfig sets the location whose wall clock drives the 17:00 cutoff
type ClockConfig struct {
	Timezone string `yaml:"timezone"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	DashboardTick string `yaml:"dashboard_tick"`
	DailyReport   string `yaml:"daily_report"`
	WeeklyReport  string `yaml:"weekly_report"`
	MonthlyReport string `yaml:"monthly_report"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML, applies environment overrides and validates
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Firebase
	if val := os.Getenv("FIREBASE_PROJECT_ID"); val != "" {
		c.Firebase.ProjectID = val
	}
	if val := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); val != "" {
		c.Firebase.CredentialsFile = val
	}

	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Email
	if val := os.Getenv("EMAIL_FROM"); val != "" {
		c.Email.From = val
	}
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.Email.SendGrid.APIKey = val
	}
	if val := os.Getenv("SENDGRID_TEMPLATE_ID"); val != "" {
		c.Email.SendGrid.TemplateID = val
	}
	if val := os.Getenv("SMTP_HOST"); val != "" {
		c.Email.SMTP.Host = val
	}
	if val := os.Getenv("SMTP_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Email.SMTP.Port)
	}
	if val := os.Getenv("SMTP_USER"); val != "" {
		c.Email.SMTP.User = val
	}
	if val := os.Getenv("SMTP_PASSWORD"); val != "" {
		c.Email.SMTP.Password = val
	}

	// Reports
	if val := os.Getenv("REPORT_RECIPIENTS"); val != "" {
		var recipients []string
		for _, r := range strings.Split(val, ",") {
			if r = strings.TrimSpace(r); r != "" {
				recipients = append(recipients, r)
			}
		}
		c.Reports.Recipients = recipients
	}

	// Clock
	if val := os.Getenv("TZ_NAME"); val != "" {
		c.Clock.Timezone = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks the configuration and fills defaults
func (c *Config) Validate() error {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Firebase
	if c.Firebase.ProjectID == "" {
		return fmt.Errorf("firebase project_id is required")
	}
	if c.Firebase.CheckoutsCollection == "" {
		c.Firebase.CheckoutsCollection = "demoreport"
	}
	if c.Firebase.InventoryCollection == "" {
		c.Firebase.InventoryCollection = "inventory"
	}

	// Database is only needed for the dispatch log
	if c.Database.Enabled {
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required when the dispatch log is enabled")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
		if c.Database.Port == 0 {
			c.Database.Port = 5432
		}
		if c.Database.SSLMode == "" {
			c.Database.SSLMode = "disable"
		}
	}

	// Email
	if c.Email.Provider == "" {
		c.Email.Provider = "sendgrid"
	}
	switch c.Email.Provider {
	case "sendgrid":
		if c.Email.SendGrid.APIKey == "" {
			return fmt.Errorf("sendgrid api_key is required")
		}
	case "smtp":
		if c.Email.SMTP.Host == "" {
			return fmt.Errorf("SMTP host is required")
		}
		if c.Email.SMTP.Port <= 0 || c.Email.SMTP.Port > 65535 {
			return fmt.Errorf("invalid SMTP port: %d", c.Email.SMTP.Port)
		}
	default:
		return fmt.Errorf("unknown email provider: %s", c.Email.Provider)
	}
	if c.Email.From == "" {
		return fmt.Errorf("email from address is required")
	}
	if c.Email.FromName == "" {
		c.Email.FromName = "Scanimals Inventory"
	}
	if c.Email.RatePerMinute <= 0 {
		c.Email.RatePerMinute = 6
	}
	if c.Email.Burst <= 0 {
		c.Email.Burst = 3
	}

	// Clock
	loc := time.Local
	if c.Clock.Timezone != "" {
		l, err := time.LoadLocation(c.Clock.Timezone)
		if err != nil {
			return fmt.Errorf("unknown timezone %q: %w", c.Clock.Timezone, err)
		}
		loc = l
	}
	c.location = loc

	// Scheduler defaults
	if c.Scheduler.DashboardTick == "" {
		c.Scheduler.DashboardTick = "@every 1s"
	}
	if c.Scheduler.DailyReport == "" {
		c.Scheduler.DailyReport = "0 5 17 * * *" // Just after the 17:00 cutoff
	}
	if c.Scheduler.WeeklyReport == "" {
		c.Scheduler.WeeklyReport = "0 0 8 * * MON"
	}
	if c.Scheduler.MonthlyReport == "" {
		c.Scheduler.MonthlyReport = "0 0 8 1 * *"
	}

	return nil
}

// Location returns the clock location used for cutoff and period math
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP listen address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
