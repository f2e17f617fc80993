package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"domainmarket/marketplace-backend/pkg/dnscheck"
)

// Config represents the application configuration
type Config struct {
	Server       ServerConfig       `json:"server"`
	Database     DatabaseConfig     `json:"database"`
	Email        EmailConfig        `json:"email"`
	Verification VerificationConfig `json:"verification"`
	Security     SecurityConfig     `json:"security"`
	Worker       WorkerConfig       `json:"worker"`
	Logging      LoggingConfig      `json:"logging"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Host           string        `json:"host"`
	Port           int           `json:"port"`
	User           string        `json:"user"`
	Password       string        `json:"password"`
	DBName         string        `json:"db_name"`
	SSLMode        string        `json:"ssl_mode"`
	MaxConnections int           `json:"max_connections"`
	MaxIdleConns   int           `json:"max_idle_conns"`
	MaxLifetime    time.Duration `json:"max_lifetime"`
}

// EmailConfig configures the SES transactional email sender.
type EmailConfig struct {
	Region      string `json:"region"`
	FromAddress string `json:"from_address"`
	FromName    string `json:"from_name"`
}

// VerificationConfig configures ownership checks.
type VerificationConfig struct {
	Resolvers    []dnscheck.Resolver `json:"resolvers"`
	CheckTimeout time.Duration       `json:"check_timeout"`
	PublicURL    string              `json:"public_url"` // base URL for email confirmation links
}

// SecurityConfig
type SecurityConfig struct {
	JWTSecret string `json:"jwt_secret"`
}

// WorkerConfig configures the verification re-check worker.
type WorkerConfig struct {
	RecheckSchedule  string        `json:"recheck_schedule"`  // cron spec, e.g. "@every 5m"
	DeadLetterMaxAge time.Duration `json:"dead_letter_max_age"`
}

// LoggingConfig
type LoggingConfig struct {
	Level string `json:"level"`
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Default config
	config := &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			User:    os.Getenv("USER"),
			DBName:  "domainmarket",
			SSLMode: "disable",
		},
		Email: EmailConfig{
			Region:      "us-east-1",
			FromAddress: "no-reply@domainmarket.app",
			FromName:    "DomainMarket",
		},
		Verification: VerificationConfig{
			CheckTimeout: 10 * time.Second,
			PublicURL:    "http://localhost:8080",
		},
		Worker: WorkerConfig{
			RecheckSchedule:  "@every 5m",
			DeadLetterMaxAge: time.Hour,
		},
	}

	// Load from file if exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Override with environment variables
	overrideWithEnv(config)

	return config, nil
}

func overrideWithEnv(config *Config) {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if dbHost := os.Getenv("DATABASE_HOST"); dbHost != "" {
		config.Database.Host = dbHost
	}
	if dbUser := os.Getenv("DATABASE_USER"); dbUser != "" {
		config.Database.User = dbUser
	}
	if dbPass := os.Getenv("DATABASE_PASSWORD"); dbPass != "" {
		config.Database.Password = dbPass
	}
	if dbName := os.Getenv("DATABASE_DBNAME"); dbName != "" {
		config.Database.DBName = dbName
	}
	if region := os.Getenv("SES_REGION"); region != "" {
		config.Email.Region = region
	}
	if from := os.Getenv("SES_FROM_ADDRESS"); from != "" {
		config.Email.FromAddress = from
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		config.Security.JWTSecret = secret
	}
	if publicURL := os.Getenv("PUBLIC_URL"); publicURL != "" {
		config.Verification.PublicURL = publicURL
	}
}

// GetDSN returns the Postgres connection string for GORM.
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		c.Host, c.User, c.Password, c.DBName, c.Port, c.SSLMode)
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
