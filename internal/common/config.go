package common

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	OCR       OCRConfig
	Messaging MessagingConfig
	Export    ExportConfig
	Logging   LoggingConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN             string
	SQLitePath      string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// ServerConfig holds webhook server configuration
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	CredentialsFile string
	CredentialsJSON string
	Timeout         time.Duration
	MaxImageSizeMB  int
}

// MessagingConfig holds WhatsApp provider configuration.
// Mode selects the provider strategy: "dual", "twilio" or "greenapi".
type MessagingConfig struct {
	Mode               string
	TwilioAccountSID   string
	TwilioAuthToken    string
	TwilioFromNumber   string
	GreenAPIInstanceID string
	GreenAPIToken      string
	SendTimeout        time.Duration
}

// ExportConfig holds export-related configuration
type ExportConfig struct {
	Dir          string
	CSVDelimiter string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string // "text" | "json"
}

// LoadConfig loads configuration from the environment. A .env file in the
// working directory is applied first when present.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Database: DatabaseConfig{
			DSN:             getEnv("DB_URL", ""),
			SQLitePath:      getEnv("SQLITE_PATH", "data/lector-ncf.db"),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Server: ServerConfig{
			Addr:            getEnv("HTTP_ADDR", ":8000"),
			ReadTimeout:     getEnvAsDuration("HTTP_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		OCR: OCRConfig{
			CredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
			CredentialsJSON: getEnv("GOOGLE_CREDENTIALS", ""),
			Timeout:         getEnvAsDuration("OCR_TIMEOUT", 45*time.Second),
			MaxImageSizeMB:  getEnvAsInt("MAX_IMAGE_SIZE_MB", 10),
		},
		Messaging: MessagingConfig{
			Mode:               getEnv("WHATSAPP_MODE", "dual"),
			TwilioAccountSID:   getEnv("TWILIO_ACCOUNT_SID", ""),
			TwilioAuthToken:    getEnv("TWILIO_AUTH_TOKEN", ""),
			TwilioFromNumber:   getEnv("TWILIO_WHATSAPP_NUMBER", "whatsapp:+14155238886"),
			GreenAPIInstanceID: getEnv("GREENAPI_INSTANCE_ID", ""),
			GreenAPIToken:      getEnv("GREENAPI_TOKEN", ""),
			SendTimeout:        getEnvAsDuration("WHATSAPP_SEND_TIMEOUT", 30*time.Second),
		},
		Export: ExportConfig{
			Dir:          getEnv("EXPORT_DIR", "data/exports"),
			CSVDelimiter: getEnv("CSV_DELIMITER", ","),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration for the daemon.
func (c *Config) Validate() error {
	if c.Database.DSN == "" && c.Database.SQLitePath == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL or SQLITE_PATH is required", ErrInvalidInput)
	}
	if c.Server.Addr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	switch c.Messaging.Mode {
	case "dual", "twilio", "greenapi":
	default:
		return NewAppError("CONFIG_ERROR", "WHATSAPP_MODE must be dual, twilio or greenapi", ErrInvalidInput)
	}
	return nil
}
