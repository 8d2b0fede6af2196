package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the payout automation service
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Treasury     TreasuryConfig
	Automation   AutomationConfig `yaml:"automation"`
	Notification NotificationConfig
	Logging      LoggingConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Host string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
}

// TreasuryConfig holds connection settings for the treasury custody service
type TreasuryConfig struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

// AutomationConfig holds the payout engine tunables
type AutomationConfig struct {
	TickInterval        time.Duration `yaml:"tick_interval" env:"AUTOMATION_TICK_INTERVAL" envDefault:"60s"`
	TickTimeout         time.Duration `yaml:"tick_timeout" env:"AUTOMATION_TICK_TIMEOUT" envDefault:"5m"`
	OptimalBatchSize    int           `yaml:"optimal_batch_size" env:"AUTOMATION_OPTIMAL_BATCH_SIZE" envDefault:"20"`
	MaxBatchSize        int           `yaml:"max_batch_size" env:"AUTOMATION_MAX_BATCH_SIZE" envDefault:"50"`
	MaxProcessingTime   time.Duration `yaml:"max_processing_time" env:"AUTOMATION_MAX_PROCESSING_TIME" envDefault:"10m"`
	AutomationIdentity  string        `yaml:"automation_identity" env:"AUTOMATION_IDENTITY" envDefault:"automation-engine"`
	CostPerManualPayout string        `yaml:"cost_per_manual_payout" env:"COST_PER_MANUAL_PAYOUT" envDefault:"15"`
	EnableScheduler     bool          `yaml:"enable_scheduler" env:"AUTOMATION_ENABLE_SCHEDULER" envDefault:"true"`
}

// NotificationConfig holds notification configuration
type NotificationConfig struct {
	Telegram TelegramConfig
}

// TelegramConfig holds Telegram specific configuration
type TelegramConfig struct {
	BotToken string
	ChatID   string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
	Dir    string
}

// LoadConfig loads configuration from YAML file or environment variables
func LoadConfig() *Config {
	if config, err := LoadConfigFromYAML(); err == nil {
		return config
	}
	return LoadConfigFromEnv()
}

// LoadConfigFromYAML loads configuration from a YAML file
func LoadConfigFromYAML() (*Config, error) {
	viper.SetConfigName("config.dev")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../configs")
	viper.AddConfigPath("../../configs")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideWithEnvVars(&config)

	return &config, nil
}

// overrideWithEnvVars overrides secrets with environment variables if set
func overrideWithEnvVars(config *Config) {
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		config.Database.Password = password
	}
	if apiKey := os.Getenv("TREASURY_API_KEY"); apiKey != "" {
		config.Treasury.APIKey = apiKey
	}
}

// LoadConfigFromEnv loads configuration from environment variables
func LoadConfigFromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_URL", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "password"),
			Database: getEnv("DB_DATABASE", "payout_automation"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Treasury: TreasuryConfig{
			BaseURL: getEnv("TREASURY_BASE_URL", "http://localhost:9090"),
			APIKey:  getEnv("TREASURY_API_KEY", ""),
			Timeout: getEnvAsDuration("TREASURY_TIMEOUT", 30*time.Second),
		},
		Automation: AutomationConfig{
			TickInterval:        getEnvAsDuration("AUTOMATION_TICK_INTERVAL", 60*time.Second),
			TickTimeout:         getEnvAsDuration("AUTOMATION_TICK_TIMEOUT", 5*time.Minute),
			OptimalBatchSize:    getEnvAsInt("AUTOMATION_OPTIMAL_BATCH_SIZE", 20),
			MaxBatchSize:        getEnvAsInt("AUTOMATION_MAX_BATCH_SIZE", 50),
			MaxProcessingTime:   getEnvAsDuration("AUTOMATION_MAX_PROCESSING_TIME", 10*time.Minute),
			AutomationIdentity:  getEnv("AUTOMATION_IDENTITY", "automation-engine"),
			CostPerManualPayout: getEnv("COST_PER_MANUAL_PAYOUT", "15"),
			EnableScheduler:     getEnvAsBool("AUTOMATION_ENABLE_SCHEDULER", true),
		},
		Notification: NotificationConfig{
			Telegram: TelegramConfig{
				BotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
				ChatID:   getEnv("TELEGRAM_BOT_MESSAGE_GROUP", ""),
			},
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
			Dir:    getEnv("LOG_DIR", "./logs"),
		},
	}
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getEnvAsInt gets an environment variable as integer with a fallback value
func getEnvAsInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return fallback
}

// getEnvAsBool gets an environment variable as boolean with a fallback value
func getEnvAsBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

// getEnvAsDuration gets an environment variable as duration with a fallback value
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return fallback
}
