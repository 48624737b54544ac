package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
)

// Config holds all configuration for the soil humidity simulator backend
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Data     DataConfig
	Feed     FeedConfig
	MQTT     MQTTConfig
	Database DatabaseConfig
}

// AppConfig holds environment and logging settings
type AppConfig struct {
	Env      string
	LogLevel slog.Level
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
}

// Data source kinds
const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// DataConfig describes where the sensor table is read from
type DataConfig struct {
	Source       string
	File         string
	Sheet        string
	Location     *time.Location
	RecentWindow int
}

// FeedConfig holds settings for the background feed pacer
type FeedConfig struct {
	Interval time.Duration
}

// MQTTConfig holds MQTT broker configuration for feed publishing
type MQTTConfig struct {
	BrokerURL   string
	ClientID    string
	Username    string
	Password    string
	KeepAlive   time.Duration
	PingTimeout time.Duration
	TopicFeed   string
}

// DatabaseConfig holds PostgreSQL configuration for the postgres data source
type DatabaseConfig struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	Table    string
}

// Load loads configuration from environment variables with defaults
func Load() (*Config, error) {
	appEnv := getEnv("APP_ENV", "dev")
	switch appEnv {
	case "dev", "prod":
	default:
		return nil, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	level, err := ParseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}

	source := strings.ToLower(getEnv("DATA_SOURCE", SourceFile))
	switch source {
	case SourceFile, SourcePostgres:
	default:
		return nil, fmt.Errorf("invalid DATA_SOURCE %q (allowed: file, postgres)", source)
	}

	tzName := getEnv("DATA_TIMEZONE", "UTC")
	location, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid DATA_TIMEZONE %q: %w", tzName, err)
	}

	window := getIntEnv("RECENT_WINDOW", 30)
	if window <= 0 {
		return nil, fmt.Errorf("invalid RECENT_WINDOW %d (must be positive)", window)
	}

	return &Config{
		App: AppConfig{
			Env:      appEnv,
			LogLevel: level,
		},
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			ReadTimeout:    getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
			AllowedOrigins: getListEnv("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Data: DataConfig{
			Source:       source,
			File:         getEnv("DATA_FILE", "dados_sensores.xlsx"),
			Sheet:        getEnv("DATA_SHEET", ""),
			Location:     location,
			RecentWindow: window,
		},
		Feed: FeedConfig{
			Interval: getDurationEnv("FEED_INTERVAL", 0),
		},
		MQTT: MQTTConfig{
			BrokerURL:   getMQTTBrokerURL(),
			ClientID:    getEnv("MQTT_CLIENT_ID", defaultMQTTClientID()),
			Username:    getEnv("MQTT_USERNAME", ""),
			Password:    getEnv("MQTT_PASSWORD", ""),
			KeepAlive:   getDurationEnv("MQTT_KEEP_ALIVE", 30*time.Second),
			PingTimeout: getDurationEnv("MQTT_PING_TIMEOUT", 10*time.Second),
			TopicFeed:   getEnv("MQTT_TOPIC_FEED", "soilsense/feed/current"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "soilsense"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			Table:    getEnv("DB_TABLE", "dados_sensores"),
		},
	}, nil
}

// ParseLogLevel maps a LOG_LEVEL value to a slog level
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}

// getEnv returns environment variable value or default if not set
func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv returns duration environment variable value or default if not set
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getIntEnv returns integer environment variable value or default if not set
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getListEnv splits a comma separated environment variable
func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// defaultMQTTClientID is unique per process; brokers drop the older session
// when two clients share an ID.
func defaultMQTTClientID() string {
	return "soilsense_backend-" + uuid.NewString()[:8]
}

// getMQTTBrokerURL returns MQTT broker URL with tcp:// prefix if not present.
// An empty value disables MQTT publishing.
func getMQTTBrokerURL() string {
	broker := getEnv("MQTT_BROKER", getEnv("MQTT_BROKER_URL", ""))
	if broker == "" {
		return ""
	}
	if !strings.Contains(broker, "://") {
		return "tcp://" + broker
	}
	return broker
}
