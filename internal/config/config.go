package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	NewRelic     NewRelicConfig
	Pricing      PricingConfig
	Bidding      BiddingConfig
	Subscription SubscriptionConfig
	Sweep        SweepConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// PricingConfig holds fare estimation parameters.
type PricingConfig struct {
	BaseFare       float64
	PerKmRate      float64
	MinimumFare    float64
	SearchRadiusKm float64
}

// BiddingConfig holds bid bound parameters.
type BiddingConfig struct {
	FloorRatio   float64
	CeilingRatio float64
}

// SubscriptionConfig holds subscription fee parameters.
type SubscriptionConfig struct {
	DailyFee    float64
	GraceWindow time.Duration
}

// SweepConfig holds subscription sweep timing.
type SweepConfig struct {
	Interval         time.Duration
	ReminderInterval time.Duration
	ReminderLead     time.Duration
	ReminderMarkTTL  time.Duration
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "farebid"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),

			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 50),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getDurationEnv("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "farebid-service"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
		Pricing: PricingConfig{
			BaseFare:       getFloatEnv("PRICING_BASE_FARE", 2.0),
			PerKmRate:      getFloatEnv("PRICING_PER_KM_RATE", 0.75),
			MinimumFare:    getFloatEnv("PRICING_MINIMUM_FARE", 5.0),
			SearchRadiusKm: getFloatEnv("TRIP_SEARCH_RADIUS_KM", 5.0),
		},
		Bidding: BiddingConfig{
			FloorRatio:   getFloatEnv("BID_FLOOR_RATIO", 0.5),
			CeilingRatio: getFloatEnv("BID_CEILING_RATIO", 1.5),
		},
		Subscription: SubscriptionConfig{
			DailyFee:    getFloatEnv("SUBSCRIPTION_DAILY_FEE", 5.0),
			GraceWindow: getDurationEnv("SUBSCRIPTION_GRACE_WINDOW", 6*time.Hour),
		},
		Sweep: SweepConfig{
			Interval:         getDurationEnv("SWEEP_INTERVAL", time.Minute),
			ReminderInterval: getDurationEnv("SWEEP_REMINDER_INTERVAL", 10*time.Minute),
			ReminderLead:     getDurationEnv("SWEEP_REMINDER_LEAD", 2*time.Hour),
			ReminderMarkTTL:  getDurationEnv("SWEEP_REMINDER_MARK_TTL", 48*time.Hour),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
