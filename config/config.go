package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	Timezone          string `mapstructure:"TIMEZONE"`

	// Redis configuration.
	RedisAddr            string `mapstructure:"REDIS_ADDR"`
	RedisPassword        string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB         int    `mapstructure:"REDIS_CACHE_DB"`
	RedisLockDB          int    `mapstructure:"REDIS_LOCK_DB"`
	RedisReminderQueueDB int    `mapstructure:"REDIS_REMINDER_QUEUE_DB"`

	// Scheduling policy.
	EligibilityWindowMonths int    `mapstructure:"ELIGIBILITY_WINDOW_MONTHS"`
	MaxReschedules          int    `mapstructure:"MAX_RESCHEDULES"`
	DefaultSlotMinutes      int    `mapstructure:"DEFAULT_SLOT_MINUTES"`
	ReminderLeadHours       int    `mapstructure:"REMINDER_LEAD_HOURS"`
	BookingLockTTLSeconds   int    `mapstructure:"BOOKING_LOCK_TTL_SECONDS"`
	ProfileCacheTTLSeconds  int    `mapstructure:"PROFILE_CACHE_TTL_SECONDS"`
	NoShowSweepSpec         string `mapstructure:"NO_SHOW_SWEEP_SPEC"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("TIMEZONE", "UTC")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_LOCK_DB", 1)
	viper.SetDefault("REDIS_REMINDER_QUEUE_DB", 2)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "bloodlink")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("ELIGIBILITY_WINDOW_MONTHS", 3)
	viper.SetDefault("MAX_RESCHEDULES", 3)
	viper.SetDefault("DEFAULT_SLOT_MINUTES", 60)
	viper.SetDefault("REMINDER_LEAD_HOURS", 24)
	viper.SetDefault("BOOKING_LOCK_TTL_SECONDS", 30)
	viper.SetDefault("PROFILE_CACHE_TTL_SECONDS", 300)
	viper.SetDefault("NO_SHOW_SWEEP_SPEC", "15 * * * *")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// Location resolves the configured TIMEZONE, falling back to UTC.
func Location() *time.Location {
	if AppConfig.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(AppConfig.Timezone)
	if err != nil {
		log.Printf("Unknown TIMEZONE %q, using UTC", AppConfig.Timezone)
		return time.UTC
	}
	return loc
}

// BookingLockTTL is the lifetime of a per-bank booking lock.
func BookingLockTTL() time.Duration {
	if AppConfig.BookingLockTTLSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(AppConfig.BookingLockTTLSeconds) * time.Second
}

// ProfileCacheTTL is how long a cached blood bank profile is served before reloading.
func ProfileCacheTTL() time.Duration {
	if AppConfig.ProfileCacheTTLSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(AppConfig.ProfileCacheTTLSeconds) * time.Second
}
