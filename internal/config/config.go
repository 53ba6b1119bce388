/**
 * @description
 * Configuration management for the IdeaVault backend. Uses viper to load
 * settings from environment variables, with sane defaults for the server port
 * and the cron schedules.
 */
package config

import (
	"errors"
	"os"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	ServerPort          string `mapstructure:"SERVER_PORT"`
	DatabaseURL         string `mapstructure:"DATABASE_URL"`
	SupabaseJWTSecret   string `mapstructure:"SUPABASE_JWT_SECRET"`
	StripeSecretKey     string `mapstructure:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	StripePriceID       string `mapstructure:"STRIPE_PRICE_ID"`
	StripeAPIBaseURL    string `mapstructure:"STRIPE_API_BASE_URL"`
	RabbitMQURL         string `mapstructure:"RABBITMQ_URL"`

	// Cron schedules for the background jobs.
	PendingBillingSweepSchedule string `mapstructure:"PENDING_BILLING_SWEEP_SCHEDULE"`
	NotificationPruneSchedule   string `mapstructure:"NOTIFICATION_PRUNE_SCHEDULE"`

	// PendingBillingMaxAgeHours is how long an idea may stay in
	// billing_status=pending before the sweep treats its checkout as
	// abandoned and deletes the row.
	PendingBillingMaxAgeHours int `mapstructure:"PENDING_BILLING_MAX_AGE_HOURS"`
	// NotificationRetentionDays is how long read notifications are kept.
	NotificationRetentionDays int `mapstructure:"NOTIFICATION_RETENTION_DAYS"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (config Config, err error) {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("STRIPE_API_BASE_URL", "https://api.stripe.com")
	viper.SetDefault("PENDING_BILLING_SWEEP_SCHEDULE", "0 * * * *")
	viper.SetDefault("NOTIFICATION_PRUNE_SCHEDULE", "30 3 * * *")
	viper.SetDefault("PENDING_BILLING_MAX_AGE_HOURS", 24)
	viper.SetDefault("NOTIFICATION_RETENTION_DAYS", 30)
	viper.AutomaticEnv()

	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("SUPABASE_JWT_SECRET")
	_ = viper.BindEnv("STRIPE_SECRET_KEY")
	_ = viper.BindEnv("STRIPE_WEBHOOK_SECRET")
	_ = viper.BindEnv("STRIPE_PRICE_ID")
	_ = viper.BindEnv("STRIPE_API_BASE_URL")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("PENDING_BILLING_SWEEP_SCHEDULE")
	_ = viper.BindEnv("NOTIFICATION_PRUNE_SCHEDULE")
	_ = viper.BindEnv("PENDING_BILLING_MAX_AGE_HOURS")
	_ = viper.BindEnv("NOTIFICATION_RETENTION_DAYS")

	if err = viper.Unmarshal(&config); err != nil {
		return
	}
	// Some hosting platforms only expose PORT.
	if port := os.Getenv("PORT"); port != "" {
		config.ServerPort = port
	}

	if config.DatabaseURL == "" {
		return config, errors.New("DATABASE_URL is required")
	}
	if config.SupabaseJWTSecret == "" {
		return config, errors.New("SUPABASE_JWT_SECRET is required")
	}
	if config.StripeSecretKey == "" {
		return config, errors.New("STRIPE_SECRET_KEY is required")
	}
	return
}
