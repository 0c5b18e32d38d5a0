package config

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	RunAddress    string `env:"RUN_ADDRESS"`
	DatabaseDSN   string `env:"DATABASE_URI"`
	MigrationsDir string `env:"MIGRATIONS_DIR"`

	JWTUserSecret        string `env:"JWT_SECRET"`
	AdminKey             string `env:"ADMIN_KEY"`
	PaymentWebhookSecret string `env:"PAYMENT_WEBHOOK_SECRET"`
	PaymentAPIURL        string `env:"PAYMENT_API_URL"`
	PaymentAPIKey        string `env:"PAYMENT_API_KEY"`
	NotifyURL            string `env:"NOTIFY_URL"`

	WelcomeBonusCents   int64         `env:"WELCOME_BONUS_CENTS"`
	WelcomeBonusTTLDays int           `env:"WELCOME_BONUS_TTL_DAYS"`
	ListingFeeCents     int64         `env:"LISTING_FEE_CENTS"`
	BillingInterval     time.Duration `env:"BILLING_INTERVAL"`
}

func LoadConfig() (*Config, error) {
	var flagsConfig, envConfig Config

	if envParseErr := env.Parse(&envConfig); envParseErr != nil {
		return nil, fmt.Errorf("parse env config: %s", envParseErr.Error())
	}

	loadFlags(&flagsConfig)

	conf := mergeConfig(&envConfig, &flagsConfig)
	if conf.DatabaseDSN == "" {
		return nil, errors.New("database DSN is not set")
	}
	if conf.JWTUserSecret == "" {
		return nil, errors.New("JWT secret is not set")
	}
	if conf.PaymentWebhookSecret == "" {
		return nil, errors.New("payment webhook secret is not set")
	}
	return conf, nil
}

func MustLoadConfig() *Config {
	config, err := LoadConfig()
	if err != nil {
		panic(err)
	}
	return config
}

func loadFlags(flagConfig *Config) {
	flag.StringVar(&flagConfig.RunAddress, "a", "localhost:8080", "Run address in format host:port")
	flag.StringVar(&flagConfig.DatabaseDSN, "d", "", "Database DSN")
	flag.StringVar(&flagConfig.MigrationsDir, "m", "internal/db/migrations", "Database migrations directory")
	flag.StringVar(&flagConfig.JWTUserSecret, "j", "", "JWT signing secret")
	flag.StringVar(&flagConfig.AdminKey, "k", "", "Static admin API key")
	flag.StringVar(&flagConfig.PaymentWebhookSecret, "w", "", "Payment provider webhook signing secret")
	flag.StringVar(&flagConfig.PaymentAPIURL, "p", "", "Payment provider API base URL")
	flag.StringVar(&flagConfig.PaymentAPIKey, "s", "", "Payment provider API key")
	flag.StringVar(&flagConfig.NotifyURL, "n", "", "Notification service base URL (blank disables notifications)")
	flag.Int64Var(&flagConfig.WelcomeBonusCents, "welcome-bonus", 500, "Welcome bonus amount in cents") //nolint:mnd
	flag.IntVar(&flagConfig.WelcomeBonusTTLDays, "welcome-bonus-ttl", 90, "Welcome bonus lifetime in days") //nolint:mnd
	flag.Int64Var(&flagConfig.ListingFeeCents, "listing-fee", 20, "Monthly listing fee per active product in cents") //nolint:mnd
	flag.DurationVar(&flagConfig.BillingInterval, "billing-interval", time.Hour, "Billing runner interval")

	flag.Parse()
}

func mergeConfig(envConfig, flagsConfig *Config) *Config {
	return &Config{
		RunAddress:           defaultIfBlank(envConfig.RunAddress, flagsConfig.RunAddress),
		DatabaseDSN:          defaultIfBlank(envConfig.DatabaseDSN, flagsConfig.DatabaseDSN),
		MigrationsDir:        defaultIfBlank(envConfig.MigrationsDir, flagsConfig.MigrationsDir),
		JWTUserSecret:        defaultIfBlank(envConfig.JWTUserSecret, flagsConfig.JWTUserSecret),
		AdminKey:             defaultIfBlank(envConfig.AdminKey, flagsConfig.AdminKey),
		PaymentWebhookSecret: defaultIfBlank(envConfig.PaymentWebhookSecret, flagsConfig.PaymentWebhookSecret),
		PaymentAPIURL:        defaultIfBlank(envConfig.PaymentAPIURL, flagsConfig.PaymentAPIURL),
		PaymentAPIKey:        defaultIfBlank(envConfig.PaymentAPIKey, flagsConfig.PaymentAPIKey),
		NotifyURL:            defaultIfBlank(envConfig.NotifyURL, flagsConfig.NotifyURL),
		WelcomeBonusCents:    defaultIfZero(envConfig.WelcomeBonusCents, flagsConfig.WelcomeBonusCents),
		WelcomeBonusTTLDays:  defaultIfZero(envConfig.WelcomeBonusTTLDays, flagsConfig.WelcomeBonusTTLDays),
		ListingFeeCents:      defaultIfZero(envConfig.ListingFeeCents, flagsConfig.ListingFeeCents),
		BillingInterval:      defaultIfZero(envConfig.BillingInterval, flagsConfig.BillingInterval),
	}
}

func defaultIfBlank(value string, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}

func defaultIfZero[T int | int64 | time.Duration](value T, defaultValue T) T {
	if value == 0 {
		return defaultValue
	}
	return value
}
