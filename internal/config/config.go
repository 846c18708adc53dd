package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	AppEnv       string `mapstructure:"APP_ENV"`
	ServerPort   string `mapstructure:"SERVER_PORT"`
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	JWTSecret    string `mapstructure:"JWT_SECRET"`
	ClientOrigin string `mapstructure:"CLIENT_ORIGIN"`

	// AdminEmail receives every admin-side notification.
	AdminEmail string `mapstructure:"ADMIN_EMAIL"`

	StripeAPIKey string `mapstructure:"STRIPE_API_KEY"`
	Currency     string `mapstructure:"PAYMENT_CURRENCY"`

	SSLCommerzStoreID       string `mapstructure:"SSLCZ_STORE_ID"`
	SSLCommerzStorePassword string `mapstructure:"SSLCZ_STORE_PASSWORD"`
	SSLCommerzBaseURL       string `mapstructure:"SSLCZ_BASE_URL"`

	// PublicBaseURL is where the gateway posts its success/fail/cancel callbacks.
	PublicBaseURL string `mapstructure:"PUBLIC_BASE_URL"`
	// OrderTrackingURL is the client page callers are redirected to after a gateway callback.
	OrderTrackingURL string `mapstructure:"ORDER_TRACKING_URL"`

	AWSRegion string `mapstructure:"AWS_REGION"`
	SESSender string `mapstructure:"SES_SENDER"`
}

var defaults = map[string]string{
	"APP_ENV":              "production",
	"SERVER_PORT":          "8080",
	"DATABASE_URL":         "",
	"JWT_SECRET":           "",
	"CLIENT_ORIGIN":        "http://localhost:5173",
	"ADMIN_EMAIL":          "",
	"STRIPE_API_KEY":       "",
	"PAYMENT_CURRENCY":     "bdt",
	"SSLCZ_STORE_ID":       "",
	"SSLCZ_STORE_PASSWORD": "",
	"SSLCZ_BASE_URL":       "https://sandbox.sslcommerz.com",
	"PUBLIC_BASE_URL":      "http://localhost:8080",
	"ORDER_TRACKING_URL":   "http://localhost:5173/dashboard/my-orders",
	"AWS_REGION":           "",
	"SES_SENDER":           "",
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	// Unmarshal only sees keys viper knows about, so every key gets a default.
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config.LoadConfig: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config.LoadConfig: %w", err)
	}
	cfg.Currency = strings.ToLower(cfg.Currency)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var missing []string
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.AdminEmail == "" {
		missing = append(missing, "ADMIN_EMAIL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (c *Config) IsDevelopment() bool { return c.AppEnv == "development" }

// GatewayCallbackURL builds the absolute URL the gateway calls back on.
func (c *Config) GatewayCallbackURL(path string) string {
	return strings.TrimRight(c.PublicBaseURL, "/") + path
}
