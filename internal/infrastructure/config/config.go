package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Shopify   ShopifyConfig
	Partner   PartnerConfig
	Scheduler SchedulerConfig
	Ledger    LedgerConfig
}

// AppConfig holds application-specific settings.
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	MaxBodySize  int64
}

// ShopifyConfig holds the platform-side credentials and endpoints.
type ShopifyConfig struct {
	// Domain is the shop domain, e.g. "lovemart.myshopify.com".
	Domain string
	// AccessToken authenticates Admin API calls (X-Shopify-Access-Token).
	AccessToken string
	// WebhookSecret is the shared secret for webhook HMAC verification.
	WebhookSecret string
	// APIVersion selects the Admin API version path segment.
	APIVersion string
	// Timeout bounds each Admin API call.
	Timeout time.Duration
}

// PartnerConfig holds the fulfillment-partner credentials and endpoint.
type PartnerConfig struct {
	// Endpoint is the partner's XML-over-HTTP URL.
	Endpoint string
	// Account and Token are the credentials carried in every envelope.
	Account string
	Token   string
	// Timeout bounds each partner call.
	Timeout time.Duration
	// TLSFingerprint optionally pins the partner's certificate by its
	// SHA-256 fingerprint (hex, colons allowed). The partner presents a
	// chain some clients reject; pinning trusts that certificate for this
	// client only, without loosening validation anywhere else.
	TLSFingerprint string
	// DefaultShipCode is used when a shipping title has no table mapping.
	DefaultShipCode string
}

// SchedulerConfig holds the reconciliation sweep configuration.
type SchedulerConfig struct {
	Enabled bool
	// PollInterval is the sweep period. Minimum one minute.
	PollInterval time.Duration
	// InitialDelay is the delay before the early first sweep after start,
	// which catches orders submitted just before a restart.
	InitialDelay time.Duration
}

// LedgerConfig selects the ledger store backing.
type LedgerConfig struct {
	// Backend is "memory" (default, lost on restart) or "sqlite".
	Backend string
	// DSN is the sqlite database path when Backend is "sqlite".
	DSN string
}

// Load loads configuration from config.toml and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with HP_ prefix (e.g. HP_SHOPIFY_WEBHOOK_SECRET)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("HP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:  v.GetDuration("http.read_timeout"),
			WriteTimeout: v.GetDuration("http.write_timeout"),
			IdleTimeout:  v.GetDuration("http.idle_timeout"),
			MaxBodySize:  v.GetInt64("http.max_body_size"),
		},
		Shopify: ShopifyConfig{
			Domain:        v.GetString("shopify.domain"),
			AccessToken:   v.GetString("shopify.access_token"),
			WebhookSecret: v.GetString("shopify.webhook_secret"),
			APIVersion:    v.GetString("shopify.api_version"),
			Timeout:       v.GetDuration("shopify.timeout"),
		},
		Partner: PartnerConfig{
			Endpoint:        v.GetString("partner.endpoint"),
			Account:         v.GetString("partner.account"),
			Token:           v.GetString("partner.token"),
			Timeout:         v.GetDuration("partner.timeout"),
			TLSFingerprint:  v.GetString("partner.tls_fingerprint"),
			DefaultShipCode: v.GetString("partner.default_ship_code"),
		},
		Scheduler: SchedulerConfig{
			Enabled:      v.GetBool("scheduler.enabled"),
			PollInterval: v.GetDuration("scheduler.poll_interval"),
			InitialDelay: v.GetDuration("scheduler.initial_delay"),
		},
		Ledger: LedgerConfig{
			Backend: v.GetString("ledger.backend"),
			DSN:     v.GetString("ledger.dsn"),
		},
	}

	// Scheduler runs unless explicitly turned off.
	if !v.IsSet("scheduler.enabled") {
		cfg.Scheduler.Enabled = true
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields.
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "hp-automation"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // order webhooks are small
	}
	if cfg.Shopify.APIVersion == "" {
		cfg.Shopify.APIVersion = "2024-10"
	}
	if cfg.Shopify.Timeout == 0 {
		cfg.Shopify.Timeout = 15 * time.Second
	}
	if cfg.Partner.Timeout == 0 {
		cfg.Partner.Timeout = 30 * time.Second
	}
	if cfg.Scheduler.PollInterval == 0 {
		cfg.Scheduler.PollInterval = 5 * time.Minute
	}
	if cfg.Scheduler.InitialDelay == 0 {
		cfg.Scheduler.InitialDelay = 10 * time.Second
	}
	if cfg.Ledger.Backend == "" {
		cfg.Ledger.Backend = "memory"
	}
	if cfg.Ledger.Backend == "sqlite" && cfg.Ledger.DSN == "" {
		cfg.Ledger.DSN = "hp-automation.db"
	}
}

// validate performs validation on the configuration.
func (c *Config) validate() error {
	if c.Scheduler.PollInterval < time.Minute {
		return fmt.Errorf("scheduler.poll_interval must be at least one minute, got %s", c.Scheduler.PollInterval)
	}
	if c.Ledger.Backend != "memory" && c.Ledger.Backend != "sqlite" {
		return fmt.Errorf("ledger.backend must be \"memory\" or \"sqlite\", got %q", c.Ledger.Backend)
	}

	if c.App.Env == "production" {
		if c.Shopify.WebhookSecret == "" {
			return fmt.Errorf("shopify.webhook_secret is required in production")
		}
		if c.Shopify.Domain == "" || c.Shopify.AccessToken == "" {
			return fmt.Errorf("shopify.domain and shopify.access_token are required in production")
		}
		if c.Partner.Endpoint == "" || c.Partner.Account == "" || c.Partner.Token == "" {
			return fmt.Errorf("partner.endpoint, partner.account and partner.token are required in production")
		}
	}

	return nil
}
