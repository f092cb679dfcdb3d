package infra

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const secretKeyPrefix = "sk_"

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv           string
	Port             string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int

	PaystackSecretKey string
	PaystackBaseURL   string
	GatewayTimeout    time.Duration

	Web3FormsKey  string
	Web3FormsURL  string
	NotifyTimeout time.Duration

	SiteURL            string
	OrganizationName   string
	ReferencePrefix    string
	MinDonationAmount  int64
	CORSAllowedOrigins []string

	DatabaseURL     string
	WebhookDedupTTL time.Duration
	GeoIPDBPath     string
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
// Gateway and site settings are validated here so a misconfigured process never starts.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		PaystackSecretKey:  strings.TrimSpace(os.Getenv("PAYSTACK_SECRET_KEY")),
		PaystackBaseURL:    getEnv("PAYSTACK_BASE_URL", "https://api.paystack.co"),
		GatewayTimeout:     time.Second * time.Duration(getEnvInt("GATEWAY_TIMEOUT_SECONDS", 15)),
		Web3FormsKey:       strings.TrimSpace(os.Getenv("WEB3FORMS_KEY")),
		Web3FormsURL:       getEnv("WEB3FORMS_URL", "https://api.web3forms.com/submit"),
		NotifyTimeout:      time.Second * time.Duration(getEnvInt("NOTIFY_TIMEOUT_SECONDS", 10)),
		SiteURL:            strings.TrimRight(strings.TrimSpace(os.Getenv("SITE_URL")), "/"),
		OrganizationName:   getEnv("ORGANIZATION_NAME", "The OakTree Empowerment Initiative"),
		ReferencePrefix:    getEnv("REFERENCE_PREFIX", "TOEI"),
		MinDonationAmount:  int64(getEnvInt("MIN_DONATION_AMOUNT", 1000)),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		WebhookDedupTTL:    time.Minute * time.Duration(getEnvInt("WEBHOOK_DEDUP_TTL_MINUTES", 360)),
		GeoIPDBPath:        os.Getenv("GEOIP_DB_PATH"),
	}

	if cfg.PaystackSecretKey == "" {
		return nil, fmt.Errorf("PAYSTACK_SECRET_KEY is required")
	}
	if !strings.HasPrefix(cfg.PaystackSecretKey, secretKeyPrefix) {
		return nil, fmt.Errorf("PAYSTACK_SECRET_KEY must start with %q", secretKeyPrefix)
	}

	if cfg.SiteURL == "" {
		return nil, fmt.Errorf("SITE_URL is required")
	}
	u, err := url.Parse(cfg.SiteURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("SITE_URL must be an absolute http(s) url, got %q", cfg.SiteURL)
	}

	return cfg, nil
}

// CallbackURL is where the hosted checkout returns the donor.
func (c *Config) CallbackURL() string {
	return c.SiteURL + "/donation.success"
}

// NotificationsEnabled reports whether a relay key is configured.
func (c *Config) NotificationsEnabled() bool {
	return c.Web3FormsKey != ""
}

// SweeperConfig is the subset needed by the delivery sweeper.
type SweeperConfig struct {
	AppEnv        string
	DatabaseURL   string
	SweepInterval time.Duration
}

// LoadSweeperConfig loads the sweeper configuration; DATABASE_URL is required.
func LoadSweeperConfig() (*SweeperConfig, error) {
	cfg := &SweeperConfig{
		AppEnv:        getEnv("APP_ENV", "development"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		SweepInterval: time.Second * time.Duration(getEnvInt("SWEEP_INTERVAL_SECONDS", 300)),
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 5 * time.Minute
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
