package core

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
)

// Default endpoints and limits.
const (
	DefaultServerURL    = "https://api.btcchina.com"
	DefaultDataURL      = "https://data.btcchina.com"
	DefaultFiatRatesURL = "https://exchange.btcc.com/page/internationalvoucher"
	DefaultUserAgent    = "BTC China Go API Client"
	DefaultTimeout      = 30 * time.Second
)

// Credentials holds API authentication credentials.
type Credentials struct {
	// AccessKey is the public API key identifier.
	AccessKey string `json:"access_key"`
	// SecretKey is the private key used for signing requests.
	SecretKey string `json:"secret_key"`
}

// Valid reports whether both the key and the secret are set.
func (c *Credentials) Valid() bool {
	return c != nil && c.AccessKey != "" && c.SecretKey != ""
}

// Config contains all configuration options for a client.
// A Config is read once at construction and never mutated by the client.
type Config struct {
	Credentials *Credentials `json:"credentials,omitempty"`

	// ServerURL is the base URL for trade and market-data requests.
	ServerURL string `json:"server_url" validate:"required,url"`
	// DataURL is the mirror host serving the trades data method.
	DataURL string `json:"data_url" validate:"required,url"`
	// FiatRatesURL is the page scraped for fiat deposit and withdrawal rates.
	FiatRatesURL string `json:"fiat_rates_url" validate:"required,url"`
	UserAgent    string `json:"user_agent" validate:"required"`

	// Timeout bounds public and fiat-rate requests. Zero disables it.
	Timeout time.Duration `json:"timeout" validate:"min=0"`
	// PrivateTimeout bounds signed requests. Zero, the default, disables it.
	PrivateTimeout time.Duration `json:"private_timeout" validate:"min=0"`

	// RateLimitRequests enables client-side rate limiting when positive.
	RateLimitRequests int           `json:"rate_limit_requests" validate:"min=0"`
	RateLimitPeriod   time.Duration `json:"rate_limit_period" validate:"min=0"`

	LogLevel string `json:"log_level" validate:"omitempty,oneof=trace debug info warn error disabled"`
}

// DefaultConfig returns a Config pointing at the production API with a 30s public timeout,
// no private timeout and no rate limiting.
func DefaultConfig() *Config {
	return &Config{
		ServerURL:    DefaultServerURL,
		DataURL:      DefaultDataURL,
		FiatRatesURL: DefaultFiatRatesURL,
		UserAgent:    DefaultUserAgent,
		Timeout:      DefaultTimeout,
		LogLevel:     "info",
	}
}

var validate = validator.New()

// Validate checks the configuration. Missing credentials are not an error here;
// they are reported when a private call is attempted.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.RateLimitRequests > 0 && c.RateLimitPeriod <= 0 {
		return errors.New("RateLimitPeriod must be positive when rate limiting is enabled")
	}
	return nil
}

// WithCredentials sets the API credentials and returns the config for chaining.
func (c *Config) WithCredentials(accessKey, secretKey string) *Config {
	c.Credentials = &Credentials{AccessKey: accessKey, SecretKey: secretKey}
	return c
}

// WithServerURL sets the API base URL and returns the config for chaining.
func (c *Config) WithServerURL(url string) *Config {
	c.ServerURL = url
	return c
}

// WithTimeout sets the public request timeout and returns the config for chaining.
func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.Timeout = timeout
	return c
}

// WithPrivateTimeout sets the signed request timeout and returns the config for chaining.
func (c *Config) WithPrivateTimeout(timeout time.Duration) *Config {
	c.PrivateTimeout = timeout
	return c
}

// WithRateLimit sets the rate limiting parameters and returns the config for chaining.
func (c *Config) WithRateLimit(requests int, period time.Duration) *Config {
	c.RateLimitRequests = requests
	c.RateLimitPeriod = period
	return c
}
