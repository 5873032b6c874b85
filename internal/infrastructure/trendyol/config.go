package trendyol

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"
)

const defaultBaseURL = "https://apigw.trendyol.com/integration"

var (
	ErrMissingAPIKey    = errors.New("trendyol: api key is required")
	ErrMissingAPISecret = errors.New("trendyol: api secret is required")
	ErrMissingSellerID  = errors.New("trendyol: seller id is required")
)

// Config holds the credentials and endpoint for one seller account.
type Config struct {
	APIKey         string
	APISecret      string
	SellerID       string
	BaseURL        string
	TimeoutSeconds int
	// FallbackBrandID is used when brand lookup finds nothing. Zero
	// disables the fallback and surfaces BrandNotFound instead.
	FallbackBrandID int
}

// Validate checks required fields and applies defaults.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.APISecret == "" {
		return ErrMissingAPISecret
	}
	if c.SellerID == "" {
		return ErrMissingSellerID
	}
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}

// Timeout returns the per-request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// basicAuth returns the Authorization header value for the account.
func (c *Config) basicAuth() string {
	creds := base64.StdEncoding.EncodeToString([]byte(c.APIKey + ":" + c.APISecret))
	return "Basic " + creds
}

// userAgent returns the integration User-Agent the marketplace expects.
func (c *Config) userAgent() string {
	return fmt.Sprintf("%s - SelfIntegration", c.SellerID)
}
