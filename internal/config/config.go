// Package config provides configuration management for the stateless
// multi-tenant MCP server. Configuration is loaded from environment
// variables with sensible defaults.
package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds the complete server configuration in a flat structure.
type Config struct {
	// Server settings
	// Addr is the address to bind the HTTP server (e.g., ":8080").
	Addr string

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration

	// IdleTimeout is the maximum duration to wait for the next request when keep-alives are enabled.
	IdleTimeout time.Duration

	// MaxBodyBytes bounds the size of a single /mcp request body before it is
	// rejected with 413, enforced ahead of JSON parsing.
	MaxBodyBytes int64

	// LogLevel controls the slog handler's minimum level (debug, info, warn, error).
	LogLevel string

	// Identity provider settings (Cognito-shaped).
	// IdPRegion is the AWS region the user pool lives in, used to build the
	// issuer and JWKS URLs directly rather than via OAuth2 AS discovery.
	IdPRegion string

	// IdPUserPoolID is the Cognito user pool id. Empty means local-dev mode:
	// the verifier never treats a token as signed-and-trusted.
	IdPUserPoolID string

	// IdPClientID is the expected `aud`/`client_id` claim value.
	IdPClientID string

	// JWKSCacheTTL is how long a cached JWKS entry remains fresh.
	JWKSCacheTTL time.Duration

	// JWKSCacheSize bounds the number of cached public keys (keyed by kid).
	JWKSCacheSize int

	// ClockSkew is the allowed clock skew for token expiration validation.
	ClockSkew time.Duration

	// Tenant credential vendor settings.
	// RoleARN is the IAM role assumed for every tenant-scoped credential
	// request, tagged with a single session tag tenantId=<value>.
	RoleARN string

	// CredentialTTL is the requested STS session duration.
	CredentialTTL time.Duration

	// Data plane settings.
	// TableName is the DynamoDB table backing the tenant-partitioned store.
	TableName string

	// BucketName is the S3 bucket backing tenant policy resources.
	BucketName string

	// AWSRegion is the region used for STS/DynamoDB/S3 clients. Defaults to
	// IdPRegion when unset.
	AWSRegion string
}

// Load reads configuration from environment variables and returns a Config.
// It sets default values for optional fields and validates the configuration.
func Load() (*Config, error) {
	readTimeout, err := parseDurationWithDefault("SERVER_READ_TIMEOUT", "30s")
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := parseDurationWithDefault("SERVER_WRITE_TIMEOUT", "30s")
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_WRITE_TIMEOUT: %w", err)
	}

	idleTimeout, err := parseDurationWithDefault("SERVER_IDLE_TIMEOUT", "120s")
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_IDLE_TIMEOUT: %w", err)
	}

	jwksCacheTTL, err := parseDurationWithDefault("JWKS_CACHE_TTL", "10m")
	if err != nil {
		return nil, fmt.Errorf("invalid JWKS_CACHE_TTL: %w", err)
	}

	clockSkew, err := parseDurationWithDefault("CLOCK_SKEW", "1m")
	if err != nil {
		return nil, fmt.Errorf("invalid CLOCK_SKEW: %w", err)
	}

	credentialTTL, err := parseDurationWithDefault("CREDENTIAL_TTL", "15m")
	if err != nil {
		return nil, fmt.Errorf("invalid CREDENTIAL_TTL: %w", err)
	}

	jwksCacheSize, err := parseIntWithDefault("JWKS_CACHE_SIZE", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid JWKS_CACHE_SIZE: %w", err)
	}

	maxBodyBytes, err := parseIntWithDefault("MAX_BODY_BYTES", 1<<20)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_BODY_BYTES: %w", err)
	}

	port := getEnvWithDefault("PORT", "3000")

	region := os.Getenv("IDP_REGION")
	awsRegion := getEnvWithDefault("AWS_REGION", region)

	cfg := &Config{
		Addr:         ":" + port,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
		MaxBodyBytes: int64(maxBodyBytes),
		LogLevel:     getEnvWithDefault("LOG_LEVEL", "info"),

		IdPRegion:     region,
		IdPUserPoolID: os.Getenv("IDP_USER_POOL_ID"),
		IdPClientID:   os.Getenv("IDP_CLIENT_ID"),
		JWKSCacheTTL:  jwksCacheTTL,
		JWKSCacheSize: jwksCacheSize,
		ClockSkew:     clockSkew,

		RoleARN:       os.Getenv("ROLE_ARN"),
		CredentialTTL: credentialTTL,

		TableName:  os.Getenv("TABLE_NAME"),
		BucketName: os.Getenv("BUCKET_NAME"),
		AWSRegion:  awsRegion,
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// getEnvWithDefault returns the environment variable value or the default if not set.
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseDurationWithDefault parses a duration from an environment variable.
// If the variable is not set, it uses the default value.
// Returns an error if the value is set but cannot be parsed.
func parseDurationWithDefault(key, defaultValue string) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		duration, err := time.ParseDuration(defaultValue)
		if err != nil {
			return 0, fmt.Errorf("invalid default duration %q: %w", defaultValue, err)
		}
		return duration, nil
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("cannot parse duration %q: %w", value, err)
	}

	return duration, nil
}

// parseIntWithDefault parses an integer from an environment variable, falling
// back to defaultValue when unset.
func parseIntWithDefault(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	var n int
	if _, err := fmt.Sscanf(value, "%d", &n); err != nil {
		return 0, fmt.Errorf("cannot parse integer %q: %w", value, err)
	}
	return n, nil
}

// String returns a string representation of the configuration (for debugging).
// Sensitive values are redacted.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Addr: %s, LogLevel: %s, IdPRegion: %s, IdPUserPoolID: %s, JWKSCacheTTL: %v, JWKSCacheSize: %d, ClockSkew: %v, RoleARN: %s, TableName: %s, BucketName: %s, AWSRegion: %s}",
		c.Addr, c.LogLevel, c.IdPRegion, c.IdPUserPoolID, c.JWKSCacheTTL, c.JWKSCacheSize,
		c.ClockSkew, c.RoleARN, c.TableName, c.BucketName, c.AWSRegion)
}
