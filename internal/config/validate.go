package config

import "fmt"

// Validate checks that the configuration is valid and complete.
// It returns an error if required fields are missing or values are invalid.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if err := validateServer(cfg); err != nil {
		return fmt.Errorf("invalid server config: %w", err)
	}

	if err := validateIdP(cfg); err != nil {
		return fmt.Errorf("invalid identity provider config: %w", err)
	}

	if err := validateCredentials(cfg); err != nil {
		return fmt.Errorf("invalid credential vendor config: %w", err)
	}

	return nil
}

// validateServer validates the server-related fields.
func validateServer(cfg *Config) error {
	if cfg.Addr == "" {
		return fmt.Errorf("PORT is required")
	}

	if cfg.ReadTimeout <= 0 {
		return fmt.Errorf("SERVER_READ_TIMEOUT must be positive")
	}

	if cfg.WriteTimeout <= 0 {
		return fmt.Errorf("SERVER_WRITE_TIMEOUT must be positive")
	}

	if cfg.IdleTimeout < 0 {
		return fmt.Errorf("SERVER_IDLE_TIMEOUT must be non-negative")
	}

	if cfg.MaxBodyBytes <= 0 {
		return fmt.Errorf("MAX_BODY_BYTES must be positive")
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got %q", cfg.LogLevel)
	}

	return nil
}

// validateIdP validates the identity provider fields. IdPUserPoolID is
// deliberately allowed to be empty: that is local-dev mode, where the
// verifier always returns an unverified AuthContext rather than trusting
// any signature. Once a user pool id is configured, region and client id
// become mandatory so the issuer, the JWKS URL, and the audience check are
// well-formed.
func validateIdP(cfg *Config) error {
	if cfg.IdPUserPoolID != "" {
		if cfg.IdPRegion == "" {
			return fmt.Errorf("IDP_REGION is required when IDP_USER_POOL_ID is set")
		}
		if cfg.IdPClientID == "" {
			return fmt.Errorf("IDP_CLIENT_ID is required when IDP_USER_POOL_ID is set")
		}
	}

	if cfg.JWKSCacheTTL <= 0 {
		return fmt.Errorf("JWKS_CACHE_TTL must be positive")
	}

	if cfg.JWKSCacheSize <= 0 {
		return fmt.Errorf("JWKS_CACHE_SIZE must be positive")
	}

	if cfg.ClockSkew <= 0 {
		return fmt.Errorf("CLOCK_SKEW must be positive")
	}

	return nil
}

// validateCredentials validates the tenant credential vendor fields.
// RoleARN is optional at config-load time: a deployment that only exercises
// the JWT/registry path without the AWS-backed tools can leave it unset. The
// credential vendor itself refuses to operate with an empty RoleARN.
func validateCredentials(cfg *Config) error {
	if cfg.CredentialTTL <= 0 {
		return fmt.Errorf("CREDENTIAL_TTL must be positive")
	}
	return nil
}
