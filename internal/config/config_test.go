package config

import (
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		envVars     map[string]string
		wantErr     bool
		errContains string
		validate    func(t *testing.T, cfg *Config)
	}{
		{
			name:    "defaults with nothing set",
			envVars: map[string]string{},
			wantErr: false,
			validate: func(t *testing.T, cfg *Config) {
				if cfg.Addr != ":3000" {
					t.Errorf("Addr = %q, want %q", cfg.Addr, ":3000")
				}
				if cfg.LogLevel != "info" {
					t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
				}
				if cfg.IdPUserPoolID != "" {
					t.Errorf("IdPUserPoolID = %q, want empty (local-dev mode)", cfg.IdPUserPoolID)
				}
				if cfg.JWKSCacheSize != 5 {
					t.Errorf("JWKSCacheSize = %d, want 5", cfg.JWKSCacheSize)
				}
				if cfg.JWKSCacheTTL != 10*time.Minute {
					t.Errorf("JWKSCacheTTL = %v, want %v", cfg.JWKSCacheTTL, 10*time.Minute)
				}
			},
		},
		{
			name: "custom port",
			envVars: map[string]string{
				"PORT": "9000",
			},
			wantErr: false,
			validate: func(t *testing.T, cfg *Config) {
				if cfg.Addr != ":9000" {
					t.Errorf("Addr = %q, want %q", cfg.Addr, ":9000")
				}
			},
		},
		{
			name: "user pool set without region fails",
			envVars: map[string]string{
				"IDP_USER_POOL_ID": "us-east-1_abc123",
				"IDP_CLIENT_ID":    "client-123",
			},
			wantErr:     true,
			errContains: "IDP_REGION",
		},
		{
			name: "user pool set without client id fails",
			envVars: map[string]string{
				"IDP_USER_POOL_ID": "us-east-1_abc123",
				"IDP_REGION":       "us-east-1",
			},
			wantErr:     true,
			errContains: "IDP_CLIENT_ID",
		},
		{
			name: "full idp config",
			envVars: map[string]string{
				"IDP_USER_POOL_ID": "us-east-1_abc123",
				"IDP_REGION":       "us-east-1",
				"IDP_CLIENT_ID":    "client-123",
			},
			wantErr: false,
			validate: func(t *testing.T, cfg *Config) {
				if cfg.IdPUserPoolID != "us-east-1_abc123" {
					t.Errorf("IdPUserPoolID = %q, want %q", cfg.IdPUserPoolID, "us-east-1_abc123")
				}
				if cfg.AWSRegion != "us-east-1" {
					t.Errorf("AWSRegion = %q, want %q (defaulted from IDP_REGION)", cfg.AWSRegion, "us-east-1")
				}
			},
		},
		{
			name: "invalid log level",
			envVars: map[string]string{
				"LOG_LEVEL": "verbose",
			},
			wantErr:     true,
			errContains: "LOG_LEVEL",
		},
		{
			name: "invalid duration format",
			envVars: map[string]string{
				"SERVER_READ_TIMEOUT": "not-a-duration",
			},
			wantErr:     true,
			errContains: "SERVER_READ_TIMEOUT",
		},
		{
			name: "custom jwks cache bound",
			envVars: map[string]string{
				"JWKS_CACHE_SIZE": "12",
			},
			wantErr: false,
			validate: func(t *testing.T, cfg *Config) {
				if cfg.JWKSCacheSize != 12 {
					t.Errorf("JWKSCacheSize = %d, want 12", cfg.JWKSCacheSize)
				}
			},
		},
		{
			name: "table and bucket names pass through",
			envVars: map[string]string{
				"TABLE_NAME":  "tenant-data",
				"BUCKET_NAME": "tenant-policies",
				"ROLE_ARN":    "arn:aws:iam::123456789012:role/tenant-access",
			},
			wantErr: false,
			validate: func(t *testing.T, cfg *Config) {
				if cfg.TableName != "tenant-data" {
					t.Errorf("TableName = %q, want %q", cfg.TableName, "tenant-data")
				}
				if cfg.BucketName != "tenant-policies" {
					t.Errorf("BucketName = %q, want %q", cfg.BucketName, "tenant-policies")
				}
				if cfg.RoleARN != "arn:aws:iam::123456789012:role/tenant-access" {
					t.Errorf("RoleARN = %q, want role arn", cfg.RoleARN)
				}
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnvVars(t)
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg, err := Load()

			if tt.wantErr {
				if err == nil {
					t.Fatal("Load() error = nil, want error")
				}
				if tt.errContains != "" && !containsString(err.Error(), tt.errContains) {
					t.Errorf("Load() error = %q, want to contain %q", err.Error(), tt.errContains)
				}
				return
			}

			if err != nil {
				t.Fatalf("Load() unexpected error: %v", err)
			}

			if cfg == nil {
				t.Fatal("Load() returned nil config")
			}

			if tt.validate != nil {
				tt.validate(t, cfg)
			}
		})
	}
}

func TestLoad_AllTimeouts(t *testing.T) {
	clearConfigEnvVars(t)
	t.Setenv("SERVER_READ_TIMEOUT", "15s")
	t.Setenv("SERVER_WRITE_TIMEOUT", "20s")
	t.Setenv("SERVER_IDLE_TIMEOUT", "60s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.ReadTimeout != 15*time.Second {
		t.Errorf("ReadTimeout = %v, want %v", cfg.ReadTimeout, 15*time.Second)
	}
	if cfg.WriteTimeout != 20*time.Second {
		t.Errorf("WriteTimeout = %v, want %v", cfg.WriteTimeout, 20*time.Second)
	}
	if cfg.IdleTimeout != 60*time.Second {
		t.Errorf("IdleTimeout = %v, want %v", cfg.IdleTimeout, 60*time.Second)
	}
}

// clearConfigEnvVars clears all config-related environment variables so each
// subtest starts from a clean slate.
func clearConfigEnvVars(t *testing.T) {
	t.Helper()
	envVars := []string{
		"PORT",
		"SERVER_READ_TIMEOUT",
		"SERVER_WRITE_TIMEOUT",
		"SERVER_IDLE_TIMEOUT",
		"MAX_BODY_BYTES",
		"LOG_LEVEL",
		"IDP_REGION",
		"IDP_USER_POOL_ID",
		"IDP_CLIENT_ID",
		"JWKS_CACHE_TTL",
		"JWKS_CACHE_SIZE",
		"CLOCK_SKEW",
		"ROLE_ARN",
		"CREDENTIAL_TTL",
		"TABLE_NAME",
		"BUCKET_NAME",
		"AWS_REGION",
	}
	for _, env := range envVars {
		t.Setenv(env, "")
	}
}

// containsString checks if s contains substr.
func containsString(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
