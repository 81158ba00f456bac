package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const validYAML = `
port: "8080"
logLevel: "debug"
databaseURL: "postgres://localhost/app"
minioEndpoint: "localhost:9000"
minioAccessKey: "ak"
minioSecretKey: "sk"
minioBucket: "books"
authJwksURL: "http://localhost:8081/.well-known/jwks.json"
jwtLeeway: "45s"
maxUploadBytes: 1048576
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://localhost/app" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.MinioBucket != "books" {
		t.Errorf("MinioBucket = %q", cfg.MinioBucket)
	}
	if cfg.MaxUploadBytes != 1048576 {
		t.Errorf("MaxUploadBytes = %d", cfg.MaxUploadBytes)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://db.internal/app")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("READFLUENT_PROXY_RATE_LIMIT_PER_MINUTE", "10")
	t.Setenv("REDIS_ADDR", "redis.internal:6379")
	t.Setenv("READFLUENT_TRUSTED_PROXY_CIDRS", "10.0.0.0/8, 192.168.1.1")

	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DatabaseURL != "postgres://db.internal/app" {
		t.Errorf("DatabaseURL = %q, want env override", cfg.DatabaseURL)
	}
	if !cfg.MinioUseSSL {
		t.Error("MinioUseSSL = false, want env override")
	}
	if cfg.GeminiAPIKey != "env-key" {
		t.Errorf("GeminiAPIKey = %q", cfg.GeminiAPIKey)
	}
	if cfg.ProxyRateLimitPerMinute != 10 {
		t.Errorf("ProxyRateLimitPerMinute = %d", cfg.ProxyRateLimitPerMinute)
	}
	if len(cfg.TrustedProxyCIDRs) != 2 || cfg.TrustedProxyCIDRs[1] != "192.168.1.1" {
		t.Errorf("TrustedProxyCIDRs = %v", cfg.TrustedProxyCIDRs)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing port", `
databaseURL: "postgres://localhost/app"
minioEndpoint: "localhost:9000"
minioBucket: "books"
authJwksURL: "http://localhost/jwks"
`},
		{"missing database", `
port: "8080"
minioEndpoint: "localhost:9000"
minioBucket: "books"
authJwksURL: "http://localhost/jwks"
`},
		{"missing bucket", `
port: "8080"
databaseURL: "postgres://localhost/app"
minioEndpoint: "localhost:9000"
authJwksURL: "http://localhost/jwks"
`},
		{"missing jwks url", `
port: "8080"
databaseURL: "postgres://localhost/app"
minioEndpoint: "localhost:9000"
minioBucket: "books"
`},
		{"rate limit without redis", `
port: "8080"
databaseURL: "postgres://localhost/app"
minioEndpoint: "localhost:9000"
minioBucket: "books"
authJwksURL: "http://localhost/jwks"
proxyRateLimitPerMinute: 5
`},
		{"speech key without region", `
port: "8080"
databaseURL: "postgres://localhost/app"
minioEndpoint: "localhost:9000"
minioBucket: "books"
authJwksURL: "http://localhost/jwks"
speechSubscriptionKey: "sk"
`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tc.yaml)); err == nil {
				t.Error("Load() succeeded, want validation error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load() on missing file succeeded, want error")
	}
}

func TestParseJWTLeeway(t *testing.T) {
	if d, err := ParseJWTLeeway(""); err != nil || d != 0 {
		t.Errorf("ParseJWTLeeway(\"\") = %v, %v", d, err)
	}
	if d, err := ParseJWTLeeway("45s"); err != nil || d != 45*time.Second {
		t.Errorf("ParseJWTLeeway(\"45s\") = %v, %v", d, err)
	}
	if _, err := ParseJWTLeeway("soon"); err == nil {
		t.Error("ParseJWTLeeway(\"soon\") succeeded, want error")
	}
}
