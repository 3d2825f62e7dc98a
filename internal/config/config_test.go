package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := NewConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", cfg.ServerAddress)
	assert.Equal(t, "localhost:3200", cfg.GRPCAddress)
	assert.Equal(t, ModeMemory, cfg.Mode)
	assert.Equal(t, "static", cfg.S3Bucket)
	assert.Equal(t, time.Hour, cfg.S3LinkTTL)
	assert.True(t, cfg.ShelvesEmptyNotFound)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.False(t, cfg.ObjectStoreEnabled())
}

func TestNewConfig_EnvAndFlags(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SERVER_ADDRESS", "0.0.0.0:9000")
	t.Setenv("DATABASE_DSN", "postgres://env")
	t.Setenv("SHELVES_EMPTY_NOT_FOUND", "false")
	t.Setenv("CORS_ORIGINS", "http://a.example, http://b.example")
	t.Setenv("S3_LINK_TTL", "15m")

	cfg, err := NewConfig([]string{"-a", "127.0.0.1:7000", "-l", "debug"})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:7000", cfg.ServerAddress)
	assert.Equal(t, "postgres://env", cfg.DatabaseDSN)
	assert.Equal(t, ModeDatabase, cfg.Mode)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.ShelvesEmptyNotFound)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 15*time.Minute, cfg.S3LinkTTL)
}

func TestNewConfig_JSONBelowEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "config.json")
	data := `{"server_address":"json:1","grpc_address":"json:2","s3_bucket":"avatars"}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	t.Setenv("GRPC_ADDRESS", "env:2")

	cfg, err := NewConfig([]string{"-config", path})
	require.NoError(t, err)

	assert.Equal(t, "json:1", cfg.ServerAddress)
	assert.Equal(t, "env:2", cfg.GRPCAddress)
	assert.Equal(t, "avatars", cfg.S3Bucket)
}

func TestNewConfig_MissingJSON(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := NewConfig([]string{"-c", "/nonexistent/config.json"})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"empty address", func(c *Config) { c.ServerAddress = "" }, true},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, true},
		{"https without cert", func(c *Config) { c.EnableHTTPS = true; c.TLSCertPath = "" }, true},
		{"s3 without keys", func(c *Config) { c.S3Endpoint = "http://minio:9000" }, true},
		{"negative rps", func(c *Config) { c.RateLimitRPS = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				ServerAddress: "localhost:8080",
				LogLevel:      "info",
				S3Bucket:      "static",
				TLSCertPath:   "cert.pem",
				TLSKeyPath:    "key.pem",
			}
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
