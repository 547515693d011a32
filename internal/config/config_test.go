package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReadsEnvWithPrefix(t *testing.T) {
	t.Setenv("CAPSULE_HTTP_PORT", "9090")
	t.Setenv("CAPSULE_BUILD_TARGET", "local")
	t.Setenv("CAPSULE_UPLOAD_DIR", "/tmp/capsule-uploads")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "/tmp/capsule-uploads", cfg.UploadDir)
	assert.Equal(t, ":9090", cfg.GetHTTPAddr())
}

func TestResolveDefaults_LocalDerivesSQLite(t *testing.T) {
	cfg := &Config{BuildTarget: "local", DBDriver: "auto"}
	require.NoError(t, cfg.ResolveDefaults())
	assert.Equal(t, "sqlite", cfg.DBDriver)
}

func TestResolveDefaults_CloudRequiresDSN(t *testing.T) {
	cfg := &Config{BuildTarget: "cloud", DBDriver: "auto"}
	err := cfg.ResolveDefaults()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CAPSULE_POSTGRES_DSN")

	cfg.PostgresDSN = "postgres://localhost:5432/capsule"
	require.NoError(t, cfg.ResolveDefaults())
	assert.Equal(t, "postgres", cfg.DBDriver)
}

func TestResolveDefaults_ExplicitDriverOverridesTarget(t *testing.T) {
	cfg := &Config{BuildTarget: "cloud", DBDriver: "sqlite"}
	require.NoError(t, cfg.ResolveDefaults())
	assert.Equal(t, "sqlite", cfg.DBDriver)
}

func TestResolveDefaults_RejectsUnknownValues(t *testing.T) {
	cfg := &Config{BuildTarget: "orbital"}
	assert.Error(t, cfg.ResolveDefaults())

	cfg = &Config{BuildTarget: "local", DBDriver: "mongodb"}
	assert.Error(t, cfg.ResolveDefaults())
}

func TestResolveDefaults_ProductionNeedsJWTSecret(t *testing.T) {
	cfg := &Config{BuildTarget: "local", DBDriver: "sqlite", Environment: EnvProduction}
	err := cfg.ResolveDefaults()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CAPSULE_JWT_SECRET")

	cfg.JWTSecret = "s3cret"
	assert.NoError(t, cfg.ResolveDefaults())
}

func TestNewForTesting(t *testing.T) {
	cfg := NewForTesting()
	assert.True(t, cfg.IsTesting())
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, ":memory:", cfg.SQLitePath)
}
