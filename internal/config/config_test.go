package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"ENVIRONMENT", "LOG_LEVEL", "APP_ENV", "GREETER_MODE", "PORT",
	"SHUTDOWN_TIMEOUT", "AWS_LAMBDA_RUNTIME_API",
}

// clearEnv unsets every key Load reads and restores the originals afterwards.
// godotenv never overrides a variable that is present, even when empty, so
// t.Setenv(key, "") is not enough here.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		require.NoError(t, os.Unsetenv(key))
	}
}

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "production", cfg.AppEnv)
	assert.Equal(t, ModeAuto, cfg.Mode)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.UseLambda())
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENVIRONMENT", "prod")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("GREETER_MODE", "http")
	t.Setenv("PORT", "9000")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")

	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Environment)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ModeHTTP, cfg.Mode)
	assert.Equal(t, ":9000", cfg.Addr())
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_DotEnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "7000")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("ENVIRONMENT=staging\nPORT=1234\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "7000", cfg.Port, "process environment should win over .env")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unknown mode", "GREETER_MODE", "kubernetes"},
		{"non numeric port", "PORT", "http"},
		{"unknown log level", "LOG_LEVEL", "verbose"},
		{"bad shutdown timeout", "SHUTDOWN_TIMEOUT", "soon"},
		{"negative shutdown timeout", "SHUTDOWN_TIMEOUT", "-1s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load(missingEnvFile(t))
			assert.Error(t, err)
		})
	}
}

func TestConfig_UseLambda(t *testing.T) {
	tests := []struct {
		mode      string
		runtime   string
		useLambda bool
	}{
		{ModeAuto, "", false},
		{ModeAuto, "127.0.0.1:9001", true},
		{ModeLambda, "", true},
		{ModeHTTP, "127.0.0.1:9001", false},
	}

	for _, tt := range tests {
		cfg := Config{Mode: tt.mode, LambdaRuntimeAPI: tt.runtime}
		assert.Equal(t, tt.useLambda, cfg.UseLambda(), "mode=%s runtime=%q", tt.mode, tt.runtime)
	}
}

func TestEnvironment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	assert.Equal(t, "dev", Environment())

	t.Setenv("ENVIRONMENT", "prod")
	assert.Equal(t, "prod", Environment())
}
