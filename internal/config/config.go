package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	DefaultEnvironment     = "dev"
	defaultLogLevel        = "info"
	defaultAppEnv          = "production"
	defaultMode            = ModeAuto
	defaultPort            = "8080"
	defaultShutdownTimeout = 10 * time.Second
)

// Runtime modes.
const (
	ModeAuto   = "auto"
	ModeLambda = "lambda"
	ModeHTTP   = "http"
)

// Config holds runtime configuration resolved from environment variables.
type Config struct {
	Environment     string        `validate:"required"`
	LogLevel        string        `validate:"oneof=debug info warn error"`
	AppEnv          string        `validate:"required"`
	Mode            string        `validate:"oneof=auto lambda http"`
	Port            string        `validate:"required,numeric"`
	ShutdownTimeout time.Duration `validate:"gt=0"`

	// LambdaRuntimeAPI is set by the Lambda execution environment.
	LambdaRuntimeAPI string
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads an optional .env file, then resolves and validates the
// configuration. Variables already present in the process win over .env.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	cfg := Config{
		Environment:      Environment(),
		LogLevel:         strings.ToLower(getenv("LOG_LEVEL", defaultLogLevel)),
		AppEnv:           getenv("APP_ENV", defaultAppEnv),
		Mode:             strings.ToLower(getenv("GREETER_MODE", defaultMode)),
		Port:             getenv("PORT", defaultPort),
		ShutdownTimeout:  defaultShutdownTimeout,
		LambdaRuntimeAPI: strings.TrimSpace(os.Getenv("AWS_LAMBDA_RUNTIME_API")),
	}

	if raw := strings.TrimSpace(os.Getenv("SHUTDOWN_TIMEOUT")); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SHUTDOWN_TIMEOUT %q: %w", raw, err)
		}
		cfg.ShutdownTimeout = d
	}

	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Environment returns the deployment environment name reported in
// responses, falling back to "dev" when ENVIRONMENT is unset or empty.
func Environment() string {
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		return v
	}
	return DefaultEnvironment
}

// UseLambda reports whether the process should hand control to the Lambda
// runtime instead of serving HTTP itself.
func (c Config) UseLambda() bool {
	switch c.Mode {
	case ModeLambda:
		return true
	case ModeHTTP:
		return false
	default:
		return c.LambdaRuntimeAPI != ""
	}
}

// Addr is the listen address for http mode.
func (c Config) Addr() string {
	return ":" + c.Port
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
