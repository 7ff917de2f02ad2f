package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds process settings that never live in the workspace file.
type Env struct {
	JWTSecret       string `env:"PROJECTOR_JWT_SECRET"`
	DBDriver        string `env:"PROJECTOR_DB_DRIVER" envDefault:"sqlite"`
	DatabaseURL     string `env:"PROJECTOR_DATABASE_URL"`
	AdminEmployeeID string `env:"PROJECTOR_ADMIN_EMPLOYEE_ID" envDefault:"admin"`
	AdminPassword   string `env:"PROJECTOR_ADMIN_PASSWORD"`
	LogLevel        string `env:"PROJECTOR_LOG_LEVEL" envDefault:"info"`
	Environment     string `env:"PROJECTOR_ENV" envDefault:"development"`
	OTelEndpoint    string `env:"PROJECTOR_OTEL_ENDPOINT"`
	MetricsPrefix   string `env:"PROJECTOR_METRICS_PREFIX" envDefault:"projector"`
}

// ParseEnv reads Env from the process environment.
func ParseEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	switch e.DBDriver {
	case "sqlite", "postgres":
	default:
		return Env{}, fmt.Errorf("parse env: PROJECTOR_DB_DRIVER must be sqlite or postgres, got %q", e.DBDriver)
	}
	if e.DBDriver == "postgres" && e.DatabaseURL == "" {
		return Env{}, fmt.Errorf("parse env: PROJECTOR_DATABASE_URL is required for postgres")
	}
	return e, nil
}
