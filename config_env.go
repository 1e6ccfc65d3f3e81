package hrportal

import (
	"fmt"

	"github.com/caarlos0/env/v9"
)

// EnvPrefix prefixes every environment variable read by ConfigFromEnv.
const EnvPrefix = "HRPORTAL_"

// ConfigFromEnv overlays HRPORTAL_* environment variables on DefaultConfig.
//
// For example HRPORTAL_API_BASE_URL sets API.BaseURL and
// HRPORTAL_GATEWAY_REFRESH_COORDINATION=shared selects CoordinateShared.
// Unset variables keep their defaults. The result is validated.
func ConfigFromEnv() (Config, error) {
	return configFromEnvironment(nil)
}

// ConfigFromMap is ConfigFromEnv reading from environ instead of the process
// environment.
func ConfigFromMap(environ map[string]string) (Config, error) {
	if environ == nil {
		environ = map[string]string{}
	}
	return configFromEnvironment(environ)
}

func configFromEnvironment(environ map[string]string) (Config, error) {
	cfg := DefaultConfig()
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
