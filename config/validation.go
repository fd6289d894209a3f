package config

import (
	"fmt"
	"strings"
)

// ValidateConfig checks that required settings are present before the
// server starts. Production is stricter: the session secret and admin
// credential pair must be set, and neither may be a known default.
func ValidateConfig(cfg *Config, env Environment) error {
	var missing []string

	if cfg.ServerPort == "" {
		missing = append(missing, "SERVER_PORT")
	}
	if cfg.DBHost == "" {
		missing = append(missing, "DB_HOST")
	}
	if cfg.DBName == "" {
		missing = append(missing, "DB_NAME")
	}

	if env == Production {
		if cfg.JWTSecret == "" {
			missing = append(missing, "JWT_SECRET")
		}
		if cfg.AdminEmail == "" {
			missing = append(missing, "ADMIN_EMAIL")
		}
		if cfg.AdminPassword == "" {
			missing = append(missing, "ADMIN_PASSWORD")
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if env == Production && cfg.AdminPassword == "admin123" {
		return fmt.Errorf("ADMIN_PASSWORD must not use the default value in production")
	}
	return nil
}
