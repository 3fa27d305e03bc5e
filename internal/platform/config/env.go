package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ParseEnv loads installer configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse installer env: %w", err)
	}
	return nil
}
