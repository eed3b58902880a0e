// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Finkeeper Authors

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// parseEnv fills cfg from the process environment. The variable names come
// from the `env` and `envPrefix` tags on [StructuredConfig] and its nested
// sections; an unset variable leaves the field at its zero value for a
// later source to fill.
func parseEnv(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse environment config: %w", err)
	}
	return nil
}
