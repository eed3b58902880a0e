// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Finkeeper Authors

package config

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup.
//
// Server-side requirements are deliberately loose: a client process builds
// the same structured config and has no use for a server address or a
// database DSN. Hard requirements live in the role-specific views
// ([ClientConfig.validate] and the server startup path).
func (cfg *StructuredConfig) validate() error {
	return nil
}

func (cfg *ClientConfig) validate() error {
	if cfg.Storage.DB.Path == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Adapter.HTTPAddress == "" || cfg.Adapter.RequestTimeout == 0 {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Sync.LedgerID == "" || cfg.Sync.LeaseTTL == 0 {
		return ErrInvalidSyncConfigs
	}

	if cfg.Workers.SyncInterval == 0 {
		return ErrInvalidWorkerConfigs
	}

	if cfg.App.TokenSignKey == "" {
		return ErrInvalidAppConfigs
	}

	return nil
}
