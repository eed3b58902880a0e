package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigBuilder_MergesSourcesInPriorityOrder(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs,
		&StructuredConfig{
			App:  App{TokenSignKey: "from-env"},
			Sync: Sync{LedgerID: "family-ledger"},
		},
		&StructuredConfig{
			App:     App{TokenSignKey: "from-json", TokenDuration: time.Hour},
			Workers: Workers{SyncInterval: time.Minute},
		},
	)

	cfg, err := b.build()
	require.NoError(t, err)

	// An earlier source keeps its non-zero values; later sources only fill
	// the gaps.
	assert.Equal(t, "from-env", cfg.App.TokenSignKey)
	assert.Equal(t, time.Hour, cfg.App.TokenDuration)
	assert.Equal(t, "family-ledger", cfg.Sync.LedgerID)
	assert.Equal(t, time.Minute, cfg.Workers.SyncInterval)
}

func TestConfigBuilder_PropagatesSourceError(t *testing.T) {
	b := newConfigBuilder()
	b.err = errors.New("bad source")

	_, err := b.build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error occured during building config")
}

func TestConfigBuilder_WithJSONResolvesPathFromEarlierSources(t *testing.T) {
	path := writeConfigFile(t, `{"sync": {"ledger_id": "family-ledger"}}`)

	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{JSONFilePath: path})

	cfg, err := b.withJSON().build()
	require.NoError(t, err)
	assert.Equal(t, "family-ledger", cfg.Sync.LedgerID)
}

func TestConfigBuilder_WithJSONMissingFileFailsBuild(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{JSONFilePath: "/nonexistent/config.json"})

	_, err := b.withJSON().build()
	assert.Error(t, err)
}
