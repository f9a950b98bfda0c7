package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crawlctl/coordinator/internal/config"
)

func TestLoadFailsForMissingExplicitConfigFile(t *testing.T) {
	t.Setenv("REDIS_ADDRESS", "")
	t.Setenv("AUTH_ENABLED", "")

	cfg, err := config.Load("/nonexistent/path/config.yaml")
	require.Error(t, err)
	_ = cfg
}

func TestLoadAppliesDefaultsWithMissingDefaultFile(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, config.DefaultServerAddress, cfg.Server.Address)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address)
	assert.Equal(t, "crawl-pages", cfg.Elasticsearch.Index)
	assert.False(t, cfg.Auth.Enabled)
}

func TestLoadReadsEnvOverride(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", ":9090")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
}
