package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadConfig(t *testing.T) {
	cfg, err := ReadConfig("testdata/config.json")
	require.NoError(t, err)

	assert.Equal(t, 9099, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "nats://localhost:4222", cfg.NATSURL)
	assert.Equal(t, "redis://localhost:6379/1", cfg.RedisURL)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, "test:history", cfg.CachePrefix)
	assert.Equal(t, 45*time.Second, cfg.CacheTTL)
}

func TestReadConfigMissingFile(t *testing.T) {
	_, err := ReadConfig("testdata/nope.json")
	assert.Error(t, err)
}
