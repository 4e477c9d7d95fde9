package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.Equal(t, "gatetrack-backend", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, []int{40, 60, 80, 120}, cfg.Audit.BinCapacities)
	assert.Equal(t, 120, cfg.Audit.DefaultBinCapacity)
	assert.Equal(t, 30*time.Second, cfg.Views.CacheTTL)
	assert.Empty(t, cfg.HTTP.CORSAllowOrigins)
	assert.Contains(t, cfg.HTTP.CORSAllowHeaders, "X-User-Name")
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		applyDefaults(cfg)
		return cfg
	}

	t.Run("defaults are valid", func(t *testing.T) {
		require.NoError(t, base().validate())
	})

	t.Run("idle conns cannot exceed open conns", func(t *testing.T) {
		cfg := base()
		cfg.Database.MaxIdleConns = 100
		assert.Error(t, cfg.validate())
	})

	t.Run("bin capacities must be positive", func(t *testing.T) {
		cfg := base()
		cfg.Audit.BinCapacities = []int{40, -60}
		assert.Error(t, cfg.validate())
	})

	t.Run("default capacity must be in the whitelist", func(t *testing.T) {
		cfg := base()
		cfg.Audit.DefaultBinCapacity = 77
		assert.Error(t, cfg.validate())
	})

	t.Run("storage needs a bucket when enabled", func(t *testing.T) {
		cfg := base()
		cfg.Storage.Enabled = true
		assert.Error(t, cfg.validate())
		cfg.Storage.Bucket = "gatetrack-uploads"
		assert.NoError(t, cfg.validate())
	})

	t.Run("production rejects wildcard CORS and empty password", func(t *testing.T) {
		cfg := base()
		cfg.App.Env = "production"
		cfg.Database.Password = "secret"
		cfg.Database.SSLMode = "require"
		require.NoError(t, cfg.validate())

		cfg.HTTP.CORSAllowOrigins = []string{"*"}
		assert.Error(t, cfg.validate())

		cfg.HTTP.CORSAllowOrigins = nil
		cfg.Database.Password = ""
		assert.Error(t, cfg.validate())
	})

	t.Run("sampling ratio bounds", func(t *testing.T) {
		cfg := base()
		cfg.Telemetry.SamplingRatio = 1.5
		assert.Error(t, cfg.validate())
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "db.internal",
		Port:     5432,
		User:     "gatetrack",
		Password: "p@ss/word",
		DBName:   "gatetrack",
		SSLMode:  "require",
	}

	dsn := d.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "db.internal:5432")
	assert.Contains(t, dsn, "sslmode=require")
	assert.NotContains(t, dsn, "p@ss/word") // escaped
}

func TestRedisConfig_Addr(t *testing.T) {
	r := RedisConfig{Host: "cache.internal", Port: 6380}
	assert.Equal(t, "cache.internal:6380", r.Addr())
}
