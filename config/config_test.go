package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s3cr3t")
		t.Setenv("TABLE_NAME", "productos")

		cfg := FromEnv()

		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, StoreDynamo, cfg.StoreDriver)
		assert.Equal(t, "productos", cfg.TableName)
		assert.Equal(t, 20, cfg.DefaultPageLimit)
		assert.Equal(t, 100, cfg.MaxPageLimit)
		assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
		assert.False(t, cfg.ConsistentRead)
		require.NoError(t, cfg.Validate())
	})

	t.Run("typed overrides and bad values fall back", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s3cr3t")
		t.Setenv("STORE_DRIVER", "MEMORY")
		t.Setenv("CACHE_TAXONOMY_TTL", "2m")
		t.Setenv("DYNAMODB_CONSISTENT_READ", "true")
		t.Setenv("RATE_LIMIT_BURST", "not-a-number")
		t.Setenv("RATE_LIMIT_RPS", "-3")

		cfg := FromEnv()

		assert.Equal(t, StoreMemory, cfg.StoreDriver)
		assert.Equal(t, 2*time.Minute, cfg.CacheTaxonomyTTL)
		assert.True(t, cfg.ConsistentRead)
		assert.Equal(t, 100, cfg.RateLimitBurst)
		assert.Equal(t, float64(50), cfg.RateLimitRPS)
		require.NoError(t, cfg.Validate())
	})
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			StoreDriver:      StoreDynamo,
			TableName:        "productos",
			JWTSecret:        "s3cr3t",
			DefaultPageLimit: 20,
			MaxPageLimit:     100,
		}
	}

	t.Run("missing secret", func(t *testing.T) {
		cfg := base()
		cfg.JWTSecret = ""
		err := cfg.Validate()
		assert.True(t, errors.Is(err, ErrMissingConfig))
	})

	t.Run("missing table for dynamodb", func(t *testing.T) {
		cfg := base()
		cfg.TableName = ""
		err := cfg.Validate()
		assert.True(t, errors.Is(err, ErrMissingConfig))
	})

	t.Run("memory store needs no table", func(t *testing.T) {
		cfg := base()
		cfg.StoreDriver = StoreMemory
		cfg.TableName = ""
		assert.NoError(t, cfg.Validate())
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := base()
		cfg.StoreDriver = "postgres"
		assert.Error(t, cfg.Validate())
	})

	t.Run("max below default", func(t *testing.T) {
		cfg := base()
		cfg.MaxPageLimit = 5
		assert.Error(t, cfg.Validate())
	})
}
