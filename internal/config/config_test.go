package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, StorageDriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, 5*time.Second, cfg.Order.LockTimeout)
	assert.Equal(t, 6, cfg.Order.IDLength)
	assert.Equal(t, int64(10000), cfg.Loyalty.BonusUnit)
	assert.Equal(t, int64(500), cfg.Loyalty.Tier1Min)
	assert.Equal(t, int64(1000), cfg.Loyalty.Tier1Max)
	assert.Equal(t, int64(1500), cfg.Loyalty.Tier2Max)
	assert.Equal(t, 24*time.Hour, cfg.Cart.GuestTTL)
	assert.Equal(t, []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}, cfg.Security.CORSAllowedMethods)
	assert.NoError(t, cfg.Validate())
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("ORDER_LOCK_TIMEOUT", "250ms")
	t.Setenv("LOYALTY_BONUS_UNIT", "500")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://shop.example.com,https://admin.example.com")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, StorageDriverMemory, cfg.Storage.Driver)
	assert.Equal(t, 250*time.Millisecond, cfg.Order.LockTimeout)
	assert.Equal(t, int64(500), cfg.Loyalty.BonusUnit)
	assert.Equal(t, []string{"https://shop.example.com", "https://admin.example.com"}, cfg.Security.CORSAllowedOrigins)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(c *Config) {},
		},
		{
			name:    "short jwt secret",
			mutate:  func(c *Config) { c.JWT.Secret = "short" },
			wantErr: "JWT_SECRET",
		},
		{
			name:    "unknown storage driver",
			mutate:  func(c *Config) { c.Storage.Driver = "mongo" },
			wantErr: "STORAGE_DRIVER",
		},
		{
			name: "memory driver skips database settings",
			mutate: func(c *Config) {
				c.Storage.Driver = StorageDriverMemory
				c.Database.Host = ""
				c.Redis.Host = ""
			},
		},
		{
			name:    "postgres driver needs db host",
			mutate:  func(c *Config) { c.Database.Host = "" },
			wantErr: "DB_HOST",
		},
		{
			name:    "non-positive lock timeout",
			mutate:  func(c *Config) { c.Order.LockTimeout = 0 },
			wantErr: "ORDER_LOCK_TIMEOUT",
		},
		{
			name:    "order id too short",
			mutate:  func(c *Config) { c.Order.IDLength = 4 },
			wantErr: "ORDER_ID_LENGTH",
		},
		{
			name:    "overlapping tiers",
			mutate:  func(c *Config) { c.Loyalty.Tier1Max = 1500 },
			wantErr: "loyalty tiers",
		},
		{
			name:    "zero currency per point",
			mutate:  func(c *Config) { c.Loyalty.CurrencyPerPoint = 0 },
			wantErr: "LOYALTY_CURRENCY_PER_POINT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse()
			require.NoError(t, err)

			tt.mutate(cfg)
			err = cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
