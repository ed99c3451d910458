package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"ADDR", "STORE", "DATABASE_URL", "SQLITE_PATH", "LOG_MODE", "RECONCILE_MAX_RETRIES", "RECONCILE_WORKERS", "CORS_ORIGINS", "SEED_FILE"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, "wellness.db", cfg.SQLitePath)
	assert.Equal(t, 3, cfg.ReconcileMaxRetries)
	assert.Equal(t, 4, cfg.ReconcileWorkers)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ADDR", ":9090")
	t.Setenv("STORE", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/wellness")
	t.Setenv("RECONCILE_MAX_RETRIES", "5")
	t.Setenv("RECONCILE_WORKERS", "not-a-number")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, StorePostgres, cfg.Store)
	assert.Equal(t, 5, cfg.ReconcileMaxRetries)
	assert.Equal(t, 4, cfg.ReconcileWorkers)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoadRejectsBadStore(t *testing.T) {
	t.Setenv("STORE", "postgres")
	t.Setenv("DATABASE_URL", "")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("STORE", "mongo")
	_, err = Load()
	assert.Error(t, err)
}
