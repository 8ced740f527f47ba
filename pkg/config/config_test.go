package config_test

import (
	"testing"
	"time"

	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	t.Setenv("APP_ENV", "development")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.False(t, cfg.Inventory.RestockOnCancel)
	assert.Equal(t, "0 3 * * *", cfg.Inventory.ReconcileCron)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.False(t, cfg.DB.Migrate)
}

func TestLoad_LeeVariablesDeInventario(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("INVENTORY_RESTOCK_ON_CANCEL", "true")
	t.Setenv("RECONCILE_CRON", "*/15 * * * *")
	t.Setenv("DB_MIGRATE", "1")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.True(t, cfg.Inventory.RestockOnCancel)
	assert.Equal(t, "*/15 * * * *", cfg.Inventory.ReconcileCron)
	assert.True(t, cfg.DB.Migrate)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
}

func TestLoad_VerificacionJWT(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("JWT_ISSUER", "identidad.example")
	t.Setenv("JWT_LEEWAY_SECONDS", "5")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "s3cr3t", cfg.JWT.Secret)
	assert.Equal(t, "identidad.example", cfg.JWT.Issuer)
	assert.Equal(t, 5*time.Second, cfg.JWT.Leeway)
}

func TestLoad_ProductionExigeSecreto(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_MigrateURLUsaEsquemaPgx5(t *testing.T) {
	db := config.DBConfig{DatabaseURL: "postgres://u:p@localhost:5432/inv?sslmode=disable"}
	assert.Equal(t, "pgx5://u:p@localhost:5432/inv?sslmode=disable", db.MigrateURL())

	db = config.DBConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "inv", SSLMode: "disable"}
	assert.Equal(t, "pgx5://u:p@db:5432/inv?sslmode=disable", db.MigrateURL())
}
