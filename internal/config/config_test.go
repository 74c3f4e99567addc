package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/epitrello")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "")
	t.Setenv("JWT_TTL", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("AUDIT_BUFFER", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 256, cfg.AuditBuffer)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/epitrello")
	t.Setenv("JWT_SECRET", "secret")

	t.Setenv("JWT_TTL", "soon")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("JWT_TTL", "1h")
	t.Setenv("DB_DRIVER", "mysql")
	_, err = Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{Port: "3000", DatabaseURL: "x", DatabaseDriver: "sqlite", JWTSecret: "s", JWTTTL: time.Hour, AuditBuffer: 1}
	require.NoError(t, valid.Validate())

	missingSecret := valid
	missingSecret.JWTSecret = ""
	assert.Error(t, missingSecret.Validate())

	missingDB := valid
	missingDB.DatabaseURL = ""
	assert.Error(t, missingDB.Validate())
}

func TestConnectDB_SQLite(t *testing.T) {
	cfg := &Config{DatabaseURL: "file::memory:", DatabaseDriver: "sqlite", Environment: "test"}
	require.NoError(t, ConnectDB(cfg))
	t.Cleanup(func() { _ = CloseDB() })

	require.NoError(t, MigrateAllModels(true))
	assert.True(t, DB.Migrator().HasTable("boards"))
	assert.True(t, DB.Migrator().HasTable("audit_logs"))
}
