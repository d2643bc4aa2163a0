package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("AUTH_JWT_SECRET", "super-secret-value")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 8*time.Hour, cfg.Auth.Jwt.Expiry)
	assert.Equal(t, 25, cfg.DB.MaxOpenConns)
	assert.True(t, cfg.DB.AutoMigrate)
	assert.Equal(t, DefaultRoles(), cfg.Roles)
	assert.Equal(t, DefaultLedger(), cfg.Ledger)
	assert.Equal(t, "memory", cfg.EventBus.Driver)
	assert.Equal(t, "brokerage:ledger", cfg.EventBus.Redis.Stream)
	assert.Equal(t, []string{"localhost:9092"}, cfg.EventBus.Kafka.Brokers)
	assert.Equal(t, "http://localhost:3000", cfg.Cors.Origins())
}

func TestLoad_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("AUTH_JWT_SECRET", "super-secret-value")
	t.Setenv("AUTH_JWT_EXPIRY", "30m")
	t.Setenv("ROLES_SYSTEM_STAFF_ID", "7")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("EVENT_BUS_DRIVER", "kafka")
	t.Setenv("EVENT_BUS_KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, cfg.Auth.Jwt.Expiry)
	assert.Equal(t, int64(7), cfg.Roles.SystemStaffID)
	assert.Equal(t, "https://a.example,https://b.example", cfg.Cors.Origins())
	assert.Equal(t, "kafka", cfg.EventBus.Driver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.EventBus.Kafka.Brokers)
}

func TestLoad_FromEnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.test"),
		[]byte("AUTH_JWT_SECRET=file-secret-value\nSERVER_PORT=9100\n"), 0o600))
	t.Chdir(dir)
	// godotenv never overrides variables that are already set.
	t.Setenv("AUTH_JWT_SECRET", "")
	require.NoError(t, os.Unsetenv("AUTH_JWT_SECRET"))
	t.Setenv("SERVER_PORT", "")
	require.NoError(t, os.Unsetenv("SERVER_PORT"))

	cfg, err := Load(".env.missing", ".env.test")
	require.NoError(t, err)
	assert.Equal(t, "file-secret-value", cfg.Auth.Jwt.Secret)
	assert.Equal(t, 9100, cfg.Server.Port)
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("AUTH_JWT_SECRET", "")
	require.NoError(t, os.Unsetenv("AUTH_JWT_SECRET"))

	_, err := Load()
	assert.Error(t, err)
}

func TestRoles(t *testing.T) {
	r := DefaultRoles()
	assert.ElementsMatch(t, []int64{1, 2, 3, 4}, r.RightsLevels())
	assert.ElementsMatch(t, []int64{1, 2}, r.AdminLevels())
	assert.ElementsMatch(t, []int64{1, 2, 3}, r.BrokerLevels())
	assert.Equal(t, []int64{4}, r.VerifierLevels())
	assert.True(t, r.IsRightsLevel(3))
	assert.False(t, r.IsRightsLevel(5))
}

func TestMaskValue(t *testing.T) {
	assert.Equal(t, "****", maskValue("short"))
	assert.Equal(t, "po****5432", maskValue("postgres://localhost:5432"))
}
