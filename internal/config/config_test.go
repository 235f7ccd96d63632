package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Port)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, 10, cfg.DefaultPageSize)
	assert.Equal(t, 5432, cfg.DBConfig.Port)
	assert.False(t, cfg.KafkaConfig.Enabled())
	assert.Equal(t, "shareit.booking.events", cfg.KafkaConfig.Topic)
}

func TestLoad_FromEnvironment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SHAREIT_SERVICE_PORT", "9090")
	t.Setenv("SHAREIT_APP_ENV", "production")
	t.Setenv("SHAREIT_DB_HOST", "db.internal")
	t.Setenv("SHAREIT_DB_PORT", "6543")
	t.Setenv("SHAREIT_KAFKA_BROKERS", "k1:9092, k2:9092,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Port)
	assert.Equal(t, "production", cfg.AppEnv)
	assert.Equal(t, "db.internal", cfg.DBConfig.Host)
	assert.Equal(t, 6543, cfg.DBConfig.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaConfig.Brokers)
}

func TestLoad_RejectsNonPositivePageSize(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SHAREIT_PAGE_DEFAULT_SIZE", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestDatabaseConfig_URL(t *testing.T) {
	c := DatabaseConfig{Host: "h", Port: 5432, User: "u", Password: "p@ss", DBName: "shareit", SSLMode: "disable"}

	assert.Equal(t, "postgres://u:p%40ss@h:5432/shareit?sslmode=disable", c.URL())
	assert.Equal(t, "host=h port=5432 user=u password=p@ss dbname=shareit sslmode=disable", c.DSN())
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
