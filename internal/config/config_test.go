package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
[server]
http_port = 8085

[database]
host = "localhost"
user = "booking"
password = "from-file"
dbname = "booking"

[session]
draft_ttl_minutes = 45

[kafka]
enabled = true
brokers = ["kafka:9092"]
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, 8085, cfg.Server.HTTPPort)
	assert.Equal(t, 45, cfg.Session.DraftTTLMinutes)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "booking:session:", cfg.Session.KeyPrefix)
	assert.Equal(t, 14, cfg.Booking.HorizonDays)
	assert.Equal(t, []string{"kafka:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "host=localhost port=5432 user=booking password=from-file dbname=booking sslmode=disable", cfg.Database.DSN())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvDBPassword, "secret")
	t.Setenv(EnvKafkaBrokers, "k1:9092, k2:9092,")

	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.Database.Password)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load(writeConfig(t, "[kafka]\nenabled = true\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
