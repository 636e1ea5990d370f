package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SYSTEM_ACTOR_ID", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("LOCK_BACKEND", "")
	t.Setenv("DELETION_SAMPLE_SIZE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "system", cfg.App.SystemActorID)
	assert.Equal(t, "redis", cfg.Lock.Backend)
	assert.Equal(t, 5, cfg.Deletion.SampleSize)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, 30*time.Second, cfg.Lock.TTL())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SYSTEM_ACTOR_ID", "automation")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("LOCK_BACKEND", "LOCAL")
	t.Setenv("LOCK_WAIT_MS", "250")
	t.Setenv("APP_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "automation", cfg.App.SystemActorID)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "local", cfg.Lock.Backend)
	assert.Equal(t, 250*time.Millisecond, cfg.Lock.Wait())
	assert.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
}

func TestLoadRejectsBadRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "one")
	_, err := Load()
	assert.Error(t, err)
}
