package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, name := range []string{
		"SERVICE_NAME", "HTTP_PORT", "KAFKA_BROKERS", "VOTER_TOKEN_SECRET", "RIGHT_TO_VOTE_SECRET",
		"VOTER_TOKEN_TTL", "RIGHT_TO_VOTE_TTL", "TOKEN_SWEEP_INTERVAL", "UNRANKED_POLICY",
		"RESULT_CACHE_SIZE", "AUTO_MIGRATE",
	} {
		t.Setenv(name, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "liquido", cfg.ServiceName)
	require.Equal(t, "8080", cfg.HTTPPort)
	require.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	require.True(t, cfg.DevSecrets)
	require.Equal(t, time.Hour, cfg.VoterTokenTTL)
	require.Equal(t, 8760*time.Hour, cfg.RightToVoteTTL)
	require.Equal(t, time.Minute, cfg.TokenSweepInterval)
	require.Equal(t, "ignore", cfg.UnrankedPolicy)
	require.Equal(t, 256, cfg.ResultCacheSize)
	require.False(t, cfg.AutoMigrate)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("VOTER_TOKEN_SECRET", "token-secret")
	t.Setenv("RIGHT_TO_VOTE_SECRET", "rtv-secret")
	t.Setenv("VOTER_TOKEN_TTL", "15m")
	t.Setenv("UNRANKED_POLICY", "LAST")
	t.Setenv("AUTO_MIGRATE", "yes")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")

	cfg, err := Load()
	require.NoError(t, err)
	require.False(t, cfg.DevSecrets)
	require.Equal(t, 15*time.Minute, cfg.VoterTokenTTL)
	require.Equal(t, "last", cfg.UnrankedPolicy)
	require.True(t, cfg.AutoMigrate)
	require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("VOTER_TOKEN_SECRET", "")
	t.Setenv("RIGHT_TO_VOTE_SECRET", "")
	t.Setenv("VOTER_TOKEN_TTL", "soon")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("VOTER_TOKEN_TTL", "")
	t.Setenv("VOTER_TOKEN_SECRET", "same")
	t.Setenv("RIGHT_TO_VOTE_SECRET", "same")
	_, err = Load()
	require.Error(t, err)
}
