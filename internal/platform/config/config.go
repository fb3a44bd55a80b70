package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	devVoterTokenSecret  = "dev-voter-token-secret"
	devRightToVoteSecret = "dev-right-to-vote-secret"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName  string
	HTTPPort     string
	PostgresDSN  string
	KafkaBrokers []string

	VoterTokenSecret  string
	RightToVoteSecret string
	// DevSecrets is true when either secret fell back to its development
	// default.
	DevSecrets bool

	VoterTokenTTL      time.Duration
	RightToVoteTTL     time.Duration
	TokenSweepInterval time.Duration
	UnrankedPolicy     string
	ResultCacheSize    int
	AutoMigrate        bool
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "liquido"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	var brokers []string
	for _, value := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			brokers = append(brokers, value)
		}
	}
	if len(brokers) == 0 {
		brokers = []string{"localhost:9092"}
	}

	cfg := Config{
		ServiceName:       service,
		HTTPPort:          port,
		PostgresDSN:       os.Getenv("POSTGRES_DSN"),
		KafkaBrokers:      brokers,
		VoterTokenSecret:  strings.TrimSpace(os.Getenv("VOTER_TOKEN_SECRET")),
		RightToVoteSecret: strings.TrimSpace(os.Getenv("RIGHT_TO_VOTE_SECRET")),
		UnrankedPolicy:    strings.TrimSpace(strings.ToLower(os.Getenv("UNRANKED_POLICY"))),
		AutoMigrate:       envBool("AUTO_MIGRATE", false),
	}
	if cfg.UnrankedPolicy == "" {
		cfg.UnrankedPolicy = "ignore"
	}
	if cfg.VoterTokenSecret == "" {
		cfg.VoterTokenSecret = devVoterTokenSecret
		cfg.DevSecrets = true
	}
	if cfg.RightToVoteSecret == "" {
		cfg.RightToVoteSecret = devRightToVoteSecret
		cfg.DevSecrets = true
	}
	if cfg.VoterTokenSecret == cfg.RightToVoteSecret {
		return Config{}, errors.New("VOTER_TOKEN_SECRET and RIGHT_TO_VOTE_SECRET must differ")
	}

	var err error
	if cfg.VoterTokenTTL, err = envDuration("VOTER_TOKEN_TTL", time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.RightToVoteTTL, err = envDuration("RIGHT_TO_VOTE_TTL", 8760*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.TokenSweepInterval, err = envDuration("TOKEN_SWEEP_INTERVAL", time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.ResultCacheSize, err = envInt("RESULT_CACHE_SIZE", 256); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func envDuration(name string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("%s must be positive", name)
	}
	return value, nil
}

func envInt(name string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return value, nil
}
