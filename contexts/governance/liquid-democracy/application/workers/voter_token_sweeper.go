package workers

import (
	"context"
	"log/slog"
	"time"

	application "liquido/contexts/governance/liquid-democracy/application"
	"liquido/contexts/governance/liquid-democracy/ports"
)

// VoterTokenSweeper deletes voter tokens past their expiry. It is idempotent
// and safe to run next to issuance and consumption.
type VoterTokenSweeper struct {
	Tokens ports.VoterTokenRepository
	Clock  ports.Clock
	Logger *slog.Logger
}

func (j VoterTokenSweeper) RunOnce(ctx context.Context) (int, error) {
	logger := application.ResolveLogger(j.Logger)
	now := time.Now().UTC()
	if j.Clock != nil {
		now = j.Clock.Now().UTC()
	}

	deleted, err := j.Tokens.DeleteExpiredVoterTokens(ctx, now)
	if err != nil {
		logger.Error("voter token sweep failed",
			"event", "liquid_voter_token_sweep_failed",
			"module", application.ModuleName,
			"layer", "worker",
			"error", err.Error(),
		)
		return 0, err
	}
	if deleted > 0 {
		logger.Info("voter token sweep completed",
			"event", "liquid_voter_token_sweep_completed",
			"module", application.ModuleName,
			"layer", "worker",
			"deleted_count", deleted,
		)
	}
	return deleted, nil
}
