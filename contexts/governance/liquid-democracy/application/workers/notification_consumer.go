package workers

import (
	"context"
	"encoding/json"
	"log/slog"

	application "liquido/contexts/governance/liquid-democracy/application"
	"liquido/contexts/governance/liquid-democracy/ports"
)

type delegationRequestedPayload struct {
	DelegationID string `json:"delegation_id"`
	ToProxyID    string `json:"to_proxy_id"`
}

type pollFinishedPayload struct {
	PollID           string `json:"poll_id"`
	WinnerProposalID string `json:"winner_proposal_id"`
	Unique           bool   `json:"unique"`
}

// NotificationConsumer turns bus events into user notifications. Delivery is
// a log line until a mail transport exists.
type NotificationConsumer struct {
	Logger *slog.Logger
}

func (c NotificationConsumer) Handle(ctx context.Context, event ports.EventEnvelope) error {
	logger := application.ResolveLogger(c.Logger)
	switch event.EventType {
	case ports.EventDelegationRequested:
		var payload delegationRequestedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return err
		}
		logger.InfoContext(ctx, "proxy notified about delegation request",
			"event", "liquid_notification_delegation_requested",
			"module", application.ModuleName,
			"layer", "worker",
			"delegation_id", payload.DelegationID,
			"proxy_id", payload.ToProxyID,
		)
	case ports.EventPollFinished:
		var payload pollFinishedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return err
		}
		logger.InfoContext(ctx, "voters notified about poll result",
			"event", "liquid_notification_poll_finished",
			"module", application.ModuleName,
			"layer", "worker",
			"poll_id", payload.PollID,
			"winner_proposal_id", payload.WinnerProposalID,
			"unique", payload.Unique,
		)
	}
	return nil
}
