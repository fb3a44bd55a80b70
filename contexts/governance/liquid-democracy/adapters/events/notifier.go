package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"liquido/contexts/governance/liquid-democracy/ports"

	"github.com/google/uuid"
)

// Notifier publishes notification events onto the message bus. Consumers
// turn them into mails or push messages.
type Notifier struct {
	publisher     ports.EventPublisher
	sourceService string
	logger        *slog.Logger
}

func NewNotifier(publisher ports.EventPublisher, sourceService string, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	if sourceService == "" {
		sourceService = "liquido"
	}
	return &Notifier{
		publisher:     publisher,
		sourceService: sourceService,
		logger:        logger,
	}
}

func (n *Notifier) DelegationRequested(ctx context.Context, notification ports.DelegationRequestedNotification) error {
	return n.publish(ctx, ports.EventDelegationRequested, "to_proxy_id", notification.ToProxyID, notification.RequestedAt, map[string]any{
		"delegation_id": notification.DelegationID,
		"from_user_id":  notification.FromUserID,
		"to_proxy_id":   notification.ToProxyID,
		"requested_at":  notification.RequestedAt,
	})
}

func (n *Notifier) PollFinished(ctx context.Context, notification ports.PollFinishedNotification) error {
	return n.publish(ctx, ports.EventPollFinished, "poll_id", notification.PollID, notification.FinishedAt, map[string]any{
		"poll_id":            notification.PollID,
		"winner_proposal_id": notification.WinnerProposalID,
		"unique":             notification.Unique,
		"ballot_count":       notification.BallotCount,
		"finished_at":        notification.FinishedAt,
	})
}

func (n *Notifier) publish(
	ctx context.Context,
	eventType string,
	partitionKeyPath string,
	partitionKey string,
	occurredAt time.Time,
	data map[string]any,
) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	envelope := ports.EventEnvelope{
		EventID:          uuid.NewString(),
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    n.sourceService,
		SchemaVersion:    1,
		PartitionKeyPath: partitionKeyPath,
		PartitionKey:     partitionKey,
		Data:             payload,
	}
	if err := n.publisher.Publish(ctx, ports.TopicNotifications, envelope); err != nil {
		n.logger.Error("notification publish failed",
			"event", "liquid_notification_publish_failed",
			"module", "governance/liquid-democracy",
			"layer", "adapter",
			"event_id", envelope.EventID,
			"event_type", eventType,
			"error", err.Error(),
		)
		return err
	}
	return nil
}

var _ ports.Notifier = (*Notifier)(nil)
