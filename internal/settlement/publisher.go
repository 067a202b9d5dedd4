package settlement

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/curator-me/lms-bank/internal/domain/outbox"
	"github.com/curator-me/lms-bank/internal/domain/shared"
	"github.com/curator-me/lms-bank/internal/platform/messaging/producers"
)

// EventPublisher publishes outbox messages to the settlement stream
type EventPublisher interface {
	PublishEvent(ctx context.Context, message *outbox.Message) error
}

// KafkaEventPublisher implements EventPublisher on top of a Kafka producer
type KafkaEventPublisher struct {
	outboxRepo outbox.Repository
	producer   producers.MessagePublisher
	logger     *slog.Logger
}

// NewEventPublisher creates a new publisher
func NewEventPublisher(
	outboxRepo outbox.Repository,
	producer producers.MessagePublisher,
	logger *slog.Logger,
) EventPublisher {
	return &KafkaEventPublisher{
		outboxRepo: outboxRepo,
		producer:   producer,
		logger:     logger,
	}
}

// PublishEvent decodes and publishes a single outbox message, then marks it
// PROCESSED. A payload that cannot be decoded is poisoned and is marked
// FAILED_TO_PUBLISH immediately rather than retried.
func (p *KafkaEventPublisher) PublishEvent(ctx context.Context, message *outbox.Message) error {
	event, err := message.Event()
	if err != nil {
		p.logger.Error("Failed to unmarshal settlement event from outbox payload",
			"outbox_id", message.ID, "transaction_id", message.TransactionID, "error", err,
		)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to update outbox status to FAILED_TO_PUBLISH after unmarshal error", "outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("unmarshal payload for outbox %d failed: %w", message.ID, err)
	}

	logger := p.logger
	if event.CorrelationID != "" {
		logger = p.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Info("Attempting to publish settlement event", "outbox_id", message.ID, "transaction_id", message.TransactionID, "event_type", event.Type)

	// Key by transaction ID so all events for a transaction land on the same
	// partition and arrive in order.
	if err := p.producer.Publish(ctx, event.TransactionID.String(), event); err != nil {
		logger.Error("Failed to publish settlement event to Kafka", "outbox_id", message.ID, "transaction_id", message.TransactionID, "error", err)
		return fmt.Errorf("failed to publish settlement event for outbox %d: %w", message.ID, err)
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		logger.Error("Failed to update outbox message status to PROCESSED",
			"outbox_id", message.ID, "transaction_id", message.TransactionID, "error", err,
		)
		return fmt.Errorf("event for %s published, but failed to mark outbox %d as PROCESSED: %w", message.TransactionID, message.ID, err)
	}

	logger.Info("Settlement event published and marked as PROCESSED", "outbox_id", message.ID, "transaction_id", message.TransactionID)
	return nil
}
