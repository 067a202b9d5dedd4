package shared

import (
	"time"

	"github.com/google/uuid"
)

// EventType defines the settlement events emitted for downstream reporting
type EventType string

const (
	EventTransferCompleted        EventType = "transfer.completed"
	EventPendingCollectionCreated EventType = "pending_collection.created"
	EventPayoutCompleted          EventType = "payout.completed"
)

// SettlementEvent is the Kafka message published for every ledger movement.
// The ledger only produces events; it never consumes them.
type SettlementEvent struct {
	EventID       uuid.UUID `json:"event_id"`
	Type          EventType `json:"event_type"`
	TransactionID uuid.UUID `json:"transaction_id"`
	From          string    `json:"from"`
	To            string    `json:"to"`
	Amount        int64     `json:"amount"` // Stored in cents/minor units
	CorrelationID string    `json:"correlation_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewSettlementEvent builds an event for a ledger movement
func NewSettlementEvent(eventType EventType, transactionID uuid.UUID, from, to string, amount int64, correlationID string) *SettlementEvent {
	return &SettlementEvent{
		EventID:       uuid.New(),
		Type:          eventType,
		TransactionID: transactionID,
		From:          from,
		To:            to,
		Amount:        amount,
		CorrelationID: correlationID,
		OccurredAt:    time.Now().UTC(),
	}
}

// OutboxStatus defines message publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)
