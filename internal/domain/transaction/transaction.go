package transaction

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidAmount      = errors.New("transaction amount must be positive")
	ErrMissingParticipant = errors.New("transaction requires both a sender and a receiver")
)

// Type defines the kinds of ledger records
type Type string

const (
	// TypeTransfer moves value immediately (learner purchase into escrow).
	TypeTransfer Type = "transfer"

	// TypePendingCollection records a debt owed by one account to another;
	// value moves only when the receiver collects it via payout.
	TypePendingCollection Type = "pending_collection"
)

// Status defines ledger record states
type Status string

const (
	StatusPending Status = "pending"

	// StatusProcessing is a short-lived claim held while a payout moves the
	// balances. A failed payout releases the record back to pending.
	StatusProcessing Status = "processing"

	StatusCompleted Status = "completed"
)

// Transaction is an append-style ledger record between two accounts. The only
// mutation it ever sees is the pending -> completed flip performed by a payout.
type Transaction struct {
	ID          uuid.UUID  `json:"transaction_id" bson:"transaction_id"`
	From        string     `json:"from" bson:"from"`
	To          string     `json:"to" bson:"to"`
	Amount      int64      `json:"amount" bson:"amount"` // Stored in cents/minor units
	Type        Type       `json:"type" bson:"type"`
	Status      Status     `json:"status" bson:"status"`
	Timestamp   time.Time  `json:"timestamp" bson:"timestamp"`
	ProcessedAt *time.Time `json:"processed_at,omitempty" bson:"processed_at,omitempty"`
}

// NewTransfer creates a completed transfer record. Transfers settle in the
// same operation that records them, so they are never observed as pending.
func NewTransfer(from, to string, amount int64) (*Transaction, error) {
	return newTransaction(from, to, amount, TypeTransfer, StatusCompleted)
}

// NewPendingCollection creates a pending collection record. No balance moves
// until the receiver collects it.
func NewPendingCollection(from, to string, amount int64) (*Transaction, error) {
	return newTransaction(from, to, amount, TypePendingCollection, StatusPending)
}

func newTransaction(from, to string, amount int64, txType Type, status Status) (*Transaction, error) {
	if from == "" || to == "" {
		return nil, ErrMissingParticipant
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	return &Transaction{
		ID:        uuid.New(),
		From:      from,
		To:        to,
		Amount:    amount,
		Type:      txType,
		Status:    status,
		Timestamp: time.Now(),
	}, nil
}

// IsPending reports whether the record is still collectible
func (t *Transaction) IsPending() bool {
	return t.Status == StatusPending
}
