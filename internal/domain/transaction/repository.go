package transaction

import (
	"context"

	"github.com/google/uuid"
)

// Repository manages ledger record persistence with pagination support
type Repository interface {
	Create(ctx context.Context, tx *Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// FindPendingForAccount returns pending collection records addressed to
	// the account, newest first. These are the receiver's collectible earnings.
	FindPendingForAccount(ctx context.Context, accountNumber string) ([]*Transaction, error)

	// ListForAccount returns records where the account is sender or receiver,
	// ordered by timestamp descending.
	ListForAccount(ctx context.Context, accountNumber string, limit, offset int) ([]*Transaction, error)
	CountForAccount(ctx context.Context, accountNumber string) (int64, error)

	// ClaimPending atomically flips a pending record addressed to the account
	// into processing and returns it. A record can be claimed at most once;
	// a second claim fails with ErrNoPendingTransaction.
	ClaimPending(ctx context.Context, id uuid.UUID, accountNumber string) (*Transaction, error)

	// ReleaseClaim returns a processing record to pending so it can be
	// collected again after a failed payout.
	ReleaseClaim(ctx context.Context, id uuid.UUID) error

	// Resolve marks a claimed record completed and stamps processed_at.
	Resolve(ctx context.Context, id uuid.UUID) error
}

// ErrTransactionNotFound indicates missing ledger record
type ErrTransactionNotFound struct {
	ID uuid.UUID
}

func (e ErrTransactionNotFound) Error() string {
	return "transaction not found: " + e.ID.String()
}

// Is implements the errors.Is interface for ErrTransactionNotFound
func (e ErrTransactionNotFound) Is(target error) bool {
	t, ok := target.(ErrTransactionNotFound)
	if !ok {
		return false
	}
	// A nil target ID matches any ErrTransactionNotFound
	if t.ID == uuid.Nil {
		return true
	}
	return e.ID == t.ID
}

// ErrNoPendingTransaction indicates the record does not exist, is not pending,
// or is not addressed to the collecting account. The three cases are
// deliberately indistinguishable to the caller.
type ErrNoPendingTransaction struct {
	ID uuid.UUID
}

func (e ErrNoPendingTransaction) Error() string {
	return "no pending transaction found for this account: " + e.ID.String()
}

// Is implements the errors.Is interface for ErrNoPendingTransaction
func (e ErrNoPendingTransaction) Is(target error) bool {
	t, ok := target.(ErrNoPendingTransaction)
	if !ok {
		return false
	}
	if t.ID == uuid.Nil {
		return true
	}
	return e.ID == t.ID
}
