package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/curator-me/lms-bank/internal/domain/account"
	"github.com/curator-me/lms-bank/internal/domain/transaction"
)

// ErrRecipientNotFound indicates the receiving side of a movement does not
// exist. Distinct from account.ErrAccountNotFound so handlers can report the
// recipient specifically.
var ErrRecipientNotFound = errors.New("recipient account not found")

// TxRunner executes a function inside a single database transaction.
// Implemented by persistence.PostgresDB.
type TxRunner interface {
	ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// AccountService defines the interface for account operations
type AccountService interface {
	// SetupAccount creates a new account with the given details
	// Returns ErrDuplicateAccount if the account number is already taken
	SetupAccount(ctx context.Context, accountNumber, secret string, initialBalance int64, currency string) (*account.Account, error)

	// GetBalance retrieves an account by its number
	// Returns ErrAccountNotFound if the account doesn't exist
	GetBalance(ctx context.Context, accountNumber string) (*account.Account, error)
}

// TransferRequest describes an immediate, authenticated balance movement
type TransferRequest struct {
	FromAccount   string
	FromSecret    string
	ToAccount     string
	Amount        int64
	CorrelationID string
}

// PendingCollectionRequest describes a debt recorded without moving balances
type PendingCollectionRequest struct {
	FromAccount   string
	ToAccount     string
	Amount        int64
	CorrelationID string
}

// PayoutRequest describes an authenticated collection of a pending record
type PayoutRequest struct {
	TransactionID uuid.UUID
	AccountNumber string
	Secret        string
	CorrelationID string
}

// LedgerService defines the interface for balance movements and ledger queries
type LedgerService interface {
	// Transfer authenticates the sender and moves value to the recipient
	// immediately. Both balance updates happen in one database transaction.
	Transfer(ctx context.Context, req *TransferRequest) (*transaction.Transaction, error)

	// CreatePendingCollection records a debt from one account to another
	// without touching balances or authenticating anyone
	CreatePendingCollection(ctx context.Context, req *PendingCollectionRequest) (*transaction.Transaction, error)

	// Payout collects a pending record: it authenticates the receiver, moves
	// the recorded amount from the debtor, and marks the record completed.
	// Each record can be paid out at most once.
	Payout(ctx context.Context, req *PayoutRequest) (*transaction.Transaction, error)

	// ListPending returns the collectible records addressed to the account
	ListPending(ctx context.Context, accountNumber string) ([]*transaction.Transaction, error)

	// ListTransactions returns paginated history where the account is sender
	// or receiver, newest first. Also returns the total record count.
	ListTransactions(ctx context.Context, accountNumber string, page, perPage int) ([]*transaction.Transaction, int64, error)
}
