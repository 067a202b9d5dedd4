package account

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Repository defines account persistence operations
type Repository interface {
	Create(ctx context.Context, account *Account) error
	GetByNumber(ctx context.Context, accountNumber string) (*Account, error)
	Update(ctx context.Context, account *Account) error

	// LockForUpdate acquires a pessimistic lock for balance movements
	LockForUpdate(ctx context.Context, accountNumber string) (*Account, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrAccountNotFound indicates missing account
type ErrAccountNotFound struct {
	AccountNumber string
}

func (e ErrAccountNotFound) Error() string {
	return "account not found: " + e.AccountNumber
}

// Is implements the errors.Is interface for ErrAccountNotFound
func (e ErrAccountNotFound) Is(target error) bool {
	t, ok := target.(ErrAccountNotFound)
	if !ok {
		return false
	}
	// An empty target account number matches any ErrAccountNotFound
	if t.AccountNumber == "" {
		return true
	}
	return e.AccountNumber == t.AccountNumber
}

// ErrDuplicateAccount indicates account number uniqueness violation
type ErrDuplicateAccount struct {
	AccountNumber string
}

func (e ErrDuplicateAccount) Error() string {
	return "account already exists: " + e.AccountNumber
}

// Is implements the errors.Is interface for ErrDuplicateAccount
func (e ErrDuplicateAccount) Is(target error) bool {
	t, ok := target.(ErrDuplicateAccount)
	if !ok {
		return false
	}
	if t.AccountNumber == "" {
		return true
	}
	return e.AccountNumber == t.AccountNumber
}

// ErrConcurrentModification indicates optimistic lock failure
type ErrConcurrentModification struct {
	AccountNumber string
}

func (e ErrConcurrentModification) Error() string {
	return "concurrent modification detected for account: " + e.AccountNumber
}
