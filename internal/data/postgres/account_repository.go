// Package postgres provides PostgreSQL implementations of the domain
// repositories. It backs the account store and the settlement outbox while
// maintaining transaction safety for balance movements.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/curator-me/lms-bank/internal/domain/account"
	"github.com/curator-me/lms-bank/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolationCode = "23505"

// AccountRepository implements the account.Repository interface for PostgreSQL
type AccountRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewAccountRepository creates a new PostgreSQL account repository.
// It expects db.Pool() to satisfy persistence.Querier.
func NewAccountRepository(logger *slog.Logger, db *persistence.PostgresDB) account.Repository {
	return &AccountRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction, allowing for atomic
// operations across multiple repository calls. The returned repository uses
// the provided transaction for all database operations.
func (r *AccountRepository) WithTx(tx pgx.Tx) account.Repository {
	return &AccountRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new account. A concurrent setup of the same account number
// surfaces as ErrDuplicateAccount via the primary key constraint.
func (r *AccountRepository) Create(ctx context.Context, acc *account.Account) error {
	query := `
		INSERT INTO accounts (account_number, secret_hash, balance, currency, status, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.querier.Exec(ctx, query,
		acc.AccountNumber,
		acc.SecretHash,
		acc.Balance,
		acc.Currency,
		acc.Status,
		acc.Version,
		acc.CreatedAt,
		acc.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return account.ErrDuplicateAccount{AccountNumber: acc.AccountNumber}
		}
		r.logger.Error("Failed to create account", "account_number", acc.AccountNumber, "error", err)
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// GetByNumber retrieves an account by its account number
func (r *AccountRepository) GetByNumber(ctx context.Context, accountNumber string) (*account.Account, error) {
	query := `
		SELECT account_number, secret_hash, balance, currency, status, version, created_at, updated_at
		FROM accounts
		WHERE account_number = $1
	`

	var acc account.Account
	err := r.querier.QueryRow(ctx, query, accountNumber).Scan(
		&acc.AccountNumber,
		&acc.SecretHash,
		&acc.Balance,
		&acc.Currency,
		&acc.Status,
		&acc.Version,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{AccountNumber: accountNumber}
		}
		r.logger.Error("Failed to get account", "account_number", accountNumber, "error", err)
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return &acc, nil
}

// Update persists the account's balance, status, and version using optimistic
// locking. Returns ErrConcurrentModification if the account changed between
// read and update.
func (r *AccountRepository) Update(ctx context.Context, acc *account.Account) error {
	query := `
		UPDATE accounts
		SET balance = $1, status = $2, version = $3, updated_at = $4
		WHERE account_number = $5 AND version = $6
	`

	result, err := r.querier.Exec(ctx, query,
		acc.Balance,
		acc.Status,
		acc.Version,
		acc.UpdatedAt,
		acc.AccountNumber,
		acc.Version-1, // Check previous version for optimistic locking
	)
	if err != nil {
		r.logger.Error("Failed to update account", "account_number", acc.AccountNumber, "error", err)
		return fmt.Errorf("failed to update account: %w", err)
	}

	if result.RowsAffected() == 0 {
		return account.ErrConcurrentModification{AccountNumber: acc.AccountNumber}
	}

	return nil
}

// LockForUpdate obtains a pessimistic lock on the account row and returns its
// current state. Must be used within a transaction; callers moving value
// between two accounts lock both rows in lexicographic order to avoid
// deadlocks.
func (r *AccountRepository) LockForUpdate(ctx context.Context, accountNumber string) (*account.Account, error) {
	query := `
		SELECT account_number, secret_hash, balance, currency, status, version, created_at, updated_at
		FROM accounts
		WHERE account_number = $1
		FOR UPDATE
	`

	var acc account.Account
	err := r.querier.QueryRow(ctx, query, accountNumber).Scan(
		&acc.AccountNumber,
		&acc.SecretHash,
		&acc.Balance,
		&acc.Currency,
		&acc.Status,
		&acc.Version,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{AccountNumber: accountNumber}
		}
		r.logger.Error("Failed to lock account for update", "account_number", accountNumber, "error", err)
		return nil, fmt.Errorf("failed to lock account for update: %w", err)
	}

	return &acc, nil
}
