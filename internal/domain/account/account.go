package account

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Common errors
var (
	ErrInsufficientFunds     = errors.New("insufficient balance")
	ErrInvalidAmount         = errors.New("amount must be positive")
	ErrEmptyAccountNumber    = errors.New("account number cannot be empty")
	ErrEmptySecret           = errors.New("secret cannot be empty")
	ErrInvalidCurrencyFormat = errors.New("currency must be a 3-letter code")

	// ErrAuthenticationFailed does not distinguish an unknown account from a
	// wrong secret.
	ErrAuthenticationFailed = errors.New("authentication failed: invalid account or secret")

	ErrAccountInactive = errors.New("account is not active")
)

// Status defines the lifecycle states of an account
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
)

// Account represents a bank account held by a learner, an instructor, or the
// organization's escrow account.
type Account struct {
	AccountNumber string    `json:"account_number"`
	SecretHash    string    `json:"-"`       // bcrypt hash of the shared secret, never serialized
	Balance       int64     `json:"balance"` // Stored in cents/minor units
	Currency      string    `json:"currency"`
	Status        Status    `json:"status"`
	Version       int       `json:"version"` // For optimistic locking
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewAccount creates an active account with the given parameters. The shared
// secret is stored only as a bcrypt hash.
func NewAccount(accountNumber, secret string, initialBalance int64, currency string, secretCost int) (*Account, error) {
	if accountNumber == "" {
		return nil, ErrEmptyAccountNumber
	}
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if len(currency) != 3 { // Basic validation for currency code length
		return nil, ErrInvalidCurrencyFormat
	}
	if initialBalance < 0 {
		return nil, ErrInvalidAmount
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), secretCost)
	if err != nil {
		return nil, err
	}

	return &Account{
		AccountNumber: accountNumber,
		SecretHash:    string(hash),
		Balance:       initialBalance,
		Currency:      currency,
		Status:        StatusActive,
		Version:       1,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}, nil
}

// Authenticate reports whether the given secret matches the stored hash
func (a *Account) Authenticate(secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.SecretHash), []byte(secret)) == nil
}

// IsActive reports whether the account is allowed to transact
func (a *Account) IsActive() bool {
	return a.Status == StatusActive
}

// Credit adds the specified amount to the account balance
func (a *Account) Credit(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	a.Balance += amount
	a.UpdatedAt = time.Now()
	a.Version++
	return nil
}

// Debit subtracts the specified amount from the account balance
func (a *Account) Debit(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	if a.Balance < amount {
		return ErrInsufficientFunds
	}

	a.Balance -= amount
	a.UpdatedAt = time.Now()
	a.Version++
	return nil
}

// CanDebit checks if the account has sufficient funds for a debit
func (a *Account) CanDebit(amount int64) bool {
	return a.Balance >= amount
}
