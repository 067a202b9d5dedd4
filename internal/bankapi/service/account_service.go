package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/curator-me/lms-bank/internal/config"
	"github.com/curator-me/lms-bank/internal/domain/account"
)

// AccountServiceImpl implements the AccountService interface
type AccountServiceImpl struct {
	accountRepo account.Repository
	secretCost  int
	logger      *slog.Logger
}

// NewAccountService creates a new account service
func NewAccountService(accountRepo account.Repository, securityCfg *config.SecurityConfig, logger *slog.Logger) AccountService {
	return &AccountServiceImpl{
		accountRepo: accountRepo,
		secretCost:  securityCfg.SecretHashCost,
		logger:      logger,
	}
}

// SetupAccount creates a new account, rejecting duplicate account numbers
func (s *AccountServiceImpl) SetupAccount(ctx context.Context, accountNumber, secret string, initialBalance int64, currency string) (*account.Account, error) {
	acc, err := account.NewAccount(accountNumber, secret, initialBalance, currency, s.secretCost)
	if err != nil {
		return nil, err
	}

	if err := s.accountRepo.Create(ctx, acc); err != nil {
		if errors.Is(err, account.ErrDuplicateAccount{}) {
			s.logger.Warn("Attempt to create duplicate account", "account_number", accountNumber)
		}
		return nil, err
	}

	s.logger.Info("Account created", "account_number", accountNumber, "currency", currency)
	return acc, nil
}

// GetBalance retrieves an account by its number, returns ErrAccountNotFound if not found
func (s *AccountServiceImpl) GetBalance(ctx context.Context, accountNumber string) (*account.Account, error) {
	return s.accountRepo.GetByNumber(ctx, accountNumber)
}
