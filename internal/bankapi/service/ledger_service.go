package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/curator-me/lms-bank/internal/domain/account"
	"github.com/curator-me/lms-bank/internal/domain/outbox"
	"github.com/curator-me/lms-bank/internal/domain/shared"
	"github.com/curator-me/lms-bank/internal/domain/transaction"
)

// ErrSameAccount indicates a movement where sender and receiver are the same
var ErrSameAccount = errors.New("sender and receiver must be different accounts")

// LedgerServiceImpl implements the LedgerService interface. Balances live in
// PostgreSQL, ledger records in MongoDB, and every movement leaves a
// settlement event in the outbox within the same database transaction.
type LedgerServiceImpl struct {
	txRunner    TxRunner
	accountRepo account.Repository
	txRepo      transaction.Repository
	outboxRepo  outbox.Repository
	logger      *slog.Logger
}

// NewLedgerService creates a new ledger service
func NewLedgerService(
	txRunner TxRunner,
	accountRepo account.Repository,
	txRepo transaction.Repository,
	outboxRepo outbox.Repository,
	logger *slog.Logger,
) LedgerService {
	return &LedgerServiceImpl{
		txRunner:    txRunner,
		accountRepo: accountRepo,
		txRepo:      txRepo,
		outboxRepo:  outboxRepo,
		logger:      logger,
	}
}

// Transfer authenticates the sender and moves value to the recipient in one
// database transaction. The recorded transfer is completed immediately.
func (s *LedgerServiceImpl) Transfer(ctx context.Context, req *TransferRequest) (*transaction.Transaction, error) {
	if err := s.authenticate(ctx, req.FromAccount, req.FromSecret); err != nil {
		return nil, err
	}
	if req.FromAccount == req.ToAccount {
		return nil, ErrSameAccount
	}

	record, err := transaction.NewTransfer(req.FromAccount, req.ToAccount, req.Amount)
	if err != nil {
		return nil, err
	}

	event := shared.NewSettlementEvent(shared.EventTransferCompleted, record.ID, record.From, record.To, record.Amount, req.CorrelationID)
	if err := s.moveBalance(ctx, record.From, record.To, record.Amount, event); err != nil {
		if errors.Is(err, account.ErrAccountNotFound{AccountNumber: req.ToAccount}) {
			return nil, ErrRecipientNotFound
		}
		return nil, err
	}

	now := time.Now()
	record.ProcessedAt = &now
	if err := s.txRepo.Create(ctx, record); err != nil {
		// Balances already moved and the settlement event is queued; only the
		// history record is missing.
		s.logger.Error("Transfer settled but ledger record creation failed",
			"transaction_id", record.ID.String(), "from", record.From, "to", record.To, "error", err)
		return nil, fmt.Errorf("transfer settled but failed to record it: %w", err)
	}

	s.logger.Info("Transfer completed",
		"transaction_id", record.ID.String(), "from", record.From, "to", record.To, "amount", record.Amount)
	return record, nil
}

// CreatePendingCollection records a debt without authenticating anyone and
// without moving balances. Balances move when the receiver collects it.
func (s *LedgerServiceImpl) CreatePendingCollection(ctx context.Context, req *PendingCollectionRequest) (*transaction.Transaction, error) {
	if req.FromAccount == req.ToAccount {
		return nil, ErrSameAccount
	}

	record, err := transaction.NewPendingCollection(req.FromAccount, req.ToAccount, req.Amount)
	if err != nil {
		return nil, err
	}

	if err := s.txRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	// No balance movement happened, so there is no database transaction to
	// anchor the event to. Emission is best effort.
	event := shared.NewSettlementEvent(shared.EventPendingCollectionCreated, record.ID, record.From, record.To, record.Amount, req.CorrelationID)
	if msg, msgErr := outbox.NewMessage(event); msgErr != nil {
		s.logger.Error("Failed to build settlement event for pending collection", "transaction_id", record.ID.String(), "error", msgErr)
	} else if createErr := s.outboxRepo.Create(ctx, msg); createErr != nil {
		s.logger.Error("Failed to queue settlement event for pending collection", "transaction_id", record.ID.String(), "error", createErr)
	}

	s.logger.Info("Pending collection recorded",
		"transaction_id", record.ID.String(), "from", record.From, "to", record.To, "amount", record.Amount)
	return record, nil
}

// Payout collects a pending record addressed to the authenticated account. The
// record is claimed first so two concurrent payouts of the same record cannot
// both move money; the loser sees ErrNoPendingTransaction. A claim whose
// balance movement fails is released so the record stays collectible.
func (s *LedgerServiceImpl) Payout(ctx context.Context, req *PayoutRequest) (*transaction.Transaction, error) {
	if err := s.authenticate(ctx, req.AccountNumber, req.Secret); err != nil {
		return nil, err
	}

	claimed, err := s.txRepo.ClaimPending(ctx, req.TransactionID, req.AccountNumber)
	if err != nil {
		return nil, err
	}

	event := shared.NewSettlementEvent(shared.EventPayoutCompleted, claimed.ID, claimed.From, claimed.To, claimed.Amount, req.CorrelationID)
	if err := s.moveBalance(ctx, claimed.From, claimed.To, claimed.Amount, event); err != nil {
		s.releaseClaim(ctx, claimed)
		return nil, err
	}

	if err := s.txRepo.Resolve(ctx, claimed.ID); err != nil {
		// Balances moved but the record is stuck in processing. Do not release
		// the claim: that would make the record collectible a second time.
		s.logger.Error("Payout settled but ledger record resolution failed",
			"transaction_id", claimed.ID.String(), "error", err)
		return nil, fmt.Errorf("payout settled but failed to resolve record: %w", err)
	}

	now := time.Now()
	claimed.Status = transaction.StatusCompleted
	claimed.ProcessedAt = &now

	s.logger.Info("Payout completed",
		"transaction_id", claimed.ID.String(), "from", claimed.From, "to", claimed.To, "amount", claimed.Amount)
	return claimed, nil
}

// ListPending returns the collectible records addressed to the account
func (s *LedgerServiceImpl) ListPending(ctx context.Context, accountNumber string) ([]*transaction.Transaction, error) {
	return s.txRepo.FindPendingForAccount(ctx, accountNumber)
}

// ListTransactions returns paginated history for the account, newest first
func (s *LedgerServiceImpl) ListTransactions(ctx context.Context, accountNumber string, page, perPage int) ([]*transaction.Transaction, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	offset := (page - 1) * perPage

	records, err := s.txRepo.ListForAccount(ctx, accountNumber, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.txRepo.CountForAccount(ctx, accountNumber)
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// authenticate verifies the account exists, the secret matches, and the
// account may transact. An unknown account and a wrong secret both surface as
// ErrAuthenticationFailed so callers cannot probe for account numbers.
func (s *LedgerServiceImpl) authenticate(ctx context.Context, accountNumber, secret string) error {
	acc, err := s.accountRepo.GetByNumber(ctx, accountNumber)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound{}) {
			return account.ErrAuthenticationFailed
		}
		return err
	}

	if !acc.Authenticate(secret) {
		return account.ErrAuthenticationFailed
	}
	if !acc.IsActive() {
		return account.ErrAccountInactive
	}

	return nil
}

// moveBalance debits from and credits to inside one database transaction,
// writing the settlement event to the outbox in the same transaction. Rows are
// locked in lexicographic order so concurrent opposite movements cannot
// deadlock.
func (s *LedgerServiceImpl) moveBalance(ctx context.Context, from, to string, amount int64, event *shared.SettlementEvent) error {
	return s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		accounts := s.accountRepo.WithTx(tx)

		first, second := from, to
		if second < first {
			first, second = second, first
		}

		locked := make(map[string]*account.Account, 2)
		for _, number := range []string{first, second} {
			acc, err := accounts.LockForUpdate(ctx, number)
			if err != nil {
				return err
			}
			locked[number] = acc
		}

		sender := locked[from]
		recipient := locked[to]

		if err := sender.Debit(amount); err != nil {
			return err
		}
		if err := recipient.Credit(amount); err != nil {
			return err
		}

		if err := accounts.Update(ctx, sender); err != nil {
			return err
		}
		if err := accounts.Update(ctx, recipient); err != nil {
			return err
		}

		msg, err := outbox.NewMessage(event)
		if err != nil {
			return fmt.Errorf("failed to build settlement event: %w", err)
		}
		return s.outboxRepo.WithTx(tx).Create(ctx, msg)
	})
}

// releaseClaim best-effort returns a claimed record to pending
func (s *LedgerServiceImpl) releaseClaim(ctx context.Context, claimed *transaction.Transaction) {
	if err := s.txRepo.ReleaseClaim(ctx, claimed.ID); err != nil {
		s.logger.Error("Failed to release payout claim, record stuck in processing",
			"transaction_id", claimed.ID.String(), "error", err)
	}
}
