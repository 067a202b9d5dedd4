package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/curator-me/lms-bank/internal/bankapi/middleware"
	"github.com/curator-me/lms-bank/internal/bankapi/service"
	"github.com/curator-me/lms-bank/internal/domain/account"
	"github.com/curator-me/lms-bank/internal/domain/transaction"
)

// LedgerHandler handles HTTP requests for balance movements and ledger queries
type LedgerHandler struct {
	ledgerService service.LedgerService
	logger        *slog.Logger
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(logger *slog.Logger, ledgerService service.LedgerService) *LedgerHandler {
	return &LedgerHandler{
		ledgerService: ledgerService,
		logger:        logger,
	}
}

// Transfer handles an authenticated immediate transfer between two accounts
func (h *LedgerHandler) Transfer(c *gin.Context) {
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	record, err := h.ledgerService.Transfer(c.Request.Context(), &service.TransferRequest{
		FromAccount:   req.FromAccount,
		FromSecret:    req.FromSecret,
		ToAccount:     req.ToAccount,
		Amount:        req.Amount,
		CorrelationID: middleware.GetCorrelationID(c),
	})
	if err != nil {
		h.respondMovementError(c, err, req.FromAccount)
		return
	}

	RespondCreated(c, mapTransactionToResponse(record))
}

// CreateTransferRecord records a pending collection without moving balances
func (h *LedgerHandler) CreateTransferRecord(c *gin.Context) {
	var req TransferRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	record, err := h.ledgerService.CreatePendingCollection(c.Request.Context(), &service.PendingCollectionRequest{
		FromAccount:   req.FromAccount,
		ToAccount:     req.ToAccount,
		Amount:        req.Amount,
		CorrelationID: middleware.GetCorrelationID(c),
	})
	if err != nil {
		if errors.Is(err, transaction.ErrInvalidAmount) ||
			errors.Is(err, transaction.ErrMissingParticipant) ||
			errors.Is(err, service.ErrSameAccount) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to record pending collection", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapTransactionToResponse(record))
}

// Payout collects a pending record for the authenticated account
func (h *LedgerHandler) Payout(c *gin.Context) {
	var req PayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	transactionID, err := uuid.Parse(req.TransactionID)
	if err != nil {
		RespondBadRequest(c, "Invalid transaction ID")
		return
	}

	record, err := h.ledgerService.Payout(c.Request.Context(), &service.PayoutRequest{
		TransactionID: transactionID,
		AccountNumber: req.AccountNumber,
		Secret:        req.Secret,
		CorrelationID: middleware.GetCorrelationID(c),
	})
	if err != nil {
		if errors.Is(err, transaction.ErrNoPendingTransaction{}) {
			RespondNotFound(c, "No pending transaction found for this account")
			return
		}
		h.respondMovementError(c, err, req.AccountNumber)
		return
	}

	RespondOK(c, mapTransactionToResponse(record))
}

// ListTransactions retrieves paginated history for an account, newest first
func (h *LedgerHandler) ListTransactions(c *gin.Context) {
	accountNumber := c.Param("accountNumber")

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	records, total, err := h.ledgerService.ListTransactions(c.Request.Context(), accountNumber, pagination.Page, pagination.PerPage)
	if err != nil {
		h.logger.Error("Failed to list transactions", "account_number", accountNumber, "error", err)
		RespondInternalError(c)
		return
	}

	response := TransactionListResponse{Transactions: make([]TransactionResponse, 0, len(records))}
	for _, record := range records {
		response.Transactions = append(response.Transactions, mapTransactionToResponse(record))
	}

	RespondWithPaginatedData(c, http.StatusOK, response, pagination.Page, pagination.PerPage, int(total))
}

// ListPending retrieves the collectible records addressed to an account
func (h *LedgerHandler) ListPending(c *gin.Context) {
	accountNumber := c.Param("accountNumber")

	records, err := h.ledgerService.ListPending(c.Request.Context(), accountNumber)
	if err != nil {
		h.logger.Error("Failed to list pending transactions", "account_number", accountNumber, "error", err)
		RespondInternalError(c)
		return
	}

	response := TransactionListResponse{Transactions: make([]TransactionResponse, 0, len(records))}
	for _, record := range records {
		response.Transactions = append(response.Transactions, mapTransactionToResponse(record))
	}

	RespondOK(c, response)
}

// respondMovementError maps balance movement errors onto HTTP statuses shared
// by transfers and payouts
func (h *LedgerHandler) respondMovementError(c *gin.Context, err error, accountNumber string) {
	switch {
	case errors.Is(err, account.ErrAuthenticationFailed):
		RespondUnauthorized(c, "Authentication failed")
	case errors.Is(err, account.ErrAccountInactive):
		RespondUnauthorized(c, "Account is not active")
	case errors.Is(err, account.ErrInsufficientFunds):
		RespondBadRequest(c, "Insufficient balance")
	case errors.Is(err, service.ErrRecipientNotFound):
		RespondNotFound(c, "Recipient account not found")
	case errors.Is(err, account.ErrAccountNotFound{}):
		RespondNotFound(c, "Account not found")
	case errors.Is(err, service.ErrSameAccount),
		errors.Is(err, transaction.ErrInvalidAmount),
		errors.Is(err, account.ErrInvalidAmount):
		RespondBadRequest(c, err.Error())
	default:
		h.logger.Error("Balance movement failed", "account_number", accountNumber, "error", err)
		RespondInternalError(c)
	}
}

// mapTransactionToResponse maps a ledger record to a response DTO
func mapTransactionToResponse(record *transaction.Transaction) TransactionResponse {
	resp := TransactionResponse{
		TransactionID: record.ID.String(),
		From:          record.From,
		To:            record.To,
		Amount:        record.Amount,
		Type:          string(record.Type),
		Status:        string(record.Status),
		Timestamp:     record.Timestamp.Format(time.RFC3339),
	}
	if record.ProcessedAt != nil {
		resp.ProcessedAt = record.ProcessedAt.Format(time.RFC3339)
	}
	return resp
}
