package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/curator-me/lms-bank/internal/bankapi/service"
	"github.com/curator-me/lms-bank/internal/domain/account"
)

const defaultCurrency = "BDT"

// AccountHandler handles HTTP requests for account operations
type AccountHandler struct {
	accountService service.AccountService
	logger         *slog.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(logger *slog.Logger, accountService service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		logger:         logger,
	}
}

// Setup handles creation of a new account, rejecting duplicate account numbers
func (h *AccountHandler) Setup(c *gin.Context) {
	var req SetupAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	acc, err := h.accountService.SetupAccount(c.Request.Context(), req.AccountNumber, req.Secret, req.Balance, currency)
	if err != nil {
		if errors.Is(err, account.ErrDuplicateAccount{}) {
			RespondBadRequest(c, "Account with this number already exists")
			return
		}
		if errors.Is(err, account.ErrEmptyAccountNumber) ||
			errors.Is(err, account.ErrEmptySecret) ||
			errors.Is(err, account.ErrInvalidCurrencyFormat) ||
			errors.Is(err, account.ErrInvalidAmount) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to create account", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapAccountToResponse(acc))
}

// GetBalance retrieves an account by its number, returning 404 if not found
func (h *AccountHandler) GetBalance(c *gin.Context) {
	accountNumber := c.Param("accountNumber")

	acc, err := h.accountService.GetBalance(c.Request.Context(), accountNumber)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound{}) {
			RespondNotFound(c, "Account not found")
			return
		}
		h.logger.Error("Failed to get account", "account_number", accountNumber, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapAccountToResponse(acc))
}

// mapAccountToResponse maps an account entity to an account response DTO.
// The secret hash never leaves the service.
func mapAccountToResponse(acc *account.Account) AccountResponse {
	return AccountResponse{
		AccountNumber: acc.AccountNumber,
		Balance:       acc.Balance,
		Currency:      acc.Currency,
		Status:        string(acc.Status),
		CreatedAt:     acc.CreatedAt.Format(time.RFC3339),
	}
}
