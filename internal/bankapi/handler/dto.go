package handler

// Wire field names are camelCase for compatibility with the LMS orchestrator
// that calls this API.

// SetupAccountRequest represents a request to create a new account
type SetupAccountRequest struct {
	AccountNumber string `json:"accountNumber" binding:"required"`
	Secret        string `json:"secret" binding:"required"`
	Balance       int64  `json:"balance" binding:"min=0"`
	Currency      string `json:"currency,omitempty" binding:"omitempty,len=3"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	AccountNumber string `json:"accountNumber"`
	Balance       int64  `json:"balance"`
	Currency      string `json:"currency"`
	Status        string `json:"status"`
	CreatedAt     string `json:"createdAt"`
}

// TransferRequest represents an authenticated immediate transfer
type TransferRequest struct {
	FromAccount string `json:"fromAccount" binding:"required"`
	FromSecret  string `json:"fromSecret" binding:"required"`
	ToAccount   string `json:"toAccount" binding:"required"`
	Amount      int64  `json:"amount" binding:"required,gt=0"`
}

// TransferRecordRequest represents a pending collection to record. No
// authentication and no balance movement happen at record time.
type TransferRecordRequest struct {
	FromAccount string `json:"fromAccount" binding:"required"`
	ToAccount   string `json:"toAccount" binding:"required"`
	Amount      int64  `json:"amount" binding:"required,gt=0"`
}

// PayoutRequest represents an authenticated collection of a pending record
type PayoutRequest struct {
	TransactionID string `json:"transactionId" binding:"required,uuid"`
	AccountNumber string `json:"accountNumber" binding:"required"`
	Secret        string `json:"secret" binding:"required"`
}

// TransactionResponse represents a ledger record in API responses
type TransactionResponse struct {
	TransactionID string `json:"transactionId"`
	From          string `json:"from"`
	To            string `json:"to"`
	Amount        int64  `json:"amount"`
	Type          string `json:"type"`
	Status        string `json:"status"`
	Timestamp     string `json:"timestamp"`
	ProcessedAt   string `json:"processedAt,omitempty"`
}

// TransactionListResponse represents a list of ledger records in API responses
type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=20" binding:"min=1,max=100"`
}
