package bankapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/curator-me/lms-bank/internal/bankapi/handler"
	"github.com/curator-me/lms-bank/internal/bankapi/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	accountHandler *handler.AccountHandler,
	ledgerHandler *handler.LedgerHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Account operations
		accounts := v1.Group("/accounts")
		{
			accounts.POST("/setup", accountHandler.Setup)
			accounts.GET("/balance/:accountNumber", accountHandler.GetBalance)
		}

		// Balance movements
		v1.POST("/transfer", ledgerHandler.Transfer)
		v1.POST("/transfer-records", ledgerHandler.CreateTransferRecord)
		v1.POST("/payout", ledgerHandler.Payout)

		// Ledger queries
		transactions := v1.Group("/transactions")
		{
			transactions.GET("/:accountNumber", ledgerHandler.ListTransactions)
			transactions.GET("/:accountNumber/pending", ledgerHandler.ListPending)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
