package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/curator-me/lms-bank/internal/domain/transaction"
)

const (
	// TransactionCollectionName is the name of the transaction collection in MongoDB
	TransactionCollectionName = "transactions"
)

// TransactionRepository implements the transaction.Repository interface for MongoDB
type TransactionRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewTransactionRepository creates a new MongoDB transaction repository
func NewTransactionRepository(logger *slog.Logger, db *mongo.Database) transaction.Repository {
	return &TransactionRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a new ledger record
func (r *TransactionRepository) Create(ctx context.Context, tx *transaction.Transaction) error {
	collection := r.db.Collection(TransactionCollectionName)

	if _, err := collection.InsertOne(ctx, tx); err != nil {
		r.logger.Error("Failed to create transaction record",
			"transaction_id", tx.ID.String(),
			"error", err)
		return fmt.Errorf("failed to create transaction record: %w", err)
	}

	return nil
}

// GetByID retrieves a ledger record by its transaction ID.
// Returns ErrTransactionNotFound if no record exists.
func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	collection := r.db.Collection(TransactionCollectionName)

	filter := bson.M{"transaction_id": id}
	var tx transaction.Transaction
	err := collection.FindOne(ctx, filter).Decode(&tx)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, transaction.ErrTransactionNotFound{ID: id}
		}
		r.logger.Error("Failed to get transaction record",
			"transaction_id", id.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get transaction record: %w", err)
	}

	return &tx, nil
}

// FindPendingForAccount retrieves pending collection records addressed to the
// account, newest first. These are the collectible earnings shown to
// instructors.
func (r *TransactionRepository) FindPendingForAccount(ctx context.Context, accountNumber string) ([]*transaction.Transaction, error) {
	collection := r.db.Collection(TransactionCollectionName)

	filter := bson.M{
		"to":     accountNumber,
		"status": transaction.StatusPending,
		"type":   transaction.TypePendingCollection,
	}
	opts := options.Find().SetSort(bson.M{"timestamp": -1})

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to find pending transactions",
			"account_number", accountNumber,
			"error", err)
		return nil, fmt.Errorf("failed to find pending transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var txs []*transaction.Transaction
	if err := cursor.All(ctx, &txs); err != nil {
		r.logger.Error("Failed to decode pending transactions",
			"account_number", accountNumber,
			"error", err)
		return nil, fmt.Errorf("failed to decode pending transactions: %w", err)
	}

	return txs, nil
}

// ListForAccount retrieves paginated records where the account is sender or
// receiver, ordered by timestamp descending (newest first).
func (r *TransactionRepository) ListForAccount(ctx context.Context, accountNumber string, limit, offset int) ([]*transaction.Transaction, error) {
	collection := r.db.Collection(TransactionCollectionName)

	filter := bson.M{
		"$or": []bson.M{
			{"from": accountNumber},
			{"to": accountNumber},
		},
	}
	opts := options.Find().
		SetSort(bson.M{"timestamp": -1}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to list transactions",
			"account_number", accountNumber,
			"error", err)
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var txs []*transaction.Transaction
	if err := cursor.All(ctx, &txs); err != nil {
		r.logger.Error("Failed to decode transactions",
			"account_number", accountNumber,
			"error", err)
		return nil, fmt.Errorf("failed to decode transactions: %w", err)
	}

	return txs, nil
}

// CountForAccount counts records where the account is sender or receiver
func (r *TransactionRepository) CountForAccount(ctx context.Context, accountNumber string) (int64, error) {
	collection := r.db.Collection(TransactionCollectionName)

	filter := bson.M{
		"$or": []bson.M{
			{"from": accountNumber},
			{"to": accountNumber},
		},
	}
	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to count transactions",
			"account_number", accountNumber,
			"error", err)
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	return count, nil
}

// ClaimPending atomically claims a pending record addressed to the account by
// flipping it to processing. The single conditional update is what makes a
// payout at-most-once: a second claim matches nothing and fails with
// ErrNoPendingTransaction, whether the record is missing, already completed,
// or addressed to someone else.
func (r *TransactionRepository) ClaimPending(ctx context.Context, id uuid.UUID, accountNumber string) (*transaction.Transaction, error) {
	collection := r.db.Collection(TransactionCollectionName)

	filter := bson.M{
		"transaction_id": id,
		"to":             accountNumber,
		"status":         transaction.StatusPending,
	}
	update := bson.M{
		"$set": bson.M{"status": transaction.StatusProcessing},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var tx transaction.Transaction
	err := collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&tx)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, transaction.ErrNoPendingTransaction{ID: id}
		}
		r.logger.Error("Failed to claim pending transaction",
			"transaction_id", id.String(),
			"account_number", accountNumber,
			"error", err)
		return nil, fmt.Errorf("failed to claim pending transaction: %w", err)
	}

	return &tx, nil
}

// ReleaseClaim returns a processing record to pending after a failed payout so
// it can be collected again.
func (r *TransactionRepository) ReleaseClaim(ctx context.Context, id uuid.UUID) error {
	collection := r.db.Collection(TransactionCollectionName)

	filter := bson.M{
		"transaction_id": id,
		"status":         transaction.StatusProcessing,
	}
	update := bson.M{
		"$set": bson.M{"status": transaction.StatusPending},
	}

	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		r.logger.Error("Failed to release transaction claim",
			"transaction_id", id.String(),
			"error", err)
		return fmt.Errorf("failed to release transaction claim: %w", err)
	}

	if result.MatchedCount == 0 {
		return transaction.ErrTransactionNotFound{ID: id}
	}

	return nil
}

// Resolve marks a claimed record completed and stamps processed_at.
// Completed records are immutable from this point on.
func (r *TransactionRepository) Resolve(ctx context.Context, id uuid.UUID) error {
	collection := r.db.Collection(TransactionCollectionName)

	filter := bson.M{
		"transaction_id": id,
		"status":         transaction.StatusProcessing,
	}
	update := bson.M{
		"$set": bson.M{
			"status":       transaction.StatusCompleted,
			"processed_at": time.Now(),
		},
	}

	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		r.logger.Error("Failed to resolve transaction",
			"transaction_id", id.String(),
			"error", err)
		return fmt.Errorf("failed to resolve transaction: %w", err)
	}

	if result.MatchedCount == 0 {
		return transaction.ErrTransactionNotFound{ID: id}
	}

	return nil
}
