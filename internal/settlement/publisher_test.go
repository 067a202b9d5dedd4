package settlement

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/curator-me/lms-bank/internal/domain/outbox"
	"github.com/curator-me/lms-bank/internal/domain/shared"
)

// MockOutboxRepo for testing
type MockOutboxRepo struct {
	mock.Mock
}

func (m *MockOutboxRepo) Create(ctx context.Context, message *outbox.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockOutboxRepo) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepo) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockOutboxRepo) IncrementAttempts(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepo) WithTx(tx pgx.Tx) outbox.Repository {
	args := m.Called(tx)
	return args.Get(0).(outbox.Repository)
}

// MockMessagePublisher for testing
type MockMessagePublisher struct {
	mock.Mock
}

func (m *MockMessagePublisher) Publish(ctx context.Context, key string, value interface{}) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockMessagePublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

func TestKafkaEventPublisher_PublishEvent(t *testing.T) {
	logger := slog.Default()

	txID := uuid.New()
	event := shared.NewSettlementEvent(shared.EventTransferCompleted, txID, "1111111111", "2222222222", 2500, "corr-1")
	msg, err := outbox.NewMessage(event)
	assert.NoError(t, err)
	msg.ID = 1

	tests := []struct {
		name          string
		message       *outbox.Message
		setupMocks    func(repo *MockOutboxRepo, producer *MockMessagePublisher)
		expectedError string
	}{
		{
			name:    "successful publish marks message processed",
			message: msg,
			setupMocks: func(repo *MockOutboxRepo, producer *MockMessagePublisher) {
				producer.On("Publish", mock.Anything, txID.String(), mock.Anything).Return(nil).Once()
				repo.On("UpdateStatus", mock.Anything, int64(1), shared.OutboxStatusProcessed).Return(nil).Once()
			},
		},
		{
			name:    "kafka publish failure leaves message pending",
			message: msg,
			setupMocks: func(repo *MockOutboxRepo, producer *MockMessagePublisher) {
				producer.On("Publish", mock.Anything, txID.String(), mock.Anything).Return(errors.New("broker unavailable")).Once()
			},
			expectedError: "failed to publish settlement event",
		},
		{
			name: "poisoned payload is marked failed without retry",
			message: &outbox.Message{
				ID:            2,
				TransactionID: txID,
				Payload:       []byte("{not json"),
			},
			setupMocks: func(repo *MockOutboxRepo, producer *MockMessagePublisher) {
				repo.On("UpdateStatus", mock.Anything, int64(2), shared.OutboxStatusFailedToPublish).Return(nil).Once()
			},
			expectedError: "unmarshal payload",
		},
		{
			name:    "update status failure after publish is surfaced",
			message: msg,
			setupMocks: func(repo *MockOutboxRepo, producer *MockMessagePublisher) {
				producer.On("Publish", mock.Anything, txID.String(), mock.Anything).Return(nil).Once()
				repo.On("UpdateStatus", mock.Anything, int64(1), shared.OutboxStatusProcessed).Return(errors.New("db error")).Once()
			},
			expectedError: "failed to mark outbox 1 as PROCESSED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &MockOutboxRepo{}
			mockProducer := &MockMessagePublisher{}
			tt.setupMocks(mockRepo, mockProducer)

			publisher := NewEventPublisher(mockRepo, mockProducer, logger)
			err := publisher.PublishEvent(context.Background(), tt.message)

			if tt.expectedError != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
			} else {
				assert.NoError(t, err)
			}

			mockRepo.AssertExpectations(t)
			mockProducer.AssertExpectations(t)
		})
	}
}
