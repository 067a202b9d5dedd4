package settlement

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/curator-me/lms-bank/internal/config"
	"github.com/curator-me/lms-bank/internal/domain/outbox"
	"github.com/curator-me/lms-bank/internal/domain/shared"
	"github.com/curator-me/lms-bank/internal/platform/messaging/producers"
)

// Poller drains the settlement outbox on an interval and fans the messages out
// to a worker pool. Messages that exhaust their retry budget are marked
// FAILED_TO_PUBLISH and routed to the DLQ.
type Poller struct {
	outboxRepo       outbox.Repository
	publisher        EventPublisher
	dlqProducer      producers.DeadLetterPublisher
	pool             *ants.Pool
	logger           *slog.Logger
	pollInterval     time.Duration
	batchSize        int
	maxRetryAttempts int
}

func NewPoller(
	cfg *config.OutboxConfig,
	poolSize int,
	outboxRepo outbox.Repository,
	publisher EventPublisher,
	dlqProducer producers.DeadLetterPublisher,
	logger *slog.Logger,
) (*Poller, error) {
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create settlement worker pool: %w", err)
	}

	return &Poller{
		outboxRepo:       outboxRepo,
		publisher:        publisher,
		dlqProducer:      dlqProducer,
		pool:             pool,
		logger:           logger,
		pollInterval:     cfg.PollingInterval,
		batchSize:        cfg.BatchSize,
		maxRetryAttempts: cfg.MaxRetryAttempts,
	}, nil
}

// Start begins polling until context is canceled
func (p *Poller) Start(ctx context.Context) {
	p.logger.Info("Starting settlement outbox poller",
		"poll_interval", p.pollInterval.String(),
		"batch_size", p.batchSize,
		"max_retry_attempts", p.maxRetryAttempts,
		"pool_capacity", p.pool.Cap(),
	)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Settlement poller stopping due to context cancellation.")
			return
		case <-ticker.C:
			p.logger.Debug("Settlement poller tick: processing pending messages")
			if err := p.processPendingMessages(ctx); err != nil {
				p.logger.Error("Error during batch processing of pending outbox messages", "error", err)
			}
		}
	}
}

// Shutdown releases the worker pool
func (p *Poller) Shutdown() {
	p.logger.Info("Shutting down settlement worker pool", "running_workers", p.pool.Running())
	p.pool.Release()
}

func (p *Poller) processPendingMessages(ctx context.Context) error {
	messages, err := p.outboxRepo.GetPending(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("failed to get pending outbox messages: %w", err)
	}

	if len(messages) == 0 {
		p.logger.Debug("No pending outbox messages found.")
		return nil
	}

	p.logger.Info("Fetched pending outbox messages", "count", len(messages))

	var wg sync.WaitGroup
	for _, msg := range messages {
		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			p.handleMessage(ctx, msg)
		})
		if submitErr != nil {
			wg.Done()
			p.logger.Error("Failed to submit outbox message to worker pool", "outbox_id", msg.ID, "error", submitErr)
		}
	}
	wg.Wait()

	return nil
}

func (p *Poller) handleMessage(ctx context.Context, msg *outbox.Message) {
	err := p.publisher.PublishEvent(ctx, msg)
	if err == nil {
		return
	}

	p.logger.Error("Failed to publish outbox message",
		"outbox_id", msg.ID, "transaction_id", msg.TransactionID, "current_attempts", msg.Attempts, "error", err,
	)

	if errInc := p.outboxRepo.IncrementAttempts(ctx, msg.ID); errInc != nil {
		p.logger.Error("Failed to increment attempts for outbox message", "outbox_id", msg.ID, "error", errInc)
		return
	}

	if msg.Attempts+1 >= p.maxRetryAttempts {
		p.logger.Warn("Max retry attempts reached for outbox message, marking as FAILED_TO_PUBLISH",
			"outbox_id", msg.ID, "transaction_id", msg.TransactionID, "attempts_made", msg.Attempts+1,
		)
		if errUpdate := p.outboxRepo.UpdateStatus(ctx, msg.ID, shared.OutboxStatusFailedToPublish); errUpdate != nil {
			p.logger.Error("Failed to update outbox status to FAILED_TO_PUBLISH after max retries", "outbox_id", msg.ID, "error", errUpdate)
			return
		}
		p.routeToDLQ(ctx, msg)
	}
}

func (p *Poller) routeToDLQ(ctx context.Context, msg *outbox.Message) {
	if p.dlqProducer == nil {
		p.logger.Warn("DLQ producer not configured, dropping failed outbox message", "outbox_id", msg.ID)
		return
	}

	reason := fmt.Sprintf("exceeded %d publish attempts", p.maxRetryAttempts)
	if err := p.dlqProducer.PublishToDLQ(ctx, msg.TransactionID.String(), msg.Payload, reason); err != nil {
		p.logger.Error("Failed to route outbox message to DLQ", "outbox_id", msg.ID, "error", err)
	}
}
