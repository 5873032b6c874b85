package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/qiyascc/trendsync/internal/domain/marketplace"
)

// PollConfig bounds the batch-status poll loop.
type PollConfig struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsed      time.Duration
	MaxPolls        int
}

// DefaultPollConfig returns the production poll bounds.
func DefaultPollConfig() PollConfig {
	return PollConfig{
		InitialInterval: 2 * time.Second,
		MaxInterval:     30 * time.Second,
		MaxElapsed:      3 * time.Minute,
		MaxPolls:        10,
	}
}

// RebuildFunc produces a corrected payload for a ticket's product after
// failures named missing attributes. It returns ErrCorrectionNotPossible
// when the named attributes cannot be satisfied by rebuilding.
type RebuildFunc func(ctx context.Context, ticket *marketplace.SubmissionTicket, missingAttributes []string) ([]marketplace.ProductPayload, error)

// SubmissionStateMachine drives a submission ticket through the batch
// lifecycle: submit, poll with bounded backoff, and retry correctively
// when the marketplace names missing required attributes.
type SubmissionStateMachine struct {
	gateway marketplace.SubmissionGateway
	tickets marketplace.TicketStore
	guard   marketplace.SubmissionGuard
	logger  *zap.Logger
	poll    PollConfig

	// pollGroup coalesces concurrent Await calls per ticket so each
	// ticket has at most one in-flight poll loop.
	pollGroup singleflight.Group
}

func NewSubmissionStateMachine(
	gateway marketplace.SubmissionGateway,
	tickets marketplace.TicketStore,
	guard marketplace.SubmissionGuard,
	poll PollConfig,
	logger *zap.Logger,
) *SubmissionStateMachine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if poll.InitialInterval <= 0 {
		poll = DefaultPollConfig()
	}
	return &SubmissionStateMachine{
		gateway: gateway,
		tickets: tickets,
		guard:   guard,
		logger:  logger,
		poll:    poll,
	}
}

// Submit posts a batch for one product and opens a ticket for it. The
// per-barcode guard rejects a second submission while the first is
// unresolved.
func (m *SubmissionStateMachine) Submit(ctx context.Context, productID uuid.UUID, barcode string, payloads []marketplace.ProductPayload) (*marketplace.SubmissionTicket, error) {
	acquired, err := m.guard.Acquire(ctx, barcode)
	if err != nil {
		return nil, fmt.Errorf("acquire submission guard: %w", err)
	}
	if !acquired {
		return nil, fmt.Errorf("%w: barcode %s", marketplace.ErrSubmissionInFlight, barcode)
	}

	batchID, err := m.gateway.SubmitProducts(ctx, payloads)
	if err != nil {
		if releaseErr := m.guard.Release(ctx, barcode); releaseErr != nil {
			m.logger.Error("failed to release submission guard after rejected submit",
				zap.String("barcode", barcode),
				zap.Error(releaseErr))
		}
		return nil, err
	}

	ticket := marketplace.NewSubmissionTicket(productID, barcode, batchID)
	if err := m.tickets.Save(ctx, ticket); err != nil {
		return nil, fmt.Errorf("save ticket: %w", err)
	}
	m.logger.Info("submission ticket opened",
		zap.String("ticket_id", ticket.ID.String()),
		zap.String("barcode", barcode),
		zap.String("batch_request_id", batchID))
	return ticket, nil
}

// Await polls the ticket's batch until it reaches a terminal outcome.
// Concurrent calls for the same ticket share one poll loop. rebuild may
// be nil, which disables corrective retries.
func (m *SubmissionStateMachine) Await(ctx context.Context, ticketID uuid.UUID, rebuild RebuildFunc) (*marketplace.SubmissionTicket, error) {
	v, err, _ := m.pollGroup.Do(ticketID.String(), func() (interface{}, error) {
		return m.pollLoop(ctx, ticketID, rebuild)
	})
	if v != nil {
		return v.(*marketplace.SubmissionTicket), err
	}
	return nil, err
}

func (m *SubmissionStateMachine) pollLoop(ctx context.Context, ticketID uuid.UUID, rebuild RebuildFunc) (*marketplace.SubmissionTicket, error) {
	ticket, err := m.tickets.FindByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status.IsTerminal() {
		return ticket, nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = m.poll.InitialInterval
	bo.MaxInterval = m.poll.MaxInterval
	bo.MaxElapsedTime = m.poll.MaxElapsed
	bo.Reset()

	polls := 0
	for {
		if polls >= m.poll.MaxPolls {
			return m.timeOut(ctx, ticket)
		}
		wait := bo.NextBackOff()
		if wait == backoff.Stop {
			return m.timeOut(ctx, ticket)
		}
		select {
		case <-ctx.Done():
			// The ticket stays Processing; a later Await resumes it.
			return ticket, ctx.Err()
		case <-time.After(wait):
		}
		polls++

		result, err := m.gateway.BatchStatus(ctx, ticket.BatchRequestID)
		if err != nil {
			m.logger.Warn("batch status poll failed",
				zap.String("ticket_id", ticket.ID.String()),
				zap.Error(err))
			continue
		}
		ticket.MarkChecked()

		if len(result.Items) == 0 {
			// The marketplace has acknowledged the batch but not
			// processed it yet.
			if err := m.tickets.Save(ctx, ticket); err != nil {
				return ticket, fmt.Errorf("save ticket: %w", err)
			}
			continue
		}

		reasons, failed := collectFailures(result)
		if !failed {
			return m.complete(ctx, ticket)
		}

		done, outcome, err := m.handleFailures(ctx, ticket, reasons, rebuild)
		if done {
			return outcome, err
		}
		// A corrected batch was submitted; poll it with a fresh budget.
		bo.Reset()
		polls = 0
	}
}

// handleFailures decides between a corrective retry and a terminal
// failure. done is false only when a corrected batch was submitted.
func (m *SubmissionStateMachine) handleFailures(ctx context.Context, ticket *marketplace.SubmissionTicket, reasons []string, rebuild RebuildFunc) (bool, *marketplace.SubmissionTicket, error) {
	if rebuild == nil || !allRecognized(reasons) {
		return true, ticket, m.fail(ctx, ticket, reasons, marketplace.ErrSubmissionFailed)
	}
	if !ticket.CanRetry() {
		return true, ticket, m.fail(ctx, ticket, reasons, marketplace.ErrRetryBudgetExhausted)
	}

	if err := ticket.MarkPartiallyFailed(reasons); err != nil {
		return true, ticket, err
	}
	if err := m.tickets.Save(ctx, ticket); err != nil {
		return true, ticket, fmt.Errorf("save ticket: %w", err)
	}

	missing := missingAttributeNames(reasons)
	payloads, err := rebuild(ctx, ticket, missing)
	if err != nil {
		m.logger.Warn("corrective rebuild failed",
			zap.String("ticket_id", ticket.ID.String()),
			zap.Strings("missing_attributes", missing),
			zap.Error(err))
		return true, ticket, m.fail(ctx, ticket, reasons, marketplace.ErrSubmissionFailed)
	}

	batchID, err := m.gateway.SubmitProducts(ctx, payloads)
	if err != nil {
		return true, ticket, m.fail(ctx, ticket, reasons, marketplace.ErrSubmissionFailed)
	}
	if err := ticket.BeginRetry(batchID); err != nil {
		return true, ticket, m.fail(ctx, ticket, reasons, marketplace.ErrRetryBudgetExhausted)
	}
	if err := m.tickets.Save(ctx, ticket); err != nil {
		return true, ticket, fmt.Errorf("save ticket: %w", err)
	}
	m.logger.Info("corrective retry submitted",
		zap.String("ticket_id", ticket.ID.String()),
		zap.String("batch_request_id", batchID),
		zap.Int("retry_count", ticket.RetryCount),
		zap.Strings("missing_attributes", missing))
	return false, nil, nil
}

func (m *SubmissionStateMachine) complete(ctx context.Context, ticket *marketplace.SubmissionTicket) (*marketplace.SubmissionTicket, error) {
	if err := ticket.MarkCompleted(); err != nil {
		return ticket, err
	}
	if err := m.tickets.Save(ctx, ticket); err != nil {
		return ticket, fmt.Errorf("save ticket: %w", err)
	}
	m.releaseGuard(ctx, ticket.Barcode)
	m.logger.Info("submission completed",
		zap.String("ticket_id", ticket.ID.String()),
		zap.String("barcode", ticket.Barcode),
		zap.Int("retry_count", ticket.RetryCount))
	return ticket, nil
}

func (m *SubmissionStateMachine) fail(ctx context.Context, ticket *marketplace.SubmissionTicket, reasons []string, cause error) error {
	if err := ticket.MarkFailed(reasons); err != nil {
		return err
	}
	if err := m.tickets.Save(ctx, ticket); err != nil {
		return fmt.Errorf("save ticket: %w", err)
	}
	m.releaseGuard(ctx, ticket.Barcode)
	m.logger.Warn("submission failed",
		zap.String("ticket_id", ticket.ID.String()),
		zap.String("barcode", ticket.Barcode),
		zap.Strings("reasons", reasons),
		zap.Int("retry_count", ticket.RetryCount),
		zap.Error(cause))
	return fmt.Errorf("%w: %s", cause, ticket.Barcode)
}

func (m *SubmissionStateMachine) timeOut(ctx context.Context, ticket *marketplace.SubmissionTicket) (*marketplace.SubmissionTicket, error) {
	err := m.fail(ctx, ticket, []string{"batch did not reach a terminal status within the poll budget"}, marketplace.ErrPollTimeout)
	return ticket, err
}

func (m *SubmissionStateMachine) releaseGuard(ctx context.Context, barcode string) {
	if err := m.guard.Release(ctx, barcode); err != nil {
		m.logger.Error("failed to release submission guard",
			zap.String("barcode", barcode),
			zap.Error(err))
	}
}

// collectFailures gathers failure reasons across batch items. failed is
// true when any item reported an error.
func collectFailures(result *marketplace.BatchResult) ([]string, bool) {
	var reasons []string
	failed := false
	for _, item := range result.Items {
		if item.Status == marketplace.BatchItemSuccess {
			continue
		}
		failed = true
		if len(item.FailureReasons) > 0 {
			reasons = append(reasons, item.FailureReasons...)
		} else {
			reasons = append(reasons, "item failed without a reported reason")
		}
	}
	return reasons, failed
}
