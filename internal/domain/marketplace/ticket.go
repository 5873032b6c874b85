package marketplace

import (
	"time"

	"github.com/google/uuid"
)

// TicketStatus is the lifecycle state of a submission ticket.
type TicketStatus string

const (
	TicketPending         TicketStatus = "pending"
	TicketProcessing      TicketStatus = "processing"
	TicketCompleted       TicketStatus = "completed"
	TicketPartiallyFailed TicketStatus = "partially_failed"
	TicketFailed          TicketStatus = "failed"
)

// IsTerminal reports whether no further transitions are possible.
// PartiallyFailed is not terminal: it is the state a ticket passes through
// while a corrective retry is being prepared.
func (s TicketStatus) IsTerminal() bool {
	return s == TicketCompleted || s == TicketFailed
}

// MaxCorrectiveRetries bounds how many corrected batches may be submitted
// for one ticket after the initial attempt.
const MaxCorrectiveRetries = 3

// SubmissionTicket tracks one product submission through the marketplace
// batch lifecycle.
type SubmissionTicket struct {
	ID             uuid.UUID
	ProductID      uuid.UUID
	Barcode        string
	BatchRequestID string
	Status         TicketStatus
	FailureReasons []string
	RetryCount     int
	CreatedAt      time.Time
	LastCheckedAt  time.Time
}

// NewSubmissionTicket builds a ticket for a batch that was just accepted.
// The marketplace acknowledged the batch, so the ticket starts in
// Processing rather than Pending.
func NewSubmissionTicket(productID uuid.UUID, barcode, batchRequestID string) *SubmissionTicket {
	now := time.Now().UTC()
	return &SubmissionTicket{
		ID:             uuid.New(),
		ProductID:      productID,
		Barcode:        barcode,
		BatchRequestID: batchRequestID,
		Status:         TicketProcessing,
		CreatedAt:      now,
		LastCheckedAt:  now,
	}
}

// MarkChecked records a poll without changing state.
func (t *SubmissionTicket) MarkChecked() {
	t.LastCheckedAt = time.Now().UTC()
}

// MarkCompleted transitions the ticket to Completed and clears any failure
// reasons carried over from earlier attempts.
func (t *SubmissionTicket) MarkCompleted() error {
	if t.Status.IsTerminal() {
		return ErrTicketTerminal
	}
	t.Status = TicketCompleted
	t.FailureReasons = nil
	t.LastCheckedAt = time.Now().UTC()
	return nil
}

// MarkPartiallyFailed records correctable failures ahead of a retry.
func (t *SubmissionTicket) MarkPartiallyFailed(reasons []string) error {
	if t.Status.IsTerminal() {
		return ErrTicketTerminal
	}
	t.Status = TicketPartiallyFailed
	t.FailureReasons = reasons
	t.LastCheckedAt = time.Now().UTC()
	return nil
}

// MarkFailed transitions the ticket to Failed, preserving the reasons that
// ended it.
func (t *SubmissionTicket) MarkFailed(reasons []string) error {
	if t.Status.IsTerminal() {
		return ErrTicketTerminal
	}
	t.Status = TicketFailed
	t.FailureReasons = reasons
	t.LastCheckedAt = time.Now().UTC()
	return nil
}

// CanRetry reports whether another corrective submission is allowed.
func (t *SubmissionTicket) CanRetry() bool {
	return !t.Status.IsTerminal() && t.RetryCount < MaxCorrectiveRetries
}

// BeginRetry points the ticket at a freshly submitted corrected batch and
// consumes one unit of the retry budget. The previous failure reasons stay
// on the ticket until the new batch reports back.
func (t *SubmissionTicket) BeginRetry(batchRequestID string) error {
	if !t.CanRetry() {
		return ErrRetryBudgetExhausted
	}
	t.BatchRequestID = batchRequestID
	t.Status = TicketProcessing
	t.RetryCount++
	t.LastCheckedAt = time.Now().UTC()
	return nil
}
