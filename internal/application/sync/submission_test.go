package sync

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/qiyascc/trendsync/internal/domain/marketplace"
)

// memoryTicketStore is a map-backed TicketStore for tests.
type memoryTicketStore struct {
	mu      sync.Mutex
	tickets map[uuid.UUID]marketplace.SubmissionTicket
}

func newMemoryTicketStore() *memoryTicketStore {
	return &memoryTicketStore{tickets: make(map[uuid.UUID]marketplace.SubmissionTicket)}
}

func (s *memoryTicketStore) Save(_ context.Context, ticket *marketplace.SubmissionTicket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickets[ticket.ID] = *ticket
	return nil
}

func (s *memoryTicketStore) FindByID(_ context.Context, id uuid.UUID) (*marketplace.SubmissionTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	if !ok {
		return nil, marketplace.ErrTicketNotFound
	}
	out := t
	return &out, nil
}

func (s *memoryTicketStore) FindByBarcode(_ context.Context, barcode string) (*marketplace.SubmissionTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tickets {
		if t.Barcode == barcode {
			out := t
			return &out, nil
		}
	}
	return nil, marketplace.ErrTicketNotFound
}

// scriptedGateway returns canned batch results in sequence and records
// submissions.
type scriptedGateway struct {
	mu        sync.Mutex
	submits   [][]marketplace.ProductPayload
	submitErr error
	results   []*marketplace.BatchResult
	resultIdx int
	statusErr error
}

func (g *scriptedGateway) SubmitProducts(_ context.Context, payloads []marketplace.ProductPayload) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.submitErr != nil {
		return "", g.submitErr
	}
	g.submits = append(g.submits, payloads)
	return fmt.Sprintf("batch-%d", len(g.submits)), nil
}

func (g *scriptedGateway) BatchStatus(_ context.Context, _ string) (*marketplace.BatchResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.statusErr != nil {
		return nil, g.statusErr
	}
	if g.resultIdx >= len(g.results) {
		return g.results[len(g.results)-1], nil
	}
	r := g.results[g.resultIdx]
	g.resultIdx++
	return r, nil
}

func (g *scriptedGateway) submitCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.submits)
}

type memoryGuard struct {
	mu   sync.Mutex
	held map[string]bool
}

func newMemoryGuard() *memoryGuard {
	return &memoryGuard{held: make(map[string]bool)}
}

func (g *memoryGuard) Acquire(_ context.Context, barcode string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.held[barcode] {
		return false, nil
	}
	g.held[barcode] = true
	return true, nil
}

func (g *memoryGuard) Release(_ context.Context, barcode string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.held, barcode)
	return nil
}

func (g *memoryGuard) isHeld(barcode string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.held[barcode]
}

func testPollConfig() PollConfig {
	return PollConfig{
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		MaxElapsed:      time.Second,
		MaxPolls:        10,
	}
}

func successResult() *marketplace.BatchResult {
	return &marketplace.BatchResult{
		Status: "COMPLETED",
		Items:  []marketplace.BatchItemResult{{Status: marketplace.BatchItemSuccess}},
	}
}

func failureResult(reasons ...string) *marketplace.BatchResult {
	return &marketplace.BatchResult{
		Status: "COMPLETED",
		Items: []marketplace.BatchItemResult{
			{Status: marketplace.BatchItemError, FailureReasons: reasons},
		},
	}
}

func processingResult() *marketplace.BatchResult {
	return &marketplace.BatchResult{Status: "PROCESSING"}
}

func newMachine(gateway *scriptedGateway, store *memoryTicketStore, guard *memoryGuard) *SubmissionStateMachine {
	return NewSubmissionStateMachine(gateway, store, guard, testPollConfig(), zap.NewNop())
}

func TestSubmitOpensProcessingTicket(t *testing.T) {
	gateway := &scriptedGateway{results: []*marketplace.BatchResult{successResult()}}
	store := newMemoryTicketStore()
	guard := newMemoryGuard()
	machine := newMachine(gateway, store, guard)

	ticket, err := machine.Submit(context.Background(), uuid.New(), "b1", []marketplace.ProductPayload{{Barcode: "b1"}})
	require.NoError(t, err)
	assert.Equal(t, marketplace.TicketProcessing, ticket.Status)
	assert.Equal(t, "batch-1", ticket.BatchRequestID)
	assert.True(t, guard.isHeld("b1"))

	saved, err := store.FindByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, saved.ID)
}

func TestSubmitRejectsDuplicateBarcode(t *testing.T) {
	gateway := &scriptedGateway{results: []*marketplace.BatchResult{processingResult()}}
	machine := newMachine(gateway, newMemoryTicketStore(), newMemoryGuard())

	_, err := machine.Submit(context.Background(), uuid.New(), "b1", nil)
	require.NoError(t, err)

	_, err = machine.Submit(context.Background(), uuid.New(), "b1", nil)
	assert.ErrorIs(t, err, marketplace.ErrSubmissionInFlight)
}

func TestSubmitReleasesGuardOnRejection(t *testing.T) {
	gateway := &scriptedGateway{submitErr: marketplace.ErrRejectedAtSubmission}
	guard := newMemoryGuard()
	machine := newMachine(gateway, newMemoryTicketStore(), guard)

	_, err := machine.Submit(context.Background(), uuid.New(), "b1", nil)
	assert.ErrorIs(t, err, marketplace.ErrRejectedAtSubmission)
	assert.False(t, guard.isHeld("b1"))
}

func TestAwaitCompletes(t *testing.T) {
	gateway := &scriptedGateway{results: []*marketplace.BatchResult{
		processingResult(),
		successResult(),
	}}
	store := newMemoryTicketStore()
	guard := newMemoryGuard()
	machine := newMachine(gateway, store, guard)

	ticket, err := machine.Submit(context.Background(), uuid.New(), "b1", nil)
	require.NoError(t, err)

	final, err := machine.Await(context.Background(), ticket.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, marketplace.TicketCompleted, final.Status)
	assert.Empty(t, final.FailureReasons)
	assert.False(t, guard.isHeld("b1"))
}

func TestAwaitCorrectiveRetry(t *testing.T) {
	gateway := &scriptedGateway{results: []*marketplace.BatchResult{
		failureResult("Missing required attribute: Renk"),
		successResult(),
	}}
	store := newMemoryTicketStore()
	guard := newMemoryGuard()
	machine := newMachine(gateway, store, guard)

	ticket, err := machine.Submit(context.Background(), uuid.New(), "b1", nil)
	require.NoError(t, err)

	var gotMissing []string
	rebuild := func(_ context.Context, _ *marketplace.SubmissionTicket, missing []string) ([]marketplace.ProductPayload, error) {
		gotMissing = missing
		return []marketplace.ProductPayload{{Barcode: "b1"}}, nil
	}

	final, err := machine.Await(context.Background(), ticket.ID, rebuild)
	require.NoError(t, err)
	assert.Equal(t, marketplace.TicketCompleted, final.Status)
	assert.Equal(t, 1, final.RetryCount)
	assert.Equal(t, []string{"Renk"}, gotMissing)
	// initial submit plus one corrective resubmit
	assert.Equal(t, 2, gateway.submitCount())
	assert.False(t, guard.isHeld("b1"))
}

func TestAwaitRetryBudgetExhausted(t *testing.T) {
	// every poll reports the same correctable failure
	gateway := &scriptedGateway{results: []*marketplace.BatchResult{
		failureResult("Missing required attribute: Renk"),
	}}
	store := newMemoryTicketStore()
	machine := newMachine(gateway, store, newMemoryGuard())

	ticket, err := machine.Submit(context.Background(), uuid.New(), "b1", nil)
	require.NoError(t, err)

	rebuild := func(_ context.Context, _ *marketplace.SubmissionTicket, _ []string) ([]marketplace.ProductPayload, error) {
		return []marketplace.ProductPayload{{Barcode: "b1"}}, nil
	}

	final, err := machine.Await(context.Background(), ticket.ID, rebuild)
	require.ErrorIs(t, err, marketplace.ErrRetryBudgetExhausted)
	assert.Equal(t, marketplace.TicketFailed, final.Status)
	assert.Equal(t, marketplace.MaxCorrectiveRetries, final.RetryCount)
	// the reasons that ended the ticket stay on it
	assert.Equal(t, []string{"Missing required attribute: Renk"}, final.FailureReasons)
	assert.Equal(t, 1+marketplace.MaxCorrectiveRetries, gateway.submitCount())
}

func TestAwaitUnrecognizedFailureDoesNotRetry(t *testing.T) {
	gateway := &scriptedGateway{results: []*marketplace.BatchResult{
		failureResult("Invalid image url"),
	}}
	store := newMemoryTicketStore()
	machine := newMachine(gateway, store, newMemoryGuard())

	ticket, err := machine.Submit(context.Background(), uuid.New(), "b1", nil)
	require.NoError(t, err)

	rebuild := func(_ context.Context, _ *marketplace.SubmissionTicket, _ []string) ([]marketplace.ProductPayload, error) {
		t.Fatal("rebuild must not be called for unrecognized failures")
		return nil, nil
	}

	final, err := machine.Await(context.Background(), ticket.ID, rebuild)
	require.ErrorIs(t, err, marketplace.ErrSubmissionFailed)
	assert.Equal(t, marketplace.TicketFailed, final.Status)
	assert.Zero(t, final.RetryCount)
	assert.Equal(t, 1, gateway.submitCount())
}

func TestAwaitPollTimeout(t *testing.T) {
	gateway := &scriptedGateway{results: []*marketplace.BatchResult{processingResult()}}
	store := newMemoryTicketStore()
	machine := newMachine(gateway, store, newMemoryGuard())

	ticket, err := machine.Submit(context.Background(), uuid.New(), "b1", nil)
	require.NoError(t, err)

	final, err := machine.Await(context.Background(), ticket.ID, nil)
	require.ErrorIs(t, err, marketplace.ErrPollTimeout)
	assert.Equal(t, marketplace.TicketFailed, final.Status)
	assert.NotEmpty(t, final.FailureReasons)
}

func TestAwaitCorrectionNotPossibleFails(t *testing.T) {
	gateway := &scriptedGateway{results: []*marketplace.BatchResult{
		failureResult("Missing required attribute: Koleksiyon"),
	}}
	store := newMemoryTicketStore()
	machine := newMachine(gateway, store, newMemoryGuard())

	ticket, err := machine.Submit(context.Background(), uuid.New(), "b1", nil)
	require.NoError(t, err)

	rebuild := func(_ context.Context, _ *marketplace.SubmissionTicket, _ []string) ([]marketplace.ProductPayload, error) {
		return nil, marketplace.ErrCorrectionNotPossible
	}

	final, err := machine.Await(context.Background(), ticket.ID, rebuild)
	require.ErrorIs(t, err, marketplace.ErrSubmissionFailed)
	assert.Equal(t, marketplace.TicketFailed, final.Status)
	assert.Equal(t, 1, gateway.submitCount())
}

func TestAwaitCoalescesConcurrentCalls(t *testing.T) {
	gateway := &scriptedGateway{results: []*marketplace.BatchResult{
		processingResult(),
		processingResult(),
		successResult(),
	}}
	store := newMemoryTicketStore()
	machine := newMachine(gateway, store, newMemoryGuard())

	ticket, err := machine.Submit(context.Background(), uuid.New(), "b1", nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*marketplace.SubmissionTicket, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			final, err := machine.Await(context.Background(), ticket.ID, nil)
			assert.NoError(t, err)
			results[i] = final
		}(i)
	}
	wg.Wait()

	for _, final := range results {
		require.NotNil(t, final)
		assert.Equal(t, marketplace.TicketCompleted, final.Status)
	}
}

func TestAwaitTerminalTicketReturnsImmediately(t *testing.T) {
	gateway := &scriptedGateway{results: []*marketplace.BatchResult{successResult()}}
	store := newMemoryTicketStore()
	machine := newMachine(gateway, store, newMemoryGuard())

	ticket, err := machine.Submit(context.Background(), uuid.New(), "b1", nil)
	require.NoError(t, err)

	first, err := machine.Await(context.Background(), ticket.ID, nil)
	require.NoError(t, err)
	require.Equal(t, marketplace.TicketCompleted, first.Status)

	statusCalls := gateway.resultIdx
	again, err := machine.Await(context.Background(), ticket.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, marketplace.TicketCompleted, again.Status)
	assert.Equal(t, statusCalls, gateway.resultIdx)
}
