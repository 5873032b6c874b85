package cache

import (
	"context"
	"sync"

	"github.com/qiyascc/trendsync/internal/domain/marketplace"
)

// InMemorySubmissionGuard is the single-process fallback used when no
// redis instance is configured.
type InMemorySubmissionGuard struct {
	mu   sync.Mutex
	held map[string]struct{}
}

var _ marketplace.SubmissionGuard = (*InMemorySubmissionGuard)(nil)

func NewInMemorySubmissionGuard() *InMemorySubmissionGuard {
	return &InMemorySubmissionGuard{held: make(map[string]struct{})}
}

func (g *InMemorySubmissionGuard) Acquire(_ context.Context, barcode string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.held[barcode]; ok {
		return false, nil
	}
	g.held[barcode] = struct{}{}
	return true, nil
}

func (g *InMemorySubmissionGuard) Release(_ context.Context, barcode string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.held, barcode)
	return nil
}
