package cache

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/qiyascc/trendsync/internal/domain/marketplace"
)

// TaxonomyCache memoizes the marketplace category tree. The first Tree or
// Leaves call fetches it; concurrent first calls share one fetch. A failed
// fetch caches nothing, so the next call retries.
type TaxonomyCache struct {
	source marketplace.TaxonomySource
	logger *zap.Logger

	group singleflight.Group
	mu    sync.RWMutex
	tree  []marketplace.CategoryNode
}

var _ marketplace.TaxonomyProvider = (*TaxonomyCache)(nil)

func NewTaxonomyCache(source marketplace.TaxonomySource, logger *zap.Logger) *TaxonomyCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaxonomyCache{source: source, logger: logger}
}

// Tree returns the memoized category tree, fetching it on first use.
func (c *TaxonomyCache) Tree(ctx context.Context) ([]marketplace.CategoryNode, error) {
	c.mu.RLock()
	tree := c.tree
	c.mu.RUnlock()
	if tree != nil {
		return tree, nil
	}

	v, err, _ := c.group.Do("tree", func() (interface{}, error) {
		c.mu.RLock()
		cached := c.tree
		c.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}

		fetched, err := c.source.FetchCategoryTree(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", marketplace.ErrTaxonomyUnavailable, err)
		}
		if len(fetched) == 0 {
			return nil, fmt.Errorf("%w: empty category tree", marketplace.ErrTaxonomyUnavailable)
		}

		c.mu.Lock()
		c.tree = fetched
		c.mu.Unlock()
		c.logger.Info("category tree cached", zap.Int("roots", len(fetched)))
		return fetched, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]marketplace.CategoryNode), nil
}

// Leaves returns all leaf categories of the memoized tree in pre-order.
func (c *TaxonomyCache) Leaves(ctx context.Context) ([]marketplace.CategoryNode, error) {
	tree, err := c.Tree(ctx)
	if err != nil {
		return nil, err
	}
	return marketplace.Leaves(tree), nil
}

// Invalidate drops the memoized tree. The next call fetches fresh data.
func (c *TaxonomyCache) Invalidate() {
	c.mu.Lock()
	c.tree = nil
	c.mu.Unlock()
	c.logger.Info("category tree cache invalidated")
}
