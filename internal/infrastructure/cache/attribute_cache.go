package cache

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/qiyascc/trendsync/internal/domain/marketplace"
)

// AttributeSchemaCache memoizes per-category attribute schemas. Population
// is single-flight per category id, so a burst of resolutions for one
// category causes exactly one remote fetch.
type AttributeSchemaCache struct {
	source marketplace.AttributeSource
	logger *zap.Logger

	group   singleflight.Group
	mu      sync.RWMutex
	schemas map[int][]marketplace.AttributeDefinition
}

var _ marketplace.SchemaProvider = (*AttributeSchemaCache)(nil)

func NewAttributeSchemaCache(source marketplace.AttributeSource, logger *zap.Logger) *AttributeSchemaCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttributeSchemaCache{
		source:  source,
		logger:  logger,
		schemas: make(map[int][]marketplace.AttributeDefinition),
	}
}

// AttributesFor returns the memoized schema for a category, fetching it on
// first use. A category with no attributes memoizes an empty, non-nil
// slice; only fetch errors surface as SchemaUnavailable.
func (c *AttributeSchemaCache) AttributesFor(ctx context.Context, categoryID int) ([]marketplace.AttributeDefinition, error) {
	c.mu.RLock()
	defs, ok := c.schemas[categoryID]
	c.mu.RUnlock()
	if ok {
		return defs, nil
	}

	key := strconv.Itoa(categoryID)
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		c.mu.RLock()
		cached, ok := c.schemas[categoryID]
		c.mu.RUnlock()
		if ok {
			return cached, nil
		}

		fetched, err := c.source.FetchCategoryAttributes(ctx, categoryID)
		if err != nil {
			return nil, fmt.Errorf("%w: category %d: %v", marketplace.ErrSchemaUnavailable, categoryID, err)
		}
		if fetched == nil {
			fetched = []marketplace.AttributeDefinition{}
		}
		if len(fetched) == 0 {
			c.logger.Debug("category has no attributes", zap.Int("category_id", categoryID))
		}

		c.mu.Lock()
		c.schemas[categoryID] = fetched
		c.mu.Unlock()
		return fetched, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]marketplace.AttributeDefinition), nil
}

// Invalidate drops every memoized schema.
func (c *AttributeSchemaCache) Invalidate() {
	c.mu.Lock()
	c.schemas = make(map[int][]marketplace.AttributeDefinition)
	c.mu.Unlock()
	c.logger.Info("attribute schema cache invalidated")
}
