package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/qiyascc/trendsync/internal/domain/marketplace"
)

type countingAttributeSource struct {
	fetches atomic.Int32
	defs    map[int][]marketplace.AttributeDefinition
	err     error
}

func (s *countingAttributeSource) FetchCategoryAttributes(_ context.Context, categoryID int) ([]marketplace.AttributeDefinition, error) {
	s.fetches.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.defs[categoryID], nil
}

func TestAttributeSchemaCacheFetchesOncePerCategory(t *testing.T) {
	source := &countingAttributeSource{defs: map[int][]marketplace.AttributeDefinition{
		544: {{ID: 348, Name: "Renk", Required: true}},
		546: {{ID: 349, Name: "Beden", Required: true}},
	}}
	cache := NewAttributeSchemaCache(source, zap.NewNop())

	for i := 0; i < 3; i++ {
		defs, err := cache.AttributesFor(context.Background(), 544)
		require.NoError(t, err)
		require.Len(t, defs, 1)
		assert.Equal(t, "Renk", defs[0].Name)
	}
	defs, err := cache.AttributesFor(context.Background(), 546)
	require.NoError(t, err)
	assert.Equal(t, "Beden", defs[0].Name)

	assert.Equal(t, int32(2), source.fetches.Load())
}

func TestAttributeSchemaCacheSingleFlight(t *testing.T) {
	source := &countingAttributeSource{defs: map[int][]marketplace.AttributeDefinition{
		544: {{ID: 348, Name: "Renk"}},
	}}
	cache := NewAttributeSchemaCache(source, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.AttributesFor(context.Background(), 544)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), source.fetches.Load())
}

func TestAttributeSchemaCacheEmptySchemaIsCached(t *testing.T) {
	source := &countingAttributeSource{defs: map[int][]marketplace.AttributeDefinition{}}
	cache := NewAttributeSchemaCache(source, zap.NewNop())

	defs, err := cache.AttributesFor(context.Background(), 999)
	require.NoError(t, err)
	assert.NotNil(t, defs)
	assert.Empty(t, defs)

	_, err = cache.AttributesFor(context.Background(), 999)
	require.NoError(t, err)
	assert.Equal(t, int32(1), source.fetches.Load())
}

func TestAttributeSchemaCacheErrorNotCached(t *testing.T) {
	source := &countingAttributeSource{err: errors.New("timeout")}
	cache := NewAttributeSchemaCache(source, zap.NewNop())

	_, err := cache.AttributesFor(context.Background(), 544)
	assert.ErrorIs(t, err, marketplace.ErrSchemaUnavailable)

	source.err = nil
	source.defs = map[int][]marketplace.AttributeDefinition{544: {{ID: 348, Name: "Renk"}}}
	defs, err := cache.AttributesFor(context.Background(), 544)
	require.NoError(t, err)
	assert.Len(t, defs, 1)
}

func TestAttributeSchemaCacheInvalidate(t *testing.T) {
	source := &countingAttributeSource{defs: map[int][]marketplace.AttributeDefinition{
		544: {{ID: 348, Name: "Renk"}},
	}}
	cache := NewAttributeSchemaCache(source, zap.NewNop())

	_, err := cache.AttributesFor(context.Background(), 544)
	require.NoError(t, err)

	cache.Invalidate()

	_, err = cache.AttributesFor(context.Background(), 544)
	require.NoError(t, err)
	assert.Equal(t, int32(2), source.fetches.Load())
}
