package sync

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/qiyascc/trendsync/internal/application/resolve"
	"github.com/qiyascc/trendsync/internal/domain/catalog"
	"github.com/qiyascc/trendsync/internal/domain/marketplace"
)

type memoryProductRepo struct {
	products map[uuid.UUID]*catalog.Product
}

func (r *memoryProductRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, marketplace.ErrProductNotFound
	}
	return p, nil
}

func (r *memoryProductRepo) FindByBarcode(_ context.Context, barcode string) (*catalog.Product, error) {
	for _, p := range r.products {
		if p.Barcode == barcode {
			return p, nil
		}
	}
	return nil, marketplace.ErrProductNotFound
}

func (r *memoryProductRepo) Save(_ context.Context, p *catalog.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *memoryProductRepo) List(context.Context, int, int) ([]*catalog.Product, error) {
	return nil, nil
}

type staticTaxonomy struct {
	leaves []marketplace.CategoryNode
}

func (s *staticTaxonomy) Tree(context.Context) ([]marketplace.CategoryNode, error) {
	return s.leaves, nil
}

func (s *staticTaxonomy) Leaves(context.Context) ([]marketplace.CategoryNode, error) {
	return s.leaves, nil
}

func (s *staticTaxonomy) Invalidate() {}

type staticSchemas struct {
	defs        map[int][]marketplace.AttributeDefinition
	invalidated int
}

func (s *staticSchemas) AttributesFor(_ context.Context, categoryID int) ([]marketplace.AttributeDefinition, error) {
	return s.defs[categoryID], nil
}

func (s *staticSchemas) Invalidate() { s.invalidated++ }

type staticBrands struct{ id int }

func (b *staticBrands) FindBrandID(context.Context, string) (int, error) {
	return b.id, nil
}

func newTestService(gateway *scriptedGateway, schemas *staticSchemas) (*ProductSyncService, *memoryProductRepo, *memoryTicketStore) {
	products := &memoryProductRepo{products: make(map[uuid.UUID]*catalog.Product)}
	store := newMemoryTicketStore()
	taxonomy := &staticTaxonomy{leaves: []marketplace.CategoryNode{{ID: 544, Name: "Gömlek"}}}

	machine := NewSubmissionStateMachine(gateway, store, newMemoryGuard(), testPollConfig(), zap.NewNop())
	service := NewProductSyncService(
		products,
		resolve.NewCategoryResolver(taxonomy, nil, nil, zap.NewNop()),
		resolve.NewAttributeResolver(schemas, zap.NewNop()),
		schemas,
		&staticBrands{id: 7651},
		marketplace.NewPayloadBuilder(decimal.NewFromInt(50), 10, "TRY"),
		machine,
		zap.NewNop(),
	)
	return service, products, store
}

func shirtSchema() *staticSchemas {
	return &staticSchemas{defs: map[int][]marketplace.AttributeDefinition{
		544: {
			{ID: 348, Name: "Renk", Required: true, Values: []marketplace.AttributeValue{
				{ID: 1001, Name: "Beyaz"},
				{ID: 1002, Name: "Lacivert"},
			}},
		},
	}}
}

func shirtProduct() *catalog.Product {
	return &catalog.Product{
		ID:        uuid.New(),
		Barcode:   "8680000000011",
		Title:     "Erkek Lacivert Gömlek",
		BrandName: "LC Waikiki",
		Price:     decimal.NewFromFloat(299.99),
		Quantity:  5,
		ImageURLs: []string{"https://img.example.com/1.jpg"},
	}
}

func TestSyncProductSubmitsResolvedPayload(t *testing.T) {
	gateway := &scriptedGateway{results: []*marketplace.BatchResult{successResult()}}
	service, products, _ := newTestService(gateway, shirtSchema())

	product := shirtProduct()
	require.NoError(t, products.Save(context.Background(), product))

	ticket, err := service.SyncProduct(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, marketplace.TicketProcessing, ticket.Status)

	require.Equal(t, 1, gateway.submitCount())
	payload := gateway.submits[0][0]
	// "Erkek Gömlek" keyword rule decides the category
	assert.Equal(t, 544, payload.CategoryID)
	assert.Equal(t, 7651, payload.BrandID)
	require.Len(t, payload.Attributes, 1)
	assert.Equal(t, 348, payload.Attributes[0].AttributeID())
	assert.Equal(t, 1002, payload.Attributes[0].ValueID())
}

func TestSyncProductNotFound(t *testing.T) {
	gateway := &scriptedGateway{}
	service, _, _ := newTestService(gateway, shirtSchema())

	_, err := service.SyncProduct(context.Background(), uuid.New())
	assert.ErrorIs(t, err, marketplace.ErrProductNotFound)
}

func TestSyncProductInvalidProductRejectedBeforeSubmit(t *testing.T) {
	gateway := &scriptedGateway{}
	service, products, _ := newTestService(gateway, shirtSchema())

	product := shirtProduct()
	product.ImageURLs = nil
	require.NoError(t, products.Save(context.Background(), product))

	_, err := service.SyncProduct(context.Background(), product.ID)
	assert.ErrorIs(t, err, catalog.ErrNoImages)
	assert.Zero(t, gateway.submitCount())
}

func TestAwaitOutcomeCorrectiveRebuild(t *testing.T) {
	gateway := &scriptedGateway{results: []*marketplace.BatchResult{
		failureResult("Missing required attribute: Renk"),
		successResult(),
	}}
	schemas := shirtSchema()
	service, products, _ := newTestService(gateway, schemas)

	product := shirtProduct()
	require.NoError(t, products.Save(context.Background(), product))

	ticket, err := service.SyncProduct(context.Background(), product.ID)
	require.NoError(t, err)

	final, err := service.AwaitOutcome(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, marketplace.TicketCompleted, final.Status)
	assert.Equal(t, 1, final.RetryCount)
	assert.Equal(t, 2, gateway.submitCount())
	// a corrective rebuild drops the schema cache first
	assert.Equal(t, 1, schemas.invalidated)

	// the corrected payload still carries the attribute the failure named
	corrected := gateway.submits[1][0]
	require.Len(t, corrected.Attributes, 1)
	assert.Equal(t, 348, corrected.Attributes[0].AttributeID())
}

func TestAwaitOutcomeUncorrectableAttributeFails(t *testing.T) {
	gateway := &scriptedGateway{results: []*marketplace.BatchResult{
		failureResult("Missing required attribute: Koleksiyon"),
	}}
	service, products, _ := newTestService(gateway, shirtSchema())

	product := shirtProduct()
	require.NoError(t, products.Save(context.Background(), product))

	ticket, err := service.SyncProduct(context.Background(), product.ID)
	require.NoError(t, err)

	// "Koleksiyon" is not in the schema, so rebuilding cannot help
	final, err := service.AwaitOutcome(context.Background(), ticket.ID)
	require.ErrorIs(t, err, marketplace.ErrSubmissionFailed)
	assert.Equal(t, marketplace.TicketFailed, final.Status)
	assert.Equal(t, 1, gateway.submitCount())
}
