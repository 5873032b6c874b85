package sync

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/qiyascc/trendsync/internal/application/resolve"
	"github.com/qiyascc/trendsync/internal/domain/catalog"
	"github.com/qiyascc/trendsync/internal/domain/marketplace"
)

// ProductSyncService runs the full pipeline for one product: resolve the
// category and attributes, build the payload, submit the batch and track
// its ticket.
type ProductSyncService struct {
	products   catalog.ProductRepository
	categories *resolve.CategoryResolver
	attributes *resolve.AttributeResolver
	schemas    marketplace.SchemaProvider
	brands     marketplace.BrandSource
	builder    *marketplace.PayloadBuilder
	machine    *SubmissionStateMachine
	logger     *zap.Logger
}

func NewProductSyncService(
	products catalog.ProductRepository,
	categories *resolve.CategoryResolver,
	attributes *resolve.AttributeResolver,
	schemas marketplace.SchemaProvider,
	brands marketplace.BrandSource,
	builder *marketplace.PayloadBuilder,
	machine *SubmissionStateMachine,
	logger *zap.Logger,
) *ProductSyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductSyncService{
		products:   products,
		categories: categories,
		attributes: attributes,
		schemas:    schemas,
		brands:     brands,
		builder:    builder,
		machine:    machine,
		logger:     logger,
	}
}

// SyncProduct resolves and submits one product, returning its open ticket.
func (s *ProductSyncService) SyncProduct(ctx context.Context, productID uuid.UUID) (*marketplace.SubmissionTicket, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := product.Validate(); err != nil {
		return nil, err
	}

	payload, err := s.buildPayload(ctx, product)
	if err != nil {
		return nil, err
	}

	ticket, err := s.machine.Submit(ctx, product.ID, product.Barcode, []marketplace.ProductPayload{payload})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// AwaitOutcome drives the ticket to a terminal state, rebuilding the
// payload when the marketplace names missing required attributes.
func (s *ProductSyncService) AwaitOutcome(ctx context.Context, ticketID uuid.UUID) (*marketplace.SubmissionTicket, error) {
	return s.machine.Await(ctx, ticketID, s.rebuildForRetry)
}

// Ticket returns the current state of a ticket without polling.
func (s *ProductSyncService) Ticket(ctx context.Context, ticketID uuid.UUID) (*marketplace.SubmissionTicket, error) {
	return s.machine.tickets.FindByID(ctx, ticketID)
}

func (s *ProductSyncService) buildPayload(ctx context.Context, product *catalog.Product) (marketplace.ProductPayload, error) {
	facts := resolve.ExtractFacts(product)

	categoryID, err := s.categories.Resolve(ctx, product.SearchKey())
	if err != nil {
		return marketplace.ProductPayload{}, err
	}

	brandID, err := s.brands.FindBrandID(ctx, product.BrandName)
	if err != nil {
		return marketplace.ProductPayload{}, err
	}

	attrs, err := s.attributes.Resolve(ctx, categoryID, facts)
	if err != nil {
		return marketplace.ProductPayload{}, err
	}

	payload, err := s.builder.Build(product, categoryID, brandID, attrs)
	if err != nil {
		return marketplace.ProductPayload{}, err
	}
	s.logger.Debug("payload built",
		zap.String("barcode", product.Barcode),
		zap.Int("category_id", categoryID),
		zap.Int("brand_id", brandID),
		zap.Int("attributes", len(attrs)))
	return payload, nil
}

// rebuildForRetry re-runs resolution for a failed ticket. The schema cache
// is invalidated first so a stale schema cannot reproduce the failure, and
// the reported attribute names are checked against the fresh schema; names
// the schema does not declare make the failure uncorrectable.
func (s *ProductSyncService) rebuildForRetry(ctx context.Context, ticket *marketplace.SubmissionTicket, missingAttributes []string) ([]marketplace.ProductPayload, error) {
	product, err := s.products.FindByID(ctx, ticket.ProductID)
	if err != nil {
		return nil, err
	}

	s.schemas.Invalidate()

	facts := resolve.ExtractFacts(product)
	categoryID, err := s.categories.Resolve(ctx, product.SearchKey())
	if err != nil {
		return nil, err
	}

	defs, err := s.schemas.AttributesFor(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	declared := make(map[string]struct{}, len(defs))
	for _, def := range defs {
		declared[resolve.Normalize(def.Name)] = struct{}{}
	}
	for _, name := range missingAttributes {
		if _, ok := declared[resolve.Normalize(name)]; !ok {
			return nil, fmt.Errorf("%w: schema does not declare %q", marketplace.ErrCorrectionNotPossible, name)
		}
	}

	brandID, err := s.brands.FindBrandID(ctx, product.BrandName)
	if err != nil {
		return nil, err
	}
	attrs, err := s.attributes.Resolve(ctx, categoryID, facts)
	if err != nil {
		return nil, err
	}
	payload, err := s.builder.Build(product, categoryID, brandID, attrs)
	if err != nil {
		return nil, err
	}
	return []marketplace.ProductPayload{payload}, nil
}
