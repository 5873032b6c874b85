package marketplace

import (
	"context"

	"github.com/google/uuid"
)

// TaxonomySource fetches the full category tree from the marketplace.
type TaxonomySource interface {
	FetchCategoryTree(ctx context.Context) ([]CategoryNode, error)
}

// AttributeSource fetches the attribute schema of one category.
type AttributeSource interface {
	FetchCategoryAttributes(ctx context.Context, categoryID int) ([]AttributeDefinition, error)
}

// BrandSource resolves a brand name to the marketplace brand id.
type BrandSource interface {
	FindBrandID(ctx context.Context, name string) (int, error)
}

// BatchItemStatus is the per-item outcome reported for a batch.
type BatchItemStatus string

const (
	BatchItemSuccess BatchItemStatus = "SUCCESS"
	BatchItemError   BatchItemStatus = "ERROR"
)

// BatchItemResult is the reported outcome of one product in a batch.
type BatchItemResult struct {
	Status         BatchItemStatus
	FailureReasons []string
}

// BatchResult is a point-in-time snapshot of a batch request. An empty
// Items slice means the marketplace has not finished processing yet.
type BatchResult struct {
	BatchRequestID string
	Status         string
	Items          []BatchItemResult
}

// SubmissionGateway submits product batches and reports their progress.
type SubmissionGateway interface {
	// SubmitProducts posts a batch and returns the batch request id.
	// A synchronous rejection surfaces as ErrRejectedAtSubmission.
	SubmitProducts(ctx context.Context, payloads []ProductPayload) (string, error)

	// BatchStatus fetches the current state of a previously submitted batch.
	BatchStatus(ctx context.Context, batchRequestID string) (*BatchResult, error)
}

// TicketStore persists submission tickets.
type TicketStore interface {
	Save(ctx context.Context, ticket *SubmissionTicket) error
	FindByID(ctx context.Context, id uuid.UUID) (*SubmissionTicket, error)
	FindByBarcode(ctx context.Context, barcode string) (*SubmissionTicket, error)
}

// SubmissionGuard serializes submissions per barcode. Acquire returns false
// when another submission for the barcode is still in flight.
type SubmissionGuard interface {
	Acquire(ctx context.Context, barcode string) (bool, error)
	Release(ctx context.Context, barcode string) error
}

// Embedder is the optional semantic similarity capability. Implementations
// map each input text to one vector, preserving order.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// SynonymExpander supplies alternative phrasings for a search key.
type SynonymExpander interface {
	Synonyms(key string) []string
}

// TaxonomyProvider is the memoized view of the category tree consumed by
// the resolver.
type TaxonomyProvider interface {
	Tree(ctx context.Context) ([]CategoryNode, error)
	Leaves(ctx context.Context) ([]CategoryNode, error)
	Invalidate()
}

// SchemaProvider is the memoized per-category attribute schema view.
type SchemaProvider interface {
	AttributesFor(ctx context.Context, categoryID int) ([]AttributeDefinition, error)
	Invalidate()
}
