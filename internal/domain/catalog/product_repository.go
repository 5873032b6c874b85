package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository persists source product records.
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindByBarcode(ctx context.Context, barcode string) (*Product, error)
	Save(ctx context.Context, product *Product) error
	List(ctx context.Context, limit, offset int) ([]*Product, error)
}
