package catalog

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyBarcode    = errors.New("catalog: empty barcode")
	ErrEmptyTitle      = errors.New("catalog: empty title")
	ErrInvalidPrice    = errors.New("catalog: price must be positive")
	ErrInvalidQuantity = errors.New("catalog: quantity must be positive")
	ErrNoImages        = errors.New("catalog: at least one image required")
)

// Product is a locally-known source record awaiting marketplace submission.
type Product struct {
	ID            uuid.UUID
	Barcode       string
	Title         string
	Description   string
	BrandName     string
	CategoryName  string
	Color         string
	Size          string
	Price         decimal.Decimal
	CurrencyType  string
	VATRate       int
	Quantity      int
	StockCode     string
	ProductMainID string
	ImageURLs     []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate checks the structural preconditions a submission needs. The
// first violation wins.
func (p *Product) Validate() error {
	switch {
	case strings.TrimSpace(p.Barcode) == "":
		return ErrEmptyBarcode
	case strings.TrimSpace(p.Title) == "":
		return ErrEmptyTitle
	case !p.Price.IsPositive():
		return ErrInvalidPrice
	case p.Quantity <= 0:
		return ErrInvalidQuantity
	case len(p.ImageURLs) == 0:
		return ErrNoImages
	}
	return nil
}

// SearchKey is the text used for category resolution. The explicit category
// name wins over the free-form title when present.
func (p *Product) SearchKey() string {
	if key := strings.TrimSpace(p.CategoryName); key != "" {
		return key
	}
	return p.Title
}
