package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/qiyascc/trendsync/internal/domain/catalog"
	"github.com/qiyascc/trendsync/internal/domain/marketplace"
)

// UpsertProductRequest creates or updates a source product record.
type UpsertProductRequest struct {
	Barcode       string   `json:"barcode" binding:"required,barcode"`
	Title         string   `json:"title" binding:"required,max=255"`
	Description   string   `json:"description"`
	BrandName     string   `json:"brand_name" binding:"required,max=128"`
	CategoryName  string   `json:"category_name" binding:"max=128"`
	Color         string   `json:"color" binding:"max=64"`
	Size          string   `json:"size" binding:"max=32"`
	Price         string   `json:"price" binding:"required"`
	CurrencyType  string   `json:"currency_type" binding:"omitempty,oneof=TRY USD EUR"`
	VATRate       int      `json:"vat_rate" binding:"omitempty,min=0,max=100"`
	Quantity      int      `json:"quantity" binding:"required,min=1"`
	StockCode     string   `json:"stock_code" binding:"max=64"`
	ProductMainID string   `json:"product_main_id" binding:"max=64"`
	ImageURLs     []string `json:"image_urls" binding:"required,min=1,dive,url"`
}

// ToDomain converts the request into a product aggregate. id is reused
// for updates and freshly generated for new records.
func (r UpsertProductRequest) ToDomain(id uuid.UUID) (*catalog.Product, error) {
	price, err := decimal.NewFromString(r.Price)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &catalog.Product{
		ID:            id,
		Barcode:       r.Barcode,
		Title:         r.Title,
		Description:   r.Description,
		BrandName:     r.BrandName,
		CategoryName:  r.CategoryName,
		Color:         r.Color,
		Size:          r.Size,
		Price:         price,
		CurrencyType:  r.CurrencyType,
		VATRate:       r.VATRate,
		Quantity:      r.Quantity,
		StockCode:     r.StockCode,
		ProductMainID: r.ProductMainID,
		ImageURLs:     r.ImageURLs,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// ProductResponse is the wire form of a product record.
type ProductResponse struct {
	ID           string   `json:"id"`
	Barcode      string   `json:"barcode"`
	Title        string   `json:"title"`
	BrandName    string   `json:"brand_name"`
	CategoryName string   `json:"category_name,omitempty"`
	Price        string   `json:"price"`
	Quantity     int      `json:"quantity"`
	ImageURLs    []string `json:"image_urls"`
}

func NewProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID.String(),
		Barcode:      p.Barcode,
		Title:        p.Title,
		BrandName:    p.BrandName,
		CategoryName: p.CategoryName,
		Price:        p.Price.String(),
		Quantity:     p.Quantity,
		ImageURLs:    p.ImageURLs,
	}
}

// TicketResponse is the wire form of a submission ticket.
type TicketResponse struct {
	ID             string   `json:"id"`
	ProductID      string   `json:"product_id"`
	Barcode        string   `json:"barcode"`
	BatchRequestID string   `json:"batch_request_id"`
	Status         string   `json:"status"`
	FailureReasons []string `json:"failure_reasons,omitempty"`
	RetryCount     int      `json:"retry_count"`
	CreatedAt      string   `json:"created_at"`
	LastCheckedAt  string   `json:"last_checked_at"`
}

func NewTicketResponse(t *marketplace.SubmissionTicket) TicketResponse {
	return TicketResponse{
		ID:             t.ID.String(),
		ProductID:      t.ProductID.String(),
		Barcode:        t.Barcode,
		BatchRequestID: t.BatchRequestID,
		Status:         string(t.Status),
		FailureReasons: t.FailureReasons,
		RetryCount:     t.RetryCount,
		CreatedAt:      t.CreatedAt.Format(time.RFC3339),
		LastCheckedAt:  t.LastCheckedAt.Format(time.RFC3339),
	}
}
