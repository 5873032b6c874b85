package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/qiyascc/trendsync/internal/domain/catalog"
	"github.com/qiyascc/trendsync/internal/domain/marketplace"
)

// productRecord is the persistence model for source products.
type productRecord struct {
	ID            string          `gorm:"primaryKey;size:36"`
	Barcode       string          `gorm:"size:64;uniqueIndex"`
	Title         string          `gorm:"size:255;not null"`
	Description   string          `gorm:"type:text"`
	BrandName     string          `gorm:"size:128"`
	CategoryName  string          `gorm:"size:128"`
	Color         string          `gorm:"size:64"`
	Size          string          `gorm:"size:32"`
	Price         decimal.Decimal `gorm:"type:decimal(12,2)"`
	CurrencyType  string          `gorm:"size:8"`
	VATRate       int             `gorm:"not null;default:0"`
	Quantity      int             `gorm:"not null;default:0"`
	StockCode     string          `gorm:"size:64"`
	ProductMainID string          `gorm:"size:64"`
	ImageURLs     []string        `gorm:"serializer:json"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (productRecord) TableName() string { return "products" }

func (r *productRecord) toDomain() (*catalog.Product, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, fmt.Errorf("parse product id: %w", err)
	}
	return &catalog.Product{
		ID:            id,
		Barcode:       r.Barcode,
		Title:         r.Title,
		Description:   r.Description,
		BrandName:     r.BrandName,
		CategoryName:  r.CategoryName,
		Color:         r.Color,
		Size:          r.Size,
		Price:         r.Price,
		CurrencyType:  r.CurrencyType,
		VATRate:       r.VATRate,
		Quantity:      r.Quantity,
		StockCode:     r.StockCode,
		ProductMainID: r.ProductMainID,
		ImageURLs:     r.ImageURLs,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}, nil
}

func productRecordFromDomain(p *catalog.Product) *productRecord {
	return &productRecord{
		ID:            p.ID.String(),
		Barcode:       p.Barcode,
		Title:         p.Title,
		Description:   p.Description,
		BrandName:     p.BrandName,
		CategoryName:  p.CategoryName,
		Color:         p.Color,
		Size:          p.Size,
		Price:         p.Price,
		CurrencyType:  p.CurrencyType,
		VATRate:       p.VATRate,
		Quantity:      p.Quantity,
		StockCode:     p.StockCode,
		ProductMainID: p.ProductMainID,
		ImageURLs:     p.ImageURLs,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// GormProductRepository implements catalog.ProductRepository on gorm.
type GormProductRepository struct {
	db *gorm.DB
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var record productRecord
	err := r.db.WithContext(ctx).First(&record, "id = ?", id.String()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, marketplace.ErrProductNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return record.toDomain()
}

func (r *GormProductRepository) FindByBarcode(ctx context.Context, barcode string) (*catalog.Product, error) {
	var record productRecord
	err := r.db.WithContext(ctx).First(&record, "barcode = ?", barcode).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, marketplace.ErrProductNotFound
		}
		return nil, fmt.Errorf("find product by barcode: %w", err)
	}
	return record.toDomain()
}

func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	record := productRecordFromDomain(product)
	if err := r.db.WithContext(ctx).Save(record).Error; err != nil {
		return fmt.Errorf("save product: %w", err)
	}
	return nil
}

func (r *GormProductRepository) List(ctx context.Context, limit, offset int) ([]*catalog.Product, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var records []productRecord
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	products := make([]*catalog.Product, 0, len(records))
	for i := range records {
		p, err := records[i].toDomain()
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}
