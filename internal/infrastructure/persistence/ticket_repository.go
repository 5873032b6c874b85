package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/qiyascc/trendsync/internal/domain/marketplace"
)

// submissionTicketRecord is the persistence model for submission tickets.
type submissionTicketRecord struct {
	ID             string    `gorm:"primaryKey;size:36"`
	ProductID      string    `gorm:"size:36;index"`
	Barcode        string    `gorm:"size:64;index"`
	BatchRequestID string    `gorm:"size:128"`
	Status         string    `gorm:"size:32;index"`
	FailureReasons []string  `gorm:"serializer:json"`
	RetryCount     int       `gorm:"not null;default:0"`
	CreatedAt      time.Time `gorm:"not null"`
	LastCheckedAt  time.Time `gorm:"not null"`
}

func (submissionTicketRecord) TableName() string { return "submission_tickets" }

func (r *submissionTicketRecord) toDomain() (*marketplace.SubmissionTicket, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, fmt.Errorf("parse ticket id: %w", err)
	}
	productID, err := uuid.Parse(r.ProductID)
	if err != nil {
		return nil, fmt.Errorf("parse product id: %w", err)
	}
	return &marketplace.SubmissionTicket{
		ID:             id,
		ProductID:      productID,
		Barcode:        r.Barcode,
		BatchRequestID: r.BatchRequestID,
		Status:         marketplace.TicketStatus(r.Status),
		FailureReasons: r.FailureReasons,
		RetryCount:     r.RetryCount,
		CreatedAt:      r.CreatedAt,
		LastCheckedAt:  r.LastCheckedAt,
	}, nil
}

func ticketRecordFromDomain(t *marketplace.SubmissionTicket) *submissionTicketRecord {
	return &submissionTicketRecord{
		ID:             t.ID.String(),
		ProductID:      t.ProductID.String(),
		Barcode:        t.Barcode,
		BatchRequestID: t.BatchRequestID,
		Status:         string(t.Status),
		FailureReasons: t.FailureReasons,
		RetryCount:     t.RetryCount,
		CreatedAt:      t.CreatedAt,
		LastCheckedAt:  t.LastCheckedAt,
	}
}

// GormTicketRepository implements marketplace.TicketStore on gorm.
type GormTicketRepository struct {
	db *gorm.DB
}

var _ marketplace.TicketStore = (*GormTicketRepository)(nil)

func NewGormTicketRepository(db *gorm.DB) *GormTicketRepository {
	return &GormTicketRepository{db: db}
}

func (r *GormTicketRepository) Save(ctx context.Context, ticket *marketplace.SubmissionTicket) error {
	record := ticketRecordFromDomain(ticket)
	if err := r.db.WithContext(ctx).Save(record).Error; err != nil {
		return fmt.Errorf("save submission ticket: %w", err)
	}
	return nil
}

func (r *GormTicketRepository) FindByID(ctx context.Context, id uuid.UUID) (*marketplace.SubmissionTicket, error) {
	var record submissionTicketRecord
	err := r.db.WithContext(ctx).First(&record, "id = ?", id.String()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, marketplace.ErrTicketNotFound
		}
		return nil, fmt.Errorf("find submission ticket: %w", err)
	}
	return record.toDomain()
}

func (r *GormTicketRepository) FindByBarcode(ctx context.Context, barcode string) (*marketplace.SubmissionTicket, error) {
	var record submissionTicketRecord
	err := r.db.WithContext(ctx).
		Where("barcode = ?", barcode).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, marketplace.ErrTicketNotFound
		}
		return nil, fmt.Errorf("find submission ticket by barcode: %w", err)
	}
	return record.toDomain()
}
