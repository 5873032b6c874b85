package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/qiyascc/trendsync/internal/application/sync"
	"github.com/qiyascc/trendsync/internal/domain/catalog"
	"github.com/qiyascc/trendsync/internal/domain/marketplace"
	"github.com/qiyascc/trendsync/internal/interfaces/http/dto"
)

// awaitTimeout bounds the background outcome tracking per ticket.
const awaitTimeout = 10 * time.Minute

// SyncHandler exposes the sync pipeline over HTTP.
type SyncHandler struct {
	service  *sync.ProductSyncService
	products catalog.ProductRepository
	taxonomy marketplace.TaxonomyProvider
	schemas  marketplace.SchemaProvider
	logger   *zap.Logger
}

func NewSyncHandler(
	service *sync.ProductSyncService,
	products catalog.ProductRepository,
	taxonomy marketplace.TaxonomyProvider,
	schemas marketplace.SchemaProvider,
	logger *zap.Logger,
) *SyncHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncHandler{
		service:  service,
		products: products,
		taxonomy: taxonomy,
		schemas:  schemas,
		logger:   logger,
	}
}

// UpsertProduct creates or replaces a source product record.
// POST /api/v1/products
func (h *SyncHandler) UpsertProduct(c *gin.Context) {
	var req dto.UpsertProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Fail("INVALID_REQUEST", err.Error()))
		return
	}

	id := uuid.New()
	if existing, err := h.products.FindByBarcode(c.Request.Context(), req.Barcode); err == nil {
		id = existing.ID
	}

	product, err := req.ToDomain(id)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Fail("INVALID_PRICE", err.Error()))
		return
	}
	if err := product.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, dto.Fail("INVALID_PRODUCT", err.Error()))
		return
	}
	if err := h.products.Save(c.Request.Context(), product); err != nil {
		h.logger.Error("failed to save product", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.Fail("INTERNAL", "failed to save product"))
		return
	}
	c.JSON(http.StatusOK, dto.OK(dto.NewProductResponse(product)))
}

// GetProduct returns one source product.
// GET /api/v1/products/:id
func (h *SyncHandler) GetProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Fail("INVALID_ID", "product id must be a uuid"))
		return
	}
	product, err := h.products.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, marketplace.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, dto.Fail("NOT_FOUND", "product not found"))
			return
		}
		h.logger.Error("failed to load product", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.Fail("INTERNAL", "failed to load product"))
		return
	}
	c.JSON(http.StatusOK, dto.OK(dto.NewProductResponse(product)))
}

// SyncProduct runs the pipeline for one product and returns its ticket.
// The submission outcome is tracked in the background; poll the ticket
// endpoint for the result.
// POST /api/v1/products/:id/sync
func (h *SyncHandler) SyncProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Fail("INVALID_ID", "product id must be a uuid"))
		return
	}

	ticket, err := h.service.SyncProduct(c.Request.Context(), id)
	if err != nil {
		h.respondSyncError(c, err)
		return
	}

	go h.trackOutcome(ticket.ID)

	c.JSON(http.StatusAccepted, dto.OK(dto.NewTicketResponse(ticket)))
}

// GetTicket returns the current state of a submission ticket.
// GET /api/v1/tickets/:id
func (h *SyncHandler) GetTicket(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Fail("INVALID_ID", "ticket id must be a uuid"))
		return
	}
	ticket, err := h.service.Ticket(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, marketplace.ErrTicketNotFound) {
			c.JSON(http.StatusNotFound, dto.Fail("NOT_FOUND", "ticket not found"))
			return
		}
		h.logger.Error("failed to load ticket", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.Fail("INTERNAL", "failed to load ticket"))
		return
	}
	c.JSON(http.StatusOK, dto.OK(dto.NewTicketResponse(ticket)))
}

// InvalidateTaxonomy drops the cached category tree and attribute schemas.
// POST /api/v1/taxonomy/invalidate
func (h *SyncHandler) InvalidateTaxonomy(c *gin.Context) {
	h.taxonomy.Invalidate()
	h.schemas.Invalidate()
	c.JSON(http.StatusOK, dto.OK(gin.H{"invalidated": true}))
}

func (h *SyncHandler) trackOutcome(ticketID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), awaitTimeout)
	defer cancel()
	if _, err := h.service.AwaitOutcome(ctx, ticketID); err != nil {
		h.logger.Warn("submission did not complete",
			zap.String("ticket_id", ticketID.String()),
			zap.Error(err))
	}
}

func (h *SyncHandler) respondSyncError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, marketplace.ErrProductNotFound):
		c.JSON(http.StatusNotFound, dto.Fail("NOT_FOUND", "product not found"))
	case errors.Is(err, marketplace.ErrSubmissionInFlight):
		c.JSON(http.StatusConflict, dto.Fail("IN_FLIGHT", err.Error()))
	case errors.Is(err, marketplace.ErrNoMatch):
		c.JSON(http.StatusUnprocessableEntity, dto.Fail("NO_CATEGORY_MATCH", err.Error()))
	case errors.Is(err, marketplace.ErrBrandNotFound):
		c.JSON(http.StatusUnprocessableEntity, dto.Fail("BRAND_NOT_FOUND", err.Error()))
	case errors.Is(err, marketplace.ErrUnsatisfiableRequiredAttribute):
		c.JSON(http.StatusUnprocessableEntity, dto.Fail("UNSATISFIABLE_ATTRIBUTE", err.Error()))
	case errors.Is(err, marketplace.ErrRejectedAtSubmission):
		c.JSON(http.StatusUnprocessableEntity, dto.Fail("REJECTED", err.Error()))
	case errors.Is(err, marketplace.ErrTaxonomyUnavailable),
		errors.Is(err, marketplace.ErrSchemaUnavailable),
		errors.Is(err, marketplace.ErrMarketplaceUnavailable):
		c.JSON(http.StatusBadGateway, dto.Fail("MARKETPLACE_UNAVAILABLE", err.Error()))
	case errors.Is(err, catalog.ErrEmptyBarcode),
		errors.Is(err, catalog.ErrEmptyTitle),
		errors.Is(err, catalog.ErrInvalidPrice),
		errors.Is(err, catalog.ErrInvalidQuantity),
		errors.Is(err, catalog.ErrNoImages):
		c.JSON(http.StatusUnprocessableEntity, dto.Fail("INVALID_PRODUCT", err.Error()))
	default:
		h.logger.Error("sync failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.Fail("INTERNAL", "sync failed"))
	}
}
