package trendyol

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/qiyascc/trendsync/internal/domain/marketplace"
)

const (
	maxResponseBytes = 10 << 20

	transportAttempts = 3
)

// transportBackoff is the wait before transport retry n (0-based).
var transportBackoff = []time.Duration{1 * time.Second, 2 * time.Second}

// Client talks to the Trendyol seller API. It implements every outbound
// port of the sync pipeline: taxonomy, attribute schema, brand lookup and
// batch submission.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *zap.Logger
}

var (
	_ marketplace.TaxonomySource    = (*Client)(nil)
	_ marketplace.AttributeSource   = (*Client)(nil)
	_ marketplace.BrandSource       = (*Client)(nil)
	_ marketplace.SubmissionGateway = (*Client)(nil)
)

// statusError carries a non-2xx response for callers that map status codes
// to domain errors.
type statusError struct {
	StatusCode int
	Body       string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("trendyol: unexpected status %d: %s", e.StatusCode, e.Body)
}

func NewClient(config Config, logger *zap.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout()},
		logger:     logger,
	}, nil
}

// FetchCategoryTree retrieves the full category tree.
func (c *Client) FetchCategoryTree(ctx context.Context) ([]marketplace.CategoryNode, error) {
	var resp categoriesResponse
	if err := c.doJSON(ctx, http.MethodGet, "/product/product-categories", nil, &resp); err != nil {
		return nil, err
	}
	nodes := make([]marketplace.CategoryNode, 0, len(resp.Categories))
	for _, cat := range resp.Categories {
		nodes = append(nodes, cat.toDomain())
	}
	return nodes, nil
}

// FetchCategoryAttributes retrieves the attribute schema of one category.
func (c *Client) FetchCategoryAttributes(ctx context.Context, categoryID int) ([]marketplace.AttributeDefinition, error) {
	path := fmt.Sprintf("/product/product-categories/%d/attributes", categoryID)
	var resp attributesResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	defs := make([]marketplace.AttributeDefinition, 0, len(resp.CategoryAttributes))
	for _, attr := range resp.CategoryAttributes {
		defs = append(defs, attr.toDomain())
	}
	return defs, nil
}

// FindBrandID resolves a brand name: exact case-insensitive match first,
// then substring, then the configured fallback.
func (c *Client) FindBrandID(ctx context.Context, name string) (int, error) {
	path := "/product/brands/by-name?name=" + url.QueryEscape(name)
	var brands []wireBrand
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &brands); err != nil {
		return 0, err
	}

	for _, b := range brands {
		if strings.EqualFold(b.Name, name) {
			return b.ID, nil
		}
	}
	lower := strings.ToLower(name)
	for _, b := range brands {
		if strings.Contains(strings.ToLower(b.Name), lower) {
			c.logger.Debug("brand matched by substring",
				zap.String("requested", name),
				zap.String("matched", b.Name))
			return b.ID, nil
		}
	}
	if c.config.FallbackBrandID > 0 {
		c.logger.Warn("brand not found, using configured fallback",
			zap.String("brand", name),
			zap.Int("fallback_id", c.config.FallbackBrandID))
		return c.config.FallbackBrandID, nil
	}
	return 0, fmt.Errorf("%w: %s", marketplace.ErrBrandNotFound, name)
}

// SubmitProducts posts a product batch and returns the batch request id.
func (c *Client) SubmitProducts(ctx context.Context, payloads []marketplace.ProductPayload) (string, error) {
	path := fmt.Sprintf("/product/sellers/%s/products", c.config.SellerID)
	var resp batchSubmitResponse
	err := c.doJSON(ctx, http.MethodPost, path, batchSubmitRequest{Items: payloads}, &resp)
	if err != nil {
		var se *statusError
		if asStatusError(err, &se) && se.StatusCode >= 400 && se.StatusCode < 500 {
			return "", fmt.Errorf("%w: status %d: %s", marketplace.ErrRejectedAtSubmission, se.StatusCode, se.Body)
		}
		return "", err
	}
	if resp.BatchRequestID == "" {
		return "", fmt.Errorf("%w: submission response missing batch request id", marketplace.ErrRejectedAtSubmission)
	}
	c.logger.Info("batch submitted",
		zap.String("batch_request_id", resp.BatchRequestID),
		zap.Int("items", len(payloads)))
	return resp.BatchRequestID, nil
}

// BatchStatus retrieves the current state of a batch request.
func (c *Client) BatchStatus(ctx context.Context, batchRequestID string) (*marketplace.BatchResult, error) {
	path := fmt.Sprintf("/product/sellers/%s/products/batch-requests/%s",
		c.config.SellerID, url.PathEscape(batchRequestID))
	var resp batchStatusResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	if resp.BatchRequestID == "" {
		resp.BatchRequestID = batchRequestID
	}
	return resp.toDomain(), nil
}

// doJSON performs a request with transport-level retries and decodes a
// JSON response. Retries cover connection errors and 5xx only; a 4xx is
// returned immediately as a statusError for the caller to interpret.
func (c *Client) doJSON(ctx context.Context, method, path string, reqBody, respBody interface{}) error {
	var encoded []byte
	if reqBody != nil {
		var err error
		encoded, err = json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("trendyol: encode request: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt < transportAttempts; attempt++ {
		if attempt > 0 {
			wait := transportBackoff[attempt-1]
			c.logger.Debug("retrying request",
				zap.String("path", path),
				zap.Int("attempt", attempt+1),
				zap.Duration("wait", wait))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}

		body, err := c.doOnce(ctx, method, path, encoded)
		if err == nil {
			if respBody == nil {
				return nil
			}
			if err := json.Unmarshal(body, respBody); err != nil {
				return fmt.Errorf("trendyol: decode response: %w", err)
			}
			return nil
		}

		var se *statusError
		if asStatusError(err, &se) && se.StatusCode < 500 {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("%w: %v", marketplace.ErrMarketplaceUnavailable, lastErr)
}

func (c *Client) doOnce(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("trendyol: build request: %w", err)
	}
	req.Header.Set("Authorization", c.config.basicAuth())
	req.Header.Set("User-Agent", c.config.userAgent())
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("trendyol: request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("trendyol: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &statusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	return data, nil
}

func asStatusError(err error, target **statusError) bool {
	return errors.As(err, target)
}
