package trendyol

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/qiyascc/trendsync/internal/domain/marketplace"
)

func testConfig(baseURL string) Config {
	return Config{
		APIKey:         "key",
		APISecret:      "secret",
		SellerID:       "12345",
		BaseURL:        baseURL,
		TimeoutSeconds: 5,
	}
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewClient(testConfig(server.URL), zap.NewNop())
	require.NoError(t, err)
	return client, server
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{"missing key", Config{APISecret: "s", SellerID: "1"}, ErrMissingAPIKey},
		{"missing secret", Config{APIKey: "k", SellerID: "1"}, ErrMissingAPISecret},
		{"missing seller", Config{APIKey: "k", APISecret: "s"}, ErrMissingSellerID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.config.Validate(), tt.wantErr)
		})
	}

	cfg := Config{APIKey: "k", APISecret: "s", SellerID: "1"}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, defaultBaseURL, cfg.BaseURL)
	assert.Equal(t, 30, cfg.TimeoutSeconds)
}

func TestClientSendsAuthHeaders(t *testing.T) {
	var gotAuth, gotAgent string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAgent = r.Header.Get("User-Agent")
		_ = json.NewEncoder(w).Encode(categoriesResponse{})
	}))

	_, err := client.FetchCategoryTree(context.Background())
	require.NoError(t, err)
	// base64("key:secret")
	assert.Equal(t, "Basic a2V5OnNlY3JldA==", gotAuth)
	assert.Equal(t, "12345 - SelfIntegration", gotAgent)
}

func TestFetchCategoryTree(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/product/product-categories", r.URL.Path)
		_, _ = w.Write([]byte(`{"categories":[
			{"id":1,"name":"Giyim","subCategories":[
				{"id":385,"name":"Ceket","parentId":1,"subCategories":[]}
			]}
		]}`))
	}))

	tree, err := client.FetchCategoryTree(context.Background())
	require.NoError(t, err)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, 385, tree[0].Children[0].ID)
	assert.True(t, tree[0].Children[0].IsLeaf())
}

func TestFetchCategoryAttributesCoercesStringIDs(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/product/product-categories/544/attributes", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":544,"name":"Gömlek","categoryAttributes":[
			{"attribute":{"id":"348","name":"Renk"},"required":true,"allowCustom":false,
			 "varianter":true,"attributeValues":[{"id":"686234","name":"Lacivert"}]}
		]}`))
	}))

	defs, err := client.FetchCategoryAttributes(context.Background(), 544)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, 348, defs[0].ID)
	assert.True(t, defs[0].Required)
	require.Len(t, defs[0].Values, 1)
	assert.Equal(t, 686234, defs[0].Values[0].ID)
}

func TestFlexIDRejectsNonNumeric(t *testing.T) {
	var id FlexID
	err := json.Unmarshal([]byte(`"abc"`), &id)
	assert.ErrorIs(t, err, marketplace.ErrNonNumericAttributeID)

	require.NoError(t, json.Unmarshal([]byte(`"348"`), &id))
	assert.Equal(t, 348, id.Int())

	require.NoError(t, json.Unmarshal([]byte(`42`), &id))
	assert.Equal(t, 42, id.Int())
}

func TestFindBrandID(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "LC Waikiki", r.URL.Query().Get("name"))
		_, _ = w.Write([]byte(`[{"id":7651,"name":"LC Waikiki"},{"id":9999,"name":"LC Waikiki Home"}]`))
	}))

	id, err := client.FindBrandID(context.Background(), "LC Waikiki")
	require.NoError(t, err)
	assert.Equal(t, 7651, id)
}

func TestFindBrandIDSubstringFallback(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":9999,"name":"LC Waikiki Home"}]`))
	}))

	id, err := client.FindBrandID(context.Background(), "waikiki")
	require.NoError(t, err)
	assert.Equal(t, 9999, id)
}

func TestFindBrandIDNotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))

	_, err := client.FindBrandID(context.Background(), "Nonexistent")
	assert.ErrorIs(t, err, marketplace.ErrBrandNotFound)
}

func TestFindBrandIDConfiguredFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(server.Close)

	cfg := testConfig(server.URL)
	cfg.FallbackBrandID = 7651
	client, err := NewClient(cfg, zap.NewNop())
	require.NoError(t, err)

	id, err := client.FindBrandID(context.Background(), "Nonexistent")
	require.NoError(t, err)
	assert.Equal(t, 7651, id)
}

func TestSubmitProducts(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/product/sellers/12345/products", r.URL.Path)
		var req batchSubmitRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.Items, 1)
		_, _ = w.Write([]byte(`{"batchRequestId":"batch-abc"}`))
	}))

	batchID, err := client.SubmitProducts(context.Background(), []marketplace.ProductPayload{{Barcode: "b1"}})
	require.NoError(t, err)
	assert.Equal(t, "batch-abc", batchID)
}

func TestSubmitProductsRejected(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":[{"message":"barcode already exists"}]}`))
	}))

	_, err := client.SubmitProducts(context.Background(), []marketplace.ProductPayload{{Barcode: "b1"}})
	require.ErrorIs(t, err, marketplace.ErrRejectedAtSubmission)
	assert.Contains(t, err.Error(), "barcode already exists")
}

func TestBatchStatus(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/product/sellers/12345/products/batch-requests/batch-abc", r.URL.Path)
		_, _ = w.Write([]byte(`{"batchRequestId":"batch-abc","status":"COMPLETED","items":[
			{"status":"SUCCESS","failureReasons":[]},
			{"status":"ERROR","failureReasons":["Missing required attribute: Renk"]}
		]}`))
	}))

	result, err := client.BatchStatus(context.Background(), "batch-abc")
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	assert.Equal(t, marketplace.BatchItemSuccess, result.Items[0].Status)
	assert.Equal(t, marketplace.BatchItemError, result.Items[1].Status)
	assert.Equal(t, []string{"Missing required attribute: Renk"}, result.Items[1].FailureReasons)
}

func TestTransportRetriesOn5xx(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(categoriesResponse{Categories: []wireCategory{{ID: 1, Name: "Giyim"}}})
	}))

	start := time.Now()
	tree, err := client.FetchCategoryTree(context.Background())
	require.NoError(t, err)
	assert.Len(t, tree, 1)
	assert.Equal(t, int32(3), calls.Load())
	// two retries waited 1s then 2s
	assert.GreaterOrEqual(t, time.Since(start), 3*time.Second)
}

func TestTransportDoesNotRetry4xx(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.FetchCategoryTree(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestTransportExhaustionIsUnavailable(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.FetchCategoryTree(context.Background())
	assert.ErrorIs(t, err, marketplace.ErrMarketplaceUnavailable)
}
