package trendyol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/qiyascc/trendsync/internal/domain/marketplace"
)

// FlexID is an integer identifier that the marketplace sometimes serializes
// as a JSON string. Decoding coerces numeric strings and rejects anything
// else, so string-typed ids can never leak past the wire layer.
type FlexID int

func (f *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("%w: %q", marketplace.ErrNonNumericAttributeID, string(data))
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("%w: %q", marketplace.ErrNonNumericAttributeID, s)
		}
		*f = FlexID(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("%w: %q", marketplace.ErrNonNumericAttributeID, string(data))
	}
	*f = FlexID(n)
	return nil
}

func (f FlexID) Int() int { return int(f) }

// wireCategory is one node of the categories response.
type wireCategory struct {
	ID            int            `json:"id"`
	Name          string         `json:"name"`
	ParentID      *int           `json:"parentId"`
	SubCategories []wireCategory `json:"subCategories"`
}

type categoriesResponse struct {
	Categories []wireCategory `json:"categories"`
}

func (c wireCategory) toDomain() marketplace.CategoryNode {
	node := marketplace.CategoryNode{
		ID:       c.ID,
		Name:     c.Name,
		ParentID: c.ParentID,
	}
	for _, sub := range c.SubCategories {
		node.Children = append(node.Children, sub.toDomain())
	}
	return node
}

// wireAttribute is one entry of the category-attributes response.
type wireAttribute struct {
	Attribute struct {
		ID   FlexID `json:"id"`
		Name string `json:"name"`
	} `json:"attribute"`
	Required        bool `json:"required"`
	AllowCustom     bool `json:"allowCustom"`
	Varianter       bool `json:"varianter"`
	AttributeValues []struct {
		ID   FlexID `json:"id"`
		Name string `json:"name"`
	} `json:"attributeValues"`
}

type attributesResponse struct {
	ID                 int             `json:"id"`
	Name               string          `json:"name"`
	CategoryAttributes []wireAttribute `json:"categoryAttributes"`
}

func (a wireAttribute) toDomain() marketplace.AttributeDefinition {
	def := marketplace.AttributeDefinition{
		ID:          a.Attribute.ID.Int(),
		Name:        a.Attribute.Name,
		Required:    a.Required,
		AllowCustom: a.AllowCustom,
		Varianter:   a.Varianter,
	}
	for _, v := range a.AttributeValues {
		def.Values = append(def.Values, marketplace.AttributeValue{ID: v.ID.Int(), Name: v.Name})
	}
	return def
}

// wireBrand is one entry of the brands-by-name response.
type wireBrand struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type batchSubmitRequest struct {
	Items []marketplace.ProductPayload `json:"items"`
}

type batchSubmitResponse struct {
	BatchRequestID string `json:"batchRequestId"`
}

type batchStatusItem struct {
	Status         string   `json:"status"`
	FailureReasons []string `json:"failureReasons"`
}

type batchStatusResponse struct {
	BatchRequestID string            `json:"batchRequestId"`
	Status         string            `json:"status"`
	Items          []batchStatusItem `json:"items"`
}

func (r batchStatusResponse) toDomain() *marketplace.BatchResult {
	result := &marketplace.BatchResult{
		BatchRequestID: r.BatchRequestID,
		Status:         r.Status,
	}
	for _, item := range r.Items {
		result.Items = append(result.Items, marketplace.BatchItemResult{
			Status:         marketplace.BatchItemStatus(item.Status),
			FailureReasons: item.FailureReasons,
		})
	}
	return result
}
