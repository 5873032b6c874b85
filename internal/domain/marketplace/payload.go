package marketplace

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/qiyascc/trendsync/internal/domain/catalog"
)

// maxTitleRunes is the longest product title the marketplace accepts.
const maxTitleRunes = 100

// ProductImage is one image reference in the submission payload.
type ProductImage struct {
	URL string `json:"url"`
}

// ProductPayload is the wire form of one product in a batch submission.
type ProductPayload struct {
	Barcode       string              `json:"barcode"`
	Title         string              `json:"title"`
	ProductMainID string              `json:"productMainId"`
	BrandID       int                 `json:"brandId"`
	CategoryID    int                 `json:"categoryId"`
	Quantity      int                 `json:"quantity"`
	StockCode     string              `json:"stockCode"`
	Description   string              `json:"description"`
	CurrencyType  string              `json:"currencyType"`
	ListPrice     float64             `json:"listPrice"`
	SalePrice     float64             `json:"salePrice"`
	VATRate       int                 `json:"vatRate"`
	Images        []ProductImage      `json:"images"`
	Attributes    []ResolvedAttribute `json:"attributes"`
}

// PayloadBuilder assembles submission payloads from resolved inputs. It is
// pure: no I/O, no hidden lookups.
type PayloadBuilder struct {
	// ListPriceMargin is added to the sale price to form the list price.
	ListPriceMargin decimal.Decimal
	DefaultVATRate  int
	DefaultCurrency string
}

// NewPayloadBuilder returns a builder with the marketplace defaults the
// account operates under.
func NewPayloadBuilder(listPriceMargin decimal.Decimal, defaultVATRate int, defaultCurrency string) *PayloadBuilder {
	if defaultCurrency == "" {
		defaultCurrency = "TRY"
	}
	return &PayloadBuilder{
		ListPriceMargin: listPriceMargin,
		DefaultVATRate:  defaultVATRate,
		DefaultCurrency: defaultCurrency,
	}
}

// Build validates the product and assembles its payload. It fails fast on
// the first structural violation rather than producing a partial payload.
func (b *PayloadBuilder) Build(p *catalog.Product, categoryID, brandID int, attrs []ResolvedAttribute) (ProductPayload, error) {
	if err := p.Validate(); err != nil {
		return ProductPayload{}, err
	}
	if categoryID <= 0 {
		return ProductPayload{}, fmt.Errorf("marketplace: invalid category id %d", categoryID)
	}
	if brandID <= 0 {
		return ProductPayload{}, fmt.Errorf("marketplace: invalid brand id %d", brandID)
	}

	salePrice := p.Price
	listPrice := salePrice.Add(b.ListPriceMargin)

	currency := p.CurrencyType
	if currency == "" {
		currency = b.DefaultCurrency
	}
	vatRate := p.VATRate
	if vatRate == 0 {
		vatRate = b.DefaultVATRate
	}

	mainID := p.ProductMainID
	if mainID == "" {
		mainID = p.Barcode
	}
	stockCode := p.StockCode
	if stockCode == "" {
		stockCode = p.Barcode
	}

	images := make([]ProductImage, 0, len(p.ImageURLs))
	for _, u := range p.ImageURLs {
		images = append(images, ProductImage{URL: u})
	}

	return ProductPayload{
		Barcode:       p.Barcode,
		Title:         NormalizeTitle(p.Title),
		ProductMainID: mainID,
		BrandID:       brandID,
		CategoryID:    categoryID,
		Quantity:      p.Quantity,
		StockCode:     stockCode,
		Description:   p.Description,
		CurrencyType:  currency,
		ListPrice:     listPrice.InexactFloat64(),
		SalePrice:     salePrice.InexactFloat64(),
		VATRate:       vatRate,
		Images:        images,
		Attributes:    attrs,
	}, nil
}

// NormalizeTitle collapses runs of whitespace and truncates the result so
// the marketplace does not reject the title for length.
func NormalizeTitle(title string) string {
	collapsed := strings.Join(strings.Fields(title), " ")
	runes := []rune(collapsed)
	if len(runes) <= maxTitleRunes {
		return collapsed
	}
	return strings.TrimSpace(string(runes[:maxTitleRunes]))
}
