package resolve

import (
	"github.com/qiyascc/trendsync/internal/domain/catalog"
	"github.com/qiyascc/trendsync/internal/domain/marketplace"
)

// colorTable maps normalized color tokens, Turkish and English, to the
// canonical marketplace color name.
var colorTable = []struct {
	token     string
	canonical string
}{
	{"beyaz", "Beyaz"}, {"white", "Beyaz"}, {"ekru", "Ekru"},
	{"siyah", "Siyah"}, {"black", "Siyah"}, {"antrasit", "Antrasit"},
	{"lacivert", "Lacivert"}, {"navy", "Lacivert"},
	{"mavi", "Mavi"}, {"blue", "Mavi"}, {"indigo", "İndigo"},
	{"kirmizi", "Kırmızı"}, {"red", "Kırmızı"}, {"bordo", "Bordo"},
	{"pembe", "Pembe"}, {"pink", "Pembe"}, {"fusya", "Fuşya"},
	{"yesil", "Yeşil"}, {"green", "Yeşil"}, {"haki", "Haki"}, {"khaki", "Haki"},
	{"sari", "Sarı"}, {"yellow", "Sarı"}, {"hardal", "Hardal"},
	{"mor", "Mor"}, {"purple", "Mor"}, {"lila", "Lila"},
	{"gri", "Gri"}, {"grey", "Gri"}, {"gray", "Gri"},
	{"kahverengi", "Kahverengi"}, {"brown", "Kahverengi"},
	{"bej", "Bej"}, {"beige", "Bej"}, {"krem", "Krem"},
	{"turuncu", "Turuncu"}, {"orange", "Turuncu"},
	{"turkuaz", "Turkuaz"}, {"gold", "Altın"}, {"altin", "Altın"},
	{"gumus", "Gümüş"}, {"silver", "Gümüş"},
	{"cok renkli", "Çok Renkli"}, {"multi", "Çok Renkli"},
}

// sizeTokens are apparel sizes recognized in titles, checked as whole
// words after normalization. Larger compound tokens come first.
var sizeTokens = []string{
	"xxxl", "3xl", "xxl", "2xl", "xl", "xs", "l", "m", "s",
	"34", "36", "38", "40", "42", "44", "46", "48", "50", "52",
}

// genderTable maps gender tokens to the marketplace wording.
var genderTable = []struct {
	token     string
	canonical string
}{
	{"erkek cocuk", "Erkek Çocuk"},
	{"kiz cocuk", "Kız Çocuk"},
	{"erkek", "Erkek"}, {"men", "Erkek"}, {"man", "Erkek"},
	{"kadin", "Kadın"}, {"women", "Kadın"}, {"woman", "Kadın"}, {"bayan", "Kadın"},
	{"unisex", "Unisex"},
	{"bebek", "Bebek"}, {"cocuk", "Çocuk"},
}

// materialTable maps fabric tokens to the marketplace wording.
var materialTable = []struct {
	token     string
	canonical string
}{
	{"pamuk", "Pamuk"}, {"cotton", "Pamuk"}, {"pamuklu", "Pamuk"},
	{"keten", "Keten"}, {"linen", "Keten"},
	{"polyester", "Polyester"},
	{"viskon", "Viskon"}, {"viscose", "Viskon"},
	{"yun", "Yün"}, {"wool", "Yün"},
	{"denim", "Denim"}, {"kot", "Denim"},
	{"deri", "Deri"}, {"leather", "Deri"},
	{"akrilik", "Akrilik"}, {"kasmir", "Kaşmir"},
	{"elastan", "Elastan"}, {"likra", "Elastan"},
}

// ExtractFacts derives product facts from the structured fields and the
// free text of a product. Output order is fixed: category, gender, color,
// size, material. Structured fields win over text scanning.
func ExtractFacts(p *catalog.Product) []marketplace.ProductFact {
	text := Normalize(p.Title + " " + p.Description)
	var facts []marketplace.ProductFact

	if key := p.SearchKey(); key != "" {
		facts = append(facts, marketplace.ProductFact{Kind: marketplace.FactCategory, RawText: key})
	}

	if g := findToken(text, genderTable); g != "" {
		facts = append(facts, marketplace.ProductFact{Kind: marketplace.FactGender, RawText: g})
	}

	color := canonicalColor(p.Color)
	if color == "" {
		color = findToken(text, colorTable)
	}
	if color != "" {
		facts = append(facts, marketplace.ProductFact{Kind: marketplace.FactColor, RawText: color})
	}

	size := p.Size
	if size == "" {
		size = findSize(text)
	}
	if size != "" {
		facts = append(facts, marketplace.ProductFact{Kind: marketplace.FactSize, RawText: size})
	}

	if m := findToken(text, materialTable); m != "" {
		facts = append(facts, marketplace.ProductFact{Kind: marketplace.FactMaterial, RawText: m})
	}

	return facts
}

// canonicalColor maps an explicitly recorded color to marketplace wording,
// falling back to the value as given when the table does not know it.
func canonicalColor(color string) string {
	if color == "" {
		return ""
	}
	normalized := Normalize(color)
	for _, e := range colorTable {
		if normalized == e.token {
			return e.canonical
		}
	}
	return color
}

func findToken(normalizedText string, table []struct{ token, canonical string }) string {
	for _, e := range table {
		if containsWord(normalizedText, e.token) {
			return e.canonical
		}
	}
	return ""
}

func findSize(normalizedText string) string {
	for _, tok := range sizeTokens {
		if containsWord(normalizedText, tok) {
			if tok == "3xl" {
				return "XXXL"
			}
			if tok == "2xl" {
				return "XXL"
			}
			if tok >= "a" && tok <= "zzzz" {
				return upperASCII(tok)
			}
			return tok
		}
	}
	return ""
}

func upperASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}
