package marketplace

// FactKind classifies a product fact extracted from the source record.
type FactKind string

const (
	FactCategory FactKind = "category"
	FactGender   FactKind = "gender"
	FactColor    FactKind = "color"
	FactSize     FactKind = "size"
	FactMaterial FactKind = "material"
)

// ProductFact is one piece of evidence about a product, extracted from its
// title, description or structured fields. Facts are recomputed on every
// resolution and never persisted.
type ProductFact struct {
	Kind FactKind
	// RawText is the canonical marketplace wording for the fact, e.g.
	// "Lacivert" for a navy product.
	RawText string
}
