package marketplace

import (
	"encoding/json"
	"fmt"
)

// AttributeValue is one declared value of a category attribute.
type AttributeValue struct {
	ID   int
	Name string
}

// AttributeDefinition describes one attribute of a category schema, in the
// order the marketplace declares it.
type AttributeDefinition struct {
	ID          int
	Name        string
	Required    bool
	AllowCustom bool
	Varianter   bool
	Values      []AttributeValue
}

// ResolvedAttribute is a resolved attribute assignment. It is either a
// reference to a declared value (attribute id + value id) or a custom free
// text value (attribute id + text). The fields are unexported so that a
// ResolvedAttribute can only be built through the constructors, which reject
// non-positive identifiers. There is no way to smuggle a string where the
// marketplace expects a numeric id.
type ResolvedAttribute struct {
	attributeID int
	valueID     int
	custom      string
	isCustom    bool
}

// NewValueAttribute builds a reference to a declared attribute value.
func NewValueAttribute(attributeID, valueID int) (ResolvedAttribute, error) {
	if attributeID <= 0 {
		return ResolvedAttribute{}, fmt.Errorf("%w: attribute id %d", ErrNonNumericAttributeID, attributeID)
	}
	if valueID <= 0 {
		return ResolvedAttribute{}, fmt.Errorf("%w: value id %d for attribute %d", ErrNonNumericAttributeID, valueID, attributeID)
	}
	return ResolvedAttribute{attributeID: attributeID, valueID: valueID}, nil
}

// NewCustomAttribute builds a custom free-text attribute assignment.
func NewCustomAttribute(attributeID int, value string) (ResolvedAttribute, error) {
	if attributeID <= 0 {
		return ResolvedAttribute{}, fmt.Errorf("%w: attribute id %d", ErrNonNumericAttributeID, attributeID)
	}
	if value == "" {
		return ResolvedAttribute{}, fmt.Errorf("marketplace: empty custom value for attribute %d", attributeID)
	}
	return ResolvedAttribute{attributeID: attributeID, custom: value, isCustom: true}, nil
}

// AttributeID returns the attribute identifier.
func (a ResolvedAttribute) AttributeID() int { return a.attributeID }

// IsCustom reports whether the assignment carries a custom value instead of
// a declared value id.
func (a ResolvedAttribute) IsCustom() bool { return a.isCustom }

// ValueID returns the declared value id. Zero when IsCustom is true.
func (a ResolvedAttribute) ValueID() int { return a.valueID }

// CustomValue returns the custom text. Empty when IsCustom is false.
func (a ResolvedAttribute) CustomValue() string { return a.custom }

// MarshalJSON renders the wire form the marketplace expects: numeric ids
// always as JSON numbers, never strings.
func (a ResolvedAttribute) MarshalJSON() ([]byte, error) {
	if a.attributeID <= 0 {
		return nil, fmt.Errorf("%w: attribute id %d", ErrNonNumericAttributeID, a.attributeID)
	}
	if a.isCustom {
		return json.Marshal(struct {
			AttributeID int    `json:"attributeId"`
			CustomValue string `json:"customAttributeValue"`
		}{a.attributeID, a.custom})
	}
	return json.Marshal(struct {
		AttributeID int `json:"attributeId"`
		ValueID     int `json:"attributeValueId"`
	}{a.attributeID, a.valueID})
}
