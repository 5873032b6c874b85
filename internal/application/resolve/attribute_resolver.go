package resolve

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/qiyascc/trendsync/internal/domain/marketplace"
)

// AttributeResolver assigns values to a category's attribute schema from
// product facts. Output follows schema declaration order, so the same
// inputs always produce the same payload.
type AttributeResolver struct {
	schemas marketplace.SchemaProvider
	logger  *zap.Logger
}

func NewAttributeResolver(schemas marketplace.SchemaProvider, logger *zap.Logger) *AttributeResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttributeResolver{schemas: schemas, logger: logger}
}

// attributeKind maps a schema attribute name to the fact kind that can
// satisfy it. Unknown names get no fact kind.
func attributeKind(name string) (marketplace.FactKind, bool) {
	switch Normalize(name) {
	case "renk", "color", "colour":
		return marketplace.FactColor, true
	case "cinsiyet", "gender":
		return marketplace.FactGender, true
	case "beden", "size", "yas grubu beden":
		return marketplace.FactSize, true
	case "materyal", "material", "kumas", "kumas tipi":
		return marketplace.FactMaterial, true
	}
	return "", false
}

// Resolve walks the category schema in order and produces one resolved
// attribute per schema entry it can satisfy.
//
// Per attribute:
//   - a fact of the matching kind is matched against declared values,
//     first by normalized equality, then by substring;
//   - a required attribute without a usable fact falls back to the first
//     declared value (logged, so guessed values can be audited);
//   - when no values are declared and custom values are allowed, the fact
//     text (or a synthesized placeholder) is sent as a custom value;
//   - a required attribute with no values, no custom allowance and no fact
//     fails with ErrUnsatisfiableRequiredAttribute naming the attribute.
func (r *AttributeResolver) Resolve(ctx context.Context, categoryID int, facts []marketplace.ProductFact) ([]marketplace.ResolvedAttribute, error) {
	defs, err := r.schemas.AttributesFor(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	factByKind := make(map[marketplace.FactKind]string, len(facts))
	for _, f := range facts {
		if _, seen := factByKind[f.Kind]; !seen {
			factByKind[f.Kind] = f.RawText
		}
	}

	resolved := make([]marketplace.ResolvedAttribute, 0, len(defs))
	for _, def := range defs {
		attr, ok, err := r.resolveOne(def, factByKind)
		if err != nil {
			return nil, err
		}
		if ok {
			resolved = append(resolved, attr)
		}
	}
	return resolved, nil
}

func (r *AttributeResolver) resolveOne(def marketplace.AttributeDefinition, factByKind map[marketplace.FactKind]string) (marketplace.ResolvedAttribute, bool, error) {
	factText := ""
	if kind, ok := attributeKind(def.Name); ok {
		factText = factByKind[kind]
	}

	if factText != "" && len(def.Values) > 0 {
		if v, ok := matchValue(factText, def.Values); ok {
			attr, err := marketplace.NewValueAttribute(def.ID, v.ID)
			return attr, err == nil, err
		}
	}

	if len(def.Values) == 0 {
		if !def.AllowCustom {
			if !def.Required {
				return marketplace.ResolvedAttribute{}, false, nil
			}
			return marketplace.ResolvedAttribute{}, false,
				fmt.Errorf("%w: %s", marketplace.ErrUnsatisfiableRequiredAttribute, def.Name)
		}
		if factText == "" {
			if !def.Required {
				return marketplace.ResolvedAttribute{}, false, nil
			}
			factText = "Sample " + def.Name
			r.logger.Warn("synthesized custom value for required attribute",
				zap.String("attribute", def.Name),
				zap.String("value", factText))
		}
		attr, err := marketplace.NewCustomAttribute(def.ID, factText)
		return attr, err == nil, err
	}

	// Declared values exist but none matched the fact (or there was no
	// fact). Required attributes default to the first declared value.
	if !def.Required {
		// An unmatched fact on an optional attribute is dropped rather
		// than guessed.
		return marketplace.ResolvedAttribute{}, false, nil
	}

	first := def.Values[0]
	r.logger.Warn("defaulted required attribute to first declared value",
		zap.String("attribute", def.Name),
		zap.String("value", first.Name),
		zap.String("fact", factText))
	attr, err := marketplace.NewValueAttribute(def.ID, first.ID)
	return attr, err == nil, err
}

// matchValue finds the declared value a fact refers to: normalized
// equality first, then whole-word containment either way.
func matchValue(factText string, values []marketplace.AttributeValue) (marketplace.AttributeValue, bool) {
	normalized := Normalize(factText)
	for _, v := range values {
		if Normalize(v.Name) == normalized {
			return v, true
		}
	}
	for _, v := range values {
		vn := Normalize(v.Name)
		if containsWord(vn, normalized) || containsWord(normalized, vn) {
			return v, true
		}
	}
	return marketplace.AttributeValue{}, false
}
