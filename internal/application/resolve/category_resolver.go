package resolve

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/qiyascc/trendsync/internal/domain/marketplace"
)

// CategoryResolver maps a free-text search key to a leaf category id.
//
// Matching runs in tiers, cheapest first:
//  1. keyword table lookup
//  2. exact normalized name match against leaf categories
//  3. semantic similarity over embeddings, when an embedder is wired
//  4. string similarity with substring bonus
//
// Each tier either decides or falls through; there is no default category.
type CategoryResolver struct {
	taxonomy marketplace.TaxonomyProvider
	embedder marketplace.Embedder
	synonyms marketplace.SynonymExpander
	logger   *zap.Logger
}

// NewCategoryResolver builds a resolver. embedder may be nil, which
// disables the semantic tier. synonyms may be nil, which disables
// expansion.
func NewCategoryResolver(taxonomy marketplace.TaxonomyProvider, embedder marketplace.Embedder, synonyms marketplace.SynonymExpander, logger *zap.Logger) *CategoryResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryResolver{
		taxonomy: taxonomy,
		embedder: embedder,
		synonyms: synonyms,
		logger:   logger,
	}
}

// Resolve returns the leaf category id for the search key, or ErrNoMatch
// wrapped with the key when every tier is exhausted.
func (r *CategoryResolver) Resolve(ctx context.Context, searchKey string) (int, error) {
	normalized := Normalize(searchKey)
	if normalized == "" {
		return 0, fmt.Errorf("%w: empty search key", marketplace.ErrNoMatch)
	}

	if id := matchKeyword(normalized); id != 0 {
		r.logger.Debug("category resolved by keyword table",
			zap.String("search_key", searchKey),
			zap.Int("category_id", id))
		return id, nil
	}

	leaves, err := r.taxonomy.Leaves(ctx)
	if err != nil {
		return 0, err
	}
	if len(leaves) == 0 {
		return 0, fmt.Errorf("%w: taxonomy has no leaf categories", marketplace.ErrNoMatch)
	}

	for _, leaf := range leaves {
		if Normalize(leaf.Name) == normalized {
			r.logger.Debug("category resolved by exact name",
				zap.String("search_key", searchKey),
				zap.Int("category_id", leaf.ID))
			return leaf.ID, nil
		}
	}

	if r.embedder != nil {
		if id, ok := r.resolveSemantic(ctx, searchKey, leaves); ok {
			return id, nil
		}
	}

	best, bestScore := 0, -1.0
	for _, leaf := range leaves {
		score := SimilarityScore(normalized, Normalize(leaf.Name))
		if score > bestScore {
			best, bestScore = leaf.ID, score
		}
	}
	r.logger.Debug("category resolved by string similarity",
		zap.String("search_key", searchKey),
		zap.Int("category_id", best),
		zap.Float64("score", bestScore))
	return best, nil
}

// resolveSemantic runs the embedding tier. Any embedder failure degrades
// to the string-similarity tier instead of failing the resolution.
func (r *CategoryResolver) resolveSemantic(ctx context.Context, searchKey string, leaves []marketplace.CategoryNode) (int, bool) {
	queries := []string{searchKey}
	if r.synonyms != nil {
		queries = append(queries, r.synonyms.Synonyms(searchKey)...)
	}

	texts := make([]string, 0, len(queries)+len(leaves))
	texts = append(texts, queries...)
	for _, leaf := range leaves {
		texts = append(texts, leaf.Name)
	}

	vectors, err := r.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		r.logger.Warn("embedding failed, falling back to string similarity",
			zap.String("search_key", searchKey),
			zap.Error(err))
		return 0, false
	}
	if len(vectors) != len(texts) {
		r.logger.Warn("embedder returned unexpected vector count",
			zap.Int("want", len(texts)),
			zap.Int("got", len(vectors)))
		return 0, false
	}

	queryVectors := vectors[:len(queries)]
	leafVectors := vectors[len(queries):]

	best, bestScore := 0, -1.0
	for i, lv := range leafVectors {
		score := -1.0
		for _, qv := range queryVectors {
			if s := Cosine(qv, lv); s > score {
				score = s
			}
		}
		if score > bestScore {
			best, bestScore = leaves[i].ID, score
		}
	}
	r.logger.Debug("category resolved by semantic similarity",
		zap.String("search_key", searchKey),
		zap.Int("category_id", best),
		zap.Float64("score", bestScore))
	return best, true
}
