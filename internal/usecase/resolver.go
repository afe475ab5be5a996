package usecase

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/voicecart/backend/internal/domain"
	"github.com/voicecart/backend/internal/lexicon"
)

const (
	defaultMinSimilarity  = 0.5
	defaultMaxSuggestions = 3
	defaultSearchLimit    = 10
)

// ResolverConfig holds configuration for the product resolver
type ResolverConfig struct {
	Scorer             Scorer
	MinSimilarity      float64
	MaxSuggestions     int
	EnableDebugLogging bool
}

// Resolver maps a spoken product phrase to a catalog product, falling back to
// ranked suggestions when there is no exact or alias hit.
type Resolver struct {
	catalog            domain.ProductCatalog
	scorer             Scorer
	minSimilarity      float64
	maxSuggestions     int
	enableDebugLogging bool
	logger             logrus.FieldLogger
}

// NewResolver creates a resolver over catalog
func NewResolver(catalog domain.ProductCatalog, config ResolverConfig, logger logrus.FieldLogger) *Resolver {
	scorer := config.Scorer
	if scorer == nil {
		scorer, _ = NewScorer(StrategyHybrid)
	}

	threshold := config.MinSimilarity
	if threshold <= 0 {
		threshold = defaultMinSimilarity
	}

	k := config.MaxSuggestions
	if k <= 0 {
		k = defaultMaxSuggestions
	}

	return &Resolver{
		catalog:            catalog,
		scorer:             scorer,
		minSimilarity:      threshold,
		maxSuggestions:     k,
		enableDebugLogging: config.EnableDebugLogging,
		logger:             orStandardLogger(logger),
	}
}

// Resolve looks up phrase in the catalog. A unique exact hit on the canonical
// name or a language alias wins; otherwise the top suggestions above the
// similarity threshold are returned, best first, ties in catalog order.
func (r *Resolver) Resolve(ctx context.Context, phrase, language string) (domain.ResolveResult, error) {
	key := lexicon.Normalize(phrase)
	if key == "" {
		return domain.ResolveResult{}, nil
	}
	language = lexicon.CanonicalCode(language)

	if p, ok := r.exactMatch(key, language); ok {
		if r.enableDebugLogging {
			r.logger.WithFields(logrus.Fields{"phrase": key, "product": p.ID}).Debug("exact match")
		}
		return domain.ResolveResult{Exact: &p}, nil
	}

	suggestions, err := r.rank(ctx, key, language, r.maxSuggestions)
	if err != nil {
		return domain.ResolveResult{}, err
	}
	return domain.ResolveResult{Suggestions: suggestions}, nil
}

// Search returns products for a free-text query: an exact hit first, then
// products whose category equals the query, then fuzzy matches. An empty
// query lists the catalog.
func (r *Resolver) Search(ctx context.Context, query, language string, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	key := lexicon.Normalize(query)
	all := r.catalog.All()
	if key == "" {
		return truncate(all, limit), nil
	}
	language = lexicon.CanonicalCode(language)

	var out []domain.Product
	seen := make(map[string]bool)
	push := func(p domain.Product) {
		if !seen[p.ID] && len(out) < limit {
			seen[p.ID] = true
			out = append(out, p)
		}
	}

	if p, ok := r.exactMatch(key, language); ok {
		push(p)
	}
	for _, p := range all {
		if lexicon.Normalize(p.Category) == key {
			push(p)
		}
	}

	ranked, err := r.rank(ctx, key, language, limit)
	if err != nil {
		return nil, err
	}
	for _, m := range ranked {
		push(m.Product)
	}

	return out, nil
}

// Related returns other products from the same category
func (r *Resolver) Related(productID string, limit int) []domain.Product {
	return r.catalog.Related(productID, limit)
}

// exactMatch finds the single product whose canonical name or alias in
// language equals key. Ambiguous keys do not match.
func (r *Resolver) exactMatch(key, language string) (domain.Product, bool) {
	var hit domain.Product
	hits := 0
	for _, p := range r.catalog.All() {
		for _, name := range p.Names(language) {
			if lexicon.Normalize(name) == key {
				hit = p
				hits++
				break
			}
		}
	}
	return hit, hits == 1
}

// rank scores every product against key and returns the best k above the threshold
func (r *Resolver) rank(ctx context.Context, key, language string, k int) ([]domain.MatchResult, error) {
	var matches []domain.MatchResult

	for _, p := range r.catalog.All() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		best := 0.0
		for _, name := range p.Names(language) {
			best = max(best, r.scorer.Score(key, name))
		}

		if r.enableDebugLogging {
			r.logger.WithFields(logrus.Fields{
				"phrase":  key,
				"product": p.ID,
				"score":   best,
			}).Debug("scored candidate")
		}

		if best >= r.minSimilarity {
			matches = append(matches, domain.MatchResult{Product: p, Score: best})
		}
	}

	// Stable sort keeps catalog order for equal scores
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

func truncate(products []domain.Product, limit int) []domain.Product {
	if len(products) > limit {
		return products[:limit]
	}
	return products
}

func orStandardLogger(logger logrus.FieldLogger) logrus.FieldLogger {
	if logger == nil {
		return logrus.StandardLogger()
	}
	return logger
}
