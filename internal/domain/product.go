package domain

// Unit describes how a product is measured
type Unit string

const (
	UnitCount  Unit = "count"
	UnitWeight Unit = "weight"
	UnitVolume Unit = "volume"
)

// Valid reports whether u is one of the known units
func (u Unit) Valid() bool {
	switch u {
	case UnitCount, UnitWeight, UnitVolume:
		return true
	}
	return false
}

// Product is a canonical catalog entry. Aliases are keyed by ISO language code.
type Product struct {
	ID            string              `json:"id"`
	CanonicalName string              `json:"canonicalName"`
	Aliases       map[string][]string `json:"aliases,omitempty"`
	Unit          Unit                `json:"unit"`
	Category      string              `json:"category"`
	Price         float64             `json:"price,omitempty"`
}

// AliasesFor returns the aliases registered for a language
func (p Product) AliasesFor(language string) []string {
	if p.Aliases == nil {
		return nil
	}
	return p.Aliases[language]
}

// Names returns the canonical name followed by the aliases for a language
func (p Product) Names(language string) []string {
	aliases := p.AliasesFor(language)
	names := make([]string, 0, len(aliases)+1)
	names = append(names, p.CanonicalName)
	return append(names, aliases...)
}

// MatchResult is a scored catalog candidate produced by the resolver
type MatchResult struct {
	Product Product `json:"product"`
	Score   float64 `json:"score"`
}

// ResolveResult is the outcome of resolving a spoken product phrase.
// Exact is set on a unique canonical-name or alias hit; otherwise
// Suggestions holds ranked fuzzy candidates (possibly empty).
type ResolveResult struct {
	Exact       *Product      `json:"exact,omitempty"`
	Suggestions []MatchResult `json:"suggestions"`
}

// Found reports whether the phrase resolved to a single product
func (r ResolveResult) Found() bool {
	return r.Exact != nil
}
