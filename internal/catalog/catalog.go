// Package catalog loads the immutable product catalog.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/voicecart/backend/internal/domain"
	"github.com/voicecart/backend/internal/lexicon"
)

//go:embed default_catalog.json
var defaultCatalog []byte

// catalogFile is the on-disk JSON shape
type catalogFile struct {
	Products []domain.Product `json:"products"`
}

// Catalog is a load-once product list. Insertion order is preserved and used
// as the tie-break order for ranking.
type Catalog struct {
	products []domain.Product
	byID     map[string]int
}

// New builds a catalog from products, validating IDs, names and units
func New(products []domain.Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]domain.Product, 0, len(products)),
		byID:     make(map[string]int, len(products)),
	}

	for i, p := range products {
		p.ID = strings.TrimSpace(p.ID)
		p.CanonicalName = strings.TrimSpace(p.CanonicalName)
		if p.ID == "" {
			return nil, fmt.Errorf("%w: product #%d has no id", domain.ErrInvalidRequest, i)
		}
		if p.CanonicalName == "" {
			return nil, fmt.Errorf("%w: product %s has no canonical name", domain.ErrInvalidRequest, p.ID)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate product id %s", domain.ErrInvalidRequest, p.ID)
		}
		if p.Unit == "" {
			p.Unit = domain.UnitCount
		}
		if !p.Unit.Valid() {
			return nil, fmt.Errorf("%w: product %s has unknown unit %q", domain.ErrInvalidRequest, p.ID, p.Unit)
		}
		p.Aliases = copyAliases(p.Aliases)

		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p)
	}

	return c, nil
}

// Default returns the embedded catalog
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog from a JSON file. An empty path loads the embedded catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes catalog JSON
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return New(file.Products)
}

// Get returns a product by ID
func (c *Catalog) Get(id string) (domain.Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Product{}, false
	}
	return c.products[i], true
}

// All returns the products in catalog order. The slice is a copy.
func (c *Catalog) All() []domain.Product {
	out := make([]domain.Product, len(c.products))
	copy(out, c.products)
	return out
}

// Len returns the number of products
func (c *Catalog) Len() int {
	return len(c.products)
}

// Categories returns distinct categories in first-seen order
func (c *Catalog) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range c.products {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out
}

// Related returns up to limit other products from the same category, in catalog order
func (c *Catalog) Related(productID string, limit int) []domain.Product {
	p, ok := c.Get(productID)
	if !ok || limit <= 0 {
		return nil
	}
	var out []domain.Product
	for _, other := range c.products {
		if other.ID == productID || other.Category != p.Category {
			continue
		}
		out = append(out, other)
		if len(out) == limit {
			break
		}
	}
	return out
}

// copyAliases keys aliases by canonical language code so "en-US" and "en"
// land in one list. Keys are visited in sorted order to keep merges stable.
func copyAliases(in map[string][]string) map[string][]string {
	if in == nil {
		return nil
	}
	keys := make([]string, 0, len(in))
	for lang := range in {
		keys = append(keys, lang)
	}
	sort.Strings(keys)

	out := make(map[string][]string, len(in))
	for _, lang := range keys {
		code := lexicon.CanonicalCode(lang)
		out[code] = append(out[code], in[lang]...)
	}
	return out
}
