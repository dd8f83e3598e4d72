// Package cards holds the card catalog and dealing of secret attribute cards.
package cards

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aaronzipp/bunker/internal/models"
)

//go:embed data/cards.yaml
var defaultCatalog []byte

var (
	ErrUnknownCategory   = errors.New("unknown category")
	ErrMissingCategory   = errors.New("missing category")
	ErrDuplicateCategory = errors.New("duplicate category")
	ErrEmptyDeck         = errors.New("category has no candidate values")
)

// Deck is the set of candidate values for one category
type Deck struct {
	Category models.Category `yaml:"category"`
	Values   []string        `yaml:"values"`
}

// Catalog maps every category to its candidates, in declared order.
// It is not modified after loading.
type Catalog struct {
	decks []Deck
}

// Default returns the catalog embedded in the binary
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog file, falling back to the embedded catalog when path
// is empty
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading card catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog
func Parse(data []byte) (*Catalog, error) {
	var decks []Deck
	if err := yaml.Unmarshal(data, &decks); err != nil {
		return nil, fmt.Errorf("parsing card catalog: %w", err)
	}
	return New(decks)
}

// New validates decks and builds a catalog from them
func New(decks []Deck) (*Catalog, error) {
	seen := make(map[models.Category]bool, len(decks))
	cleaned := make([]Deck, 0, len(decks))
	for _, d := range decks {
		if !d.Category.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, d.Category)
		}
		if seen[d.Category] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCategory, d.Category)
		}
		seen[d.Category] = true

		values := make([]string, 0, len(d.Values))
		for _, v := range d.Values {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptyDeck, d.Category)
		}
		cleaned = append(cleaned, Deck{Category: d.Category, Values: values})
	}
	for _, c := range models.Categories {
		if !seen[c] {
			return nil, fmt.Errorf("%w: %s", ErrMissingCategory, c)
		}
	}
	return &Catalog{decks: cleaned}, nil
}

// Decks returns a copy of the decks in declared order
func (c *Catalog) Decks() []Deck {
	out := make([]Deck, len(c.decks))
	for i, d := range c.decks {
		out[i] = Deck{Category: d.Category, Values: append([]string(nil), d.Values...)}
	}
	return out
}

// Categories returns the categories in declared order
func (c *Catalog) Categories() []models.Category {
	out := make([]models.Category, len(c.decks))
	for i, d := range c.decks {
		out[i] = d.Category
	}
	return out
}

// Contains reports whether value is a candidate for category
func (c *Catalog) Contains(category models.Category, value string) bool {
	for _, d := range c.decks {
		if d.Category != category {
			continue
		}
		for _, v := range d.Values {
			if v == value {
				return true
			}
		}
	}
	return false
}

// MarshalYAML encodes the catalog in the same format Parse accepts
func (c *Catalog) MarshalYAML() (any, error) {
	return c.decks, nil
}
