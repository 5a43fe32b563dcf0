package categories

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category describes one dish category. Categories are static for the life of
// the process.
type Category struct {
	ID              string   `json:"id" yaml:"id"`
	Label           string   `json:"label" yaml:"label"`
	Singular        string   `json:"singular" yaml:"singular"`
	LegacyKey       string   `json:"legacy_key,omitempty" yaml:"legacy_key"`
	MinServings     int      `json:"min_servings" yaml:"min_servings"`
	MaxServings     int      `json:"max_servings" yaml:"max_servings"`
	DefaultServings int      `json:"default_servings" yaml:"default_servings"`
	DefaultEnabled  bool     `json:"default_enabled" yaml:"default_enabled"`
	DefaultDishes   []string `json:"default_dishes,omitempty" yaml:"default_dishes"`
}

// ClampServings forces n into [MinServings, MaxServings]
func (c Category) ClampServings(n int) int {
	if n < c.MinServings {
		return c.MinServings
	}
	if n > c.MaxServings {
		return c.MaxServings
	}
	return n
}

// reservedKey is the history entry timestamp field; a category cannot share it
const reservedKey = "at"

// Registry is the ordered set of categories the picker works with
type Registry struct {
	list     []Category
	byID     map[string]int
	byLegacy map[string]int
}

// New builds a registry from an ordered list of categories.
// Returns an error when ids collide or serving bounds are inconsistent.
func New(list []Category) (*Registry, error) {
	if len(list) == 0 {
		return nil, fmt.Errorf("at least one category is required")
	}

	r := &Registry{
		list:     make([]Category, 0, len(list)),
		byID:     make(map[string]int, len(list)),
		byLegacy: make(map[string]int, len(list)),
	}

	for _, c := range list {
		c.ID = strings.TrimSpace(c.ID)
		c.LegacyKey = strings.TrimSpace(c.LegacyKey)
		if c.ID == "" {
			return nil, fmt.Errorf("category id must not be empty")
		}
		if c.ID == reservedKey || c.LegacyKey == reservedKey {
			return nil, fmt.Errorf("category id %q is reserved", reservedKey)
		}
		if _, dup := r.byID[c.ID]; dup {
			return nil, fmt.Errorf("duplicate category id %q", c.ID)
		}
		if c.MinServings < 0 {
			return nil, fmt.Errorf("category %q: min_servings must be >= 0", c.ID)
		}
		if c.MaxServings < c.MinServings {
			return nil, fmt.Errorf("category %q: max_servings must be >= min_servings", c.ID)
		}
		if c.DefaultServings < c.MinServings || c.DefaultServings > c.MaxServings {
			return nil, fmt.Errorf("category %q: default_servings must be between %d and %d", c.ID, c.MinServings, c.MaxServings)
		}
		if c.Label == "" {
			c.Label = c.ID
		}
		if c.Singular == "" {
			c.Singular = strings.ToLower(c.Label)
		}
		if c.LegacyKey != "" {
			if _, dup := r.byLegacy[c.LegacyKey]; dup {
				return nil, fmt.Errorf("duplicate legacy key %q", c.LegacyKey)
			}
			r.byLegacy[c.LegacyKey] = len(r.list)
		}
		c.DefaultDishes = append([]string(nil), c.DefaultDishes...)
		r.byID[c.ID] = len(r.list)
		r.list = append(r.list, c)
	}

	return r, nil
}

// All returns the categories in display order
func (r *Registry) All() []Category {
	out := make([]Category, len(r.list))
	copy(out, r.list)
	return out
}

// Len returns the number of categories
func (r *Registry) Len() int {
	return len(r.list)
}

// Get looks a category up by id
func (r *Registry) Get(id string) (Category, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Category{}, false
	}
	return r.list[i], true
}

// ByLegacyKey looks a category up by the field name older storage formats used for it
func (r *Registry) ByLegacyKey(key string) (Category, bool) {
	i, ok := r.byLegacy[key]
	if !ok {
		return Category{}, false
	}
	return r.list[i], true
}

// IDs returns the category ids in display order
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.list))
	for i, c := range r.list {
		ids[i] = c.ID
	}
	return ids
}

// Label returns the display label for id, or id itself when unknown
func (r *Registry) Label(id string) string {
	if c, ok := r.Get(id); ok {
		return c.Label
	}
	return id
}

// Default returns the built-in categories
func Default() *Registry {
	r, err := New(builtin)
	if err != nil {
		panic(err)
	}
	return r
}

var builtin = []Category{
	{
		ID: "mains", Label: "Main course", Singular: "main", LegacyKey: "main",
		MinServings: 0, MaxServings: 3, DefaultServings: 1, DefaultEnabled: true,
		DefaultDishes: []string{"Chicken Biryani", "Lamb Kofta", "Lentil Soup"},
	},
	{
		ID: "sides", Label: "Side dish", Singular: "side", LegacyKey: "side",
		MinServings: 0, MaxServings: 3, DefaultServings: 1, DefaultEnabled: true,
		DefaultDishes: []string{"Samosa", "Fattoush Salad", "Garlic Bread"},
	},
	{
		ID: "desserts", Label: "Dessert", Singular: "dessert", LegacyKey: "dessert",
		MinServings: 0, MaxServings: 2, DefaultServings: 1, DefaultEnabled: true,
		DefaultDishes: []string{"Kunafa", "Basbousa", "Date Cookies"},
	},
	{
		ID: "soups", Label: "Soup", Singular: "soup", LegacyKey: "soup",
		MinServings: 0, MaxServings: 2, DefaultServings: 1, DefaultEnabled: false,
		DefaultDishes: []string{"Harira", "Chicken Shorba", "Tomato Soup"},
	},
	{
		ID: "salads", Label: "Salad", Singular: "salad", LegacyKey: "salad",
		MinServings: 0, MaxServings: 2, DefaultServings: 1, DefaultEnabled: false,
		DefaultDishes: []string{"Tabbouleh", "Greek Salad", "Shirazi Salad"},
	},
}

// fileFormat is the layout of a categories YAML file
type fileFormat struct {
	Categories []Category `yaml:"categories"`
}

// Parse reads a registry from YAML
func Parse(data []byte) (*Registry, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse categories: %w", err)
	}
	return New(f.Categories)
}

// LoadFile reads a registry from a YAML file
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read categories file: %w", err)
	}
	return Parse(data)
}
