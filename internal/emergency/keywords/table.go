// Package keywords holds the weighted keyword tables used to classify
// emergency utterances.
package keywords

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// GeneralCategory is the category reported when nothing in a table matches.
// Tables may not declare it themselves.
const GeneralCategory = "general"

var (
	ErrEmptyCategoryName = errors.New("category name is required")
	ErrReservedCategory  = errors.New("category name is reserved")
	ErrDuplicateCategory = errors.New("duplicate category")
	ErrInvalidWeight     = errors.New("keyword weight must be positive")
)

type Keyword struct {
	Term   string  `yaml:"term" json:"term"`
	Weight float64 `yaml:"weight" json:"weight"`
}

type Category struct {
	Name     string    `yaml:"name" json:"name"`
	Keywords []Keyword `yaml:"keywords" json:"keywords"`
}

// Table is an ordered, immutable set of categories. Declaration order
// decides ties between categories with equal confidence.
type Table struct {
	categories []Category
}

// New normalizes and validates categories into a Table. Terms are
// lowercased and trimmed; blank terms are dropped.
func New(categories []Category) (*Table, error) {
	seen := make(map[string]struct{}, len(categories))
	out := make([]Category, 0, len(categories))

	for _, c := range categories {
		name := strings.ToLower(strings.TrimSpace(c.Name))
		if name == "" {
			return nil, ErrEmptyCategoryName
		}
		if name == GeneralCategory {
			return nil, fmt.Errorf("%w: %s", ErrReservedCategory, name)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCategory, name)
		}
		seen[name] = struct{}{}

		kws := make([]Keyword, 0, len(c.Keywords))
		for _, k := range c.Keywords {
			term := strings.ToLower(strings.TrimSpace(k.Term))
			if term == "" {
				continue
			}
			if k.Weight <= 0 {
				return nil, fmt.Errorf("%w: %s/%s", ErrInvalidWeight, name, term)
			}
			kws = append(kws, Keyword{Term: term, Weight: k.Weight})
		}
		out = append(out, Category{Name: name, Keywords: kws})
	}

	return &Table{categories: out}, nil
}

// MustNew is New for tables known at compile time.
func MustNew(categories []Category) *Table {
	t, err := New(categories)
	if err != nil {
		panic(err)
	}
	return t
}

// Categories returns a copy of the table's categories in declaration order.
func (t *Table) Categories() []Category {
	if t == nil {
		return nil
	}
	out := make([]Category, len(t.categories))
	for i, c := range t.categories {
		out[i] = Category{Name: c.Name, Keywords: append([]Keyword(nil), c.Keywords...)}
	}
	return out
}

// Names returns the category names in declaration order.
func (t *Table) Names() []string {
	if t == nil {
		return nil
	}
	names := make([]string, len(t.categories))
	for i, c := range t.categories {
		names[i] = c.Name
	}
	return names
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.categories)
}

// Each calls fn for every category in declaration order without copying.
// fn must not retain or modify the keyword slice.
func (t *Table) Each(fn func(name string, kws []Keyword)) {
	if t == nil {
		return
	}
	for _, c := range t.categories {
		fn(c.Name, c.Keywords)
	}
}

type fileFormat struct {
	Categories []Category `yaml:"categories"`
}

// LoadFile reads a YAML keyword table:
//
//	categories:
//	  - name: fire
//	    keywords:
//	      - {term: fire, weight: 3}
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keyword table: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML keyword table. See LoadFile for the format.
func Parse(data []byte) (*Table, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode keyword table: %w", err)
	}
	return New(f.Categories)
}
