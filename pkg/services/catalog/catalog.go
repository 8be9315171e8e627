package catalog

import (
	"errors"
	"fmt"

	"github.com/de-tools/ledger-sync/pkg/models/domain"
)

var ErrNotFound = errors.New("report not found")

// Catalog is the closed set of reports the pipeline knows how to request.
type Catalog struct {
	defs  []domain.ReportDefinition
	index map[string]int
}

// Default returns the built-in report catalog.
func Default() *Catalog {
	c, err := New(defaultDefinitions)
	if err != nil {
		panic(fmt.Sprintf("built-in report catalog is invalid: %v", err))
	}
	return c
}

// New validates defs and builds a catalog that preserves their order.
func New(defs []domain.ReportDefinition) (*Catalog, error) {
	if err := Validate(defs); err != nil {
		return nil, err
	}

	c := &Catalog{
		defs:  make([]domain.ReportDefinition, len(defs)),
		index: make(map[string]int, len(defs)),
	}
	copy(c.defs, defs)
	for i, d := range c.defs {
		c.index[d.Key] = i
	}
	return c, nil
}

func Validate(defs []domain.ReportDefinition) error {
	if len(defs) == 0 {
		return fmt.Errorf("catalog must contain at least one report")
	}

	seen := make(map[string]struct{}, len(defs))
	for _, d := range defs {
		if d.Key == "" {
			return fmt.Errorf("report key cannot be empty")
		}
		if d.Key == AllReports {
			return fmt.Errorf("report key %q is reserved", d.Key)
		}
		if _, dup := seen[d.Key]; dup {
			return fmt.Errorf("duplicate report key: %s", d.Key)
		}
		seen[d.Key] = struct{}{}

		if d.ReportType == "" {
			return fmt.Errorf("report %s: report type cannot be empty", d.Key)
		}
		if !d.Category.Valid() {
			return fmt.Errorf("report %s: unknown query category %q", d.Key, d.Category)
		}
	}
	return nil
}

// List returns the definitions in catalog order. The slice is a copy.
func (c *Catalog) List() []domain.ReportDefinition {
	out := make([]domain.ReportDefinition, len(c.defs))
	copy(out, c.defs)
	return out
}

func (c *Catalog) Get(key string) (domain.ReportDefinition, error) {
	i, ok := c.index[key]
	if !ok {
		return domain.ReportDefinition{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return c.defs[i], nil
}

func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.defs))
	for _, d := range c.defs {
		keys = append(keys, d.Key)
	}
	return keys
}

// AllReports selects every catalog entry in trigger calls.
const AllReports = "all"
