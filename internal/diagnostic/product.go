// Package diagnostic derives the plotted quantities from GFS fields and
// describes each product's chart.
package diagnostic

import (
	"fmt"
	"sort"
	"strings"

	"github.com/couchcryptid/gfs-plot/internal/domain"
)

// Product is a registered plot type.
type Product struct {
	// Key is the namelist key and product directory name.
	Key string
	// NeedsLevel is set for products plotted on a pressure level.
	NeedsLevel bool
	// HasAnalysis is set when the product draws an analysis image.
	HasAnalysis bool
	// Resize is set when images are scaled to the region's size.
	Resize bool

	title string
	tag   string // contains %d for level products
	steps func(init domain.InitTime, fore []int) []domain.Step
	build func(src Source, level int) (Chart, error)
}

// Tag is the product's part of the image file name.
func (p Product) Tag(level int) string {
	if p.NeedsLevel {
		return fmt.Sprintf(p.tag, level)
	}
	return p.tag
}

// Steps selects the forecast steps the product is drawn for.
func (p Product) Steps(init domain.InitTime, fore []int) []domain.Step {
	if p.steps != nil {
		return p.steps(init, fore)
	}
	return domain.ForecastSteps(fore)
}

// Build reads the product's fields from src and describes its chart.
func (p Product) Build(src Source, level int) (Chart, error) {
	if p.NeedsLevel && level <= 0 {
		return Chart{}, fmt.Errorf("%s: a pressure level is required", p.Key)
	}
	c, err := p.build(src, level)
	if err != nil {
		return Chart{}, fmt.Errorf("%s: %w", p.Key, err)
	}
	if c.Title == "" {
		c.Title = p.title
		if p.NeedsLevel {
			c.Title = fmt.Sprintf("%s %d hPa", p.title, level)
		}
	}
	return c, nil
}

var registry = map[string]Product{}

func register(p Product) {
	if _, dup := registry[p.Key]; dup {
		panic("diagnostic: duplicate product " + p.Key)
	}
	registry[p.Key] = p
}

// Lookup returns the product registered under key.
func Lookup(key string) (Product, error) {
	p, ok := registry[strings.TrimSpace(key)]
	if !ok {
		return Product{}, fmt.Errorf("%q: %w", key, domain.ErrUnknownProduct)
	}
	return p, nil
}

// Products returns every registered product, sorted by key.
func Products() []Product {
	out := make([]Product, 0, len(registry))
	for _, p := range registry {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
