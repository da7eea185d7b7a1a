// Package pricing computes the illustrative monthly premium estimate shown
// in the quote wizard. The figure is never an offer of coverage.
package pricing

import (
	"errors"
	"fmt"
	"math"

	"github.com/mark3labs/leadwizard/internal/product"
)

// Disclaimer must accompany every estimate shown to a user.
const Disclaimer = "Estimate only. Final pricing is subject to change by a licensed advisor."

// ErrUnknownProduct is returned when no base amount is configured for a product.
var ErrUnknownProduct = errors.New("no base amount for product")

// Table holds the estimator's constants.
type Table struct {
	Base         map[product.Product]float64 `mapstructure:"base" yaml:"base"`
	SmokerFactor float64                     `mapstructure:"smoker_factor" yaml:"smoker_factor"`
	PerDependent float64                     `mapstructure:"per_dependent" yaml:"per_dependent"`
}

// DefaultTable returns the stock monthly amounts.
func DefaultTable() Table {
	return Table{
		Base: map[product.Product]float64{
			product.Health:   350,
			product.Business: 300,
			product.Medicare: 250,
			product.Auto:     150,
			product.Home:     100,
			product.Life:     50,
		},
		SmokerFactor: 1.5,
		PerDependent: 50,
	}
}

// Estimate returns round(base × smokerFactor? + dependents × perDependent).
// Negative dependent counts are treated as zero.
func (t Table) Estimate(p product.Product, smoker bool, dependents int) (int, error) {
	base, ok := t.Base[p]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownProduct, p)
	}
	if smoker {
		base *= t.SmokerFactor
	}
	if dependents < 0 {
		dependents = 0
	}
	return int(math.Round(base + float64(dependents)*t.PerDependent)), nil
}

// Validate checks a table loaded from configuration.
func (t Table) Validate() error {
	if t.SmokerFactor < 1 {
		return fmt.Errorf("smoker_factor must be >= 1, got %v", t.SmokerFactor)
	}
	if t.PerDependent < 0 {
		return fmt.Errorf("per_dependent must be >= 0, got %v", t.PerDependent)
	}
	for _, p := range product.All() {
		base, ok := t.Base[p]
		if !ok {
			return fmt.Errorf("missing base amount for %s", p)
		}
		if base <= 0 {
			return fmt.Errorf("base amount for %s must be > 0, got %v", p, base)
		}
	}
	return nil
}

// Estimate uses the default table.
func Estimate(p product.Product, smoker bool, dependents int) (int, error) {
	return DefaultTable().Estimate(p, smoker, dependents)
}

// Format renders an estimate as a monthly amount.
func Format(amount int) string {
	return fmt.Sprintf("$%d/mo", amount)
}
