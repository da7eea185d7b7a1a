// Package product holds the brokerage's insurance product catalogue.
package product

import (
	"errors"
	"fmt"
	"strings"
)

// Product identifies an insurance line offered by the brokerage.
type Product string

const (
	Health   Product = "health"
	Business Product = "business"
	Medicare Product = "medicare"
	Auto     Product = "auto"
	Home     Product = "home"
	Life     Product = "life"
)

// ErrUnknown is returned when a product name is not in the catalogue.
var ErrUnknown = errors.New("unknown product")

var labels = map[Product]string{
	Health:   "Health Insurance",
	Business: "Business Insurance",
	Medicare: "Medicare",
	Auto:     "Auto Insurance",
	Home:     "Home Insurance",
	Life:     "Life Insurance",
}

// All returns every product in display order.
func All() []Product {
	return []Product{Health, Life, Auto, Home, Business, Medicare}
}

// Parse resolves a product name, ignoring case and surrounding whitespace.
func Parse(s string) (Product, error) {
	p := Product(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := labels[p]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknown, s)
	}
	return p, nil
}

// Valid reports whether p is in the catalogue.
func (p Product) Valid() bool {
	_, ok := labels[p]
	return ok
}

// Label returns the human readable name.
func (p Product) Label() string {
	if l, ok := labels[p]; ok {
		return l
	}
	return string(p)
}

// RequiresTobacco reports whether underwriting for p asks about tobacco use.
func (p Product) RequiresTobacco() bool {
	return p == Health || p == Life
}

// Names returns the string form of All, for option lists and flag help.
func Names() []string {
	all := All()
	out := make([]string, len(all))
	for i, p := range all {
		out[i] = string(p)
	}
	return out
}
