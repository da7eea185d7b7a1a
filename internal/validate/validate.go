// Package validate checks wizard steps against a declarative rule table.
//
// A rule binds a (step, field) pair to a Check and, optionally, to a
// condition on the rest of the store. Every rule for the step is evaluated so
// that the user sees all problems at once.
package validate

import (
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/leadwizard/internal/form"
)

// Errors maps a field name to a human readable reason. An empty set means
// the step is valid.
type Errors map[string]string

// Fields returns the failing field names in sorted order.
func (e Errors) Fields() []string {
	names := make([]string, 0, len(e))
	for k := range e {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// String renders the set as "field: reason" pairs.
func (e Errors) String() string {
	parts := make([]string, 0, len(e))
	for _, f := range e.Fields() {
		parts = append(parts, f+": "+e[f])
	}
	return strings.Join(parts, "; ")
}

// Check inspects one field. It returns a reason when the value fails, or ""
// when it passes. present is false when the field was never set.
type Check func(v form.Value, present bool, now time.Time) string

// Condition decides whether a rule applies to the current store.
type Condition func(s form.Store) bool

// Rule is one row of the table.
type Rule struct {
	Step  int
	Field string
	Check Check
	When  Condition // nil means always
}

// Table is an ordered rule set.
type Table []Rule

// Validate evaluates every rule for step against s. When two rules fail on
// the same field the first one wins.
func (t Table) Validate(step int, s form.Store, now time.Time) Errors {
	errs := Errors{}
	for _, r := range t {
		if r.Step != step {
			continue
		}
		if r.When != nil && !r.When(s) {
			continue
		}
		v, present := s.Get(r.Field)
		reason := r.Check(v, present, now)
		if reason == "" {
			continue
		}
		if _, seen := errs[r.Field]; !seen {
			errs[r.Field] = reason
		}
	}
	return errs
}

// Fields returns the distinct fields referenced by rules for step, in table order.
func (t Table) Fields(step int) []string {
	var out []string
	seen := map[string]bool{}
	for _, r := range t {
		if r.Step == step && !seen[r.Field] {
			seen[r.Field] = true
			out = append(out, r.Field)
		}
	}
	return out
}

// Steps returns the highest step number referenced by the table.
func (t Table) Steps() int {
	max := 0
	for _, r := range t {
		if r.Step > max {
			max = r.Step
		}
	}
	return max
}
