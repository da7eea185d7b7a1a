// Package form holds wizard field values.
//
// A Store is immutable: every write returns a new Store and leaves the
// receiver untouched, so wizard transitions can be compared and replayed.
package form

import (
	"errors"
	"fmt"
	"sort"
)

// Field names shared by every wizard. The JSON payload uses the same keys.
const (
	FirstName        = "firstName"
	LastName         = "lastName"
	Email            = "email"
	Phone            = "phone"
	DateOfBirth      = "dateOfBirth"
	InsuranceType    = "insuranceType"
	ZipCode          = "zipCode"
	Gender           = "gender"
	MaritalStatus    = "maritalStatus"
	Dependents       = "dependents"
	Smoker           = "smoker"
	Message          = "message"
	Language         = "language"
	PreferredContact = "preferredContact"
	PreferredDate    = "preferredDate"
	PreferredTime    = "preferredTime"
	Licensed         = "licensed"
	YearsExperience  = "yearsExperience"
	Subject          = "subject"
	AgreeTerms       = "agreeTerms"
	AgreeContact     = "agreeContact"
)

var (
	// ErrUnknownField is returned when writing a field the schema does not declare.
	ErrUnknownField = errors.New("unknown field")
	// ErrKindMismatch is returned when a value's kind differs from the schema.
	ErrKindMismatch = errors.New("field kind mismatch")
)

// Schema fixes the kind of every field a wizard knows about.
type Schema map[string]Kind

// DefaultSchema covers the superset of fields used by all wizards.
func DefaultSchema() Schema {
	return Schema{
		FirstName:        KindString,
		LastName:         KindString,
		Email:            KindString,
		Phone:            KindString,
		DateOfBirth:      KindDate,
		InsuranceType:    KindString,
		ZipCode:          KindString,
		Gender:           KindString,
		MaritalStatus:    KindString,
		Dependents:       KindNumber,
		Smoker:           KindBool,
		Message:          KindString,
		Language:         KindString,
		PreferredContact: KindString,
		PreferredDate:    KindDate,
		PreferredTime:    KindString,
		Licensed:         KindBool,
		YearsExperience:  KindNumber,
		Subject:          KindString,
		AgreeTerms:       KindBool,
		AgreeContact:     KindBool,
	}
}

// Store maps field names to values.
type Store struct {
	schema Schema
	values map[string]Value
}

// NewStore creates a store seeded with initial values. Initial values must
// match the schema.
func NewStore(schema Schema, initial map[string]Value) (Store, error) {
	s := Store{schema: schema, values: make(map[string]Value, len(initial))}
	for name, v := range initial {
		if err := schema.check(name, v); err != nil {
			return Store{}, err
		}
		s.values[name] = v
	}
	return s, nil
}

func (sc Schema) check(name string, v Value) error {
	kind, ok := sc[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	if kind != v.Kind() {
		return fmt.Errorf("%w: %s is %s, got %s", ErrKindMismatch, name, kind, v.Kind())
	}
	return nil
}

// With returns a copy of the store with name set to v.
func (s Store) With(name string, v Value) (Store, error) {
	if err := s.schema.check(name, v); err != nil {
		return s, err
	}
	next := Store{schema: s.schema, values: make(map[string]Value, len(s.values)+1)}
	for k, val := range s.values {
		next.values[k] = val
	}
	next.values[name] = v
	return next, nil
}

// Without returns a copy of the store with name cleared.
func (s Store) Without(name string) Store {
	if _, ok := s.values[name]; !ok {
		return s
	}
	next := Store{schema: s.schema, values: make(map[string]Value, len(s.values))}
	for k, val := range s.values {
		if k != name {
			next.values[k] = val
		}
	}
	return next
}

// Get returns the value for name and whether it has been set.
func (s Store) Get(name string) (Value, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Has reports whether name has been set.
func (s Store) Has(name string) bool {
	_, ok := s.values[name]
	return ok
}

// Kind returns the schema kind for name.
func (s Store) Kind(name string) (Kind, bool) {
	k, ok := s.schema[name]
	return k, ok
}

// String returns the string value of name, or "".
func (s Store) String(name string) string {
	return s.values[name].Str()
}

// Number returns the numeric value of name, or 0.
func (s Store) Number(name string) float64 {
	return s.values[name].Num()
}

// Bool returns the boolean value of name, or false.
func (s Store) Bool(name string) bool {
	return s.values[name].Bool()
}

// Len returns the number of set fields.
func (s Store) Len() int {
	return len(s.values)
}

// Names returns the set field names in sorted order.
func (s Store) Names() []string {
	names := make([]string, 0, len(s.values))
	for k := range s.values {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Map returns the JSON form of the named fields that have been set.
// With no names, every set field is returned.
func (s Store) Map(names ...string) map[string]any {
	if len(names) == 0 {
		names = s.Names()
	}
	out := make(map[string]any, len(names))
	for _, name := range names {
		if v, ok := s.values[name]; ok {
			out[name] = v.JSON()
		}
	}
	return out
}

// Equal reports whether both stores hold the same values.
func (s Store) Equal(o Store) bool {
	if len(s.values) != len(o.values) {
		return false
	}
	for k, v := range s.values {
		ov, ok := o.values[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}
