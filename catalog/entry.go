// Package catalog holds the product catalog shared by all resolution
// requests. Entries are loaded once and read-mostly afterwards; the only
// post-load mutation is the popularity counter.
package catalog

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Entry is a single catalog record. All fields except the popularity
// counter are immutable after the entry joins a Catalog.
type Entry struct {
	// Key uniquely identifies the entry across the catalog. Lowercase.
	Key string
	// DisplayName is the customer-facing name, including the
	// specification suffix when it distinguishes same-named products.
	DisplayName string
	// Name is the bare product name.
	Name          string
	Specification string
	Price         float64
	Unit          string
	Category      string
	Keywords      []string
	Description   string
	Taste         string
	Origin        string
	Benefits      string
	SuitableFor   string
	IsSeasonal    bool

	popularity atomic.Int64
}

// Popularity returns the current popularity counter.
func (e *Entry) Popularity() int64 {
	return e.popularity.Load()
}

// AddPopularity bumps the popularity counter. Negative increments are
// ignored; popularity only increases.
func (e *Entry) AddPopularity(n int64) {
	if n > 0 {
		e.popularity.Add(n)
	}
}

// DisplayNameFor derives a customer-facing display name. The
// specification is appended only when it carries information beyond the
// unit and is not already part of the name.
func DisplayNameFor(name, specification, unit string) string {
	if specification != "" &&
		!strings.EqualFold(specification, unit) &&
		!strings.Contains(name, specification) {
		return fmt.Sprintf("%s (%s)", name, specification)
	}
	return name
}

// KeyFor derives the unique catalog key from a display name.
func KeyFor(displayName string) string {
	return strings.ToLower(strings.TrimSpace(displayName))
}
