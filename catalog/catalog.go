package catalog

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Provider exposes a read-only view of the catalog to the matching engine.
type Provider interface {
	// AllEntries returns every entry in stable insertion order.
	AllEntries() []*Entry
	// Get looks an entry up by its unique key.
	Get(key string) (*Entry, bool)
}

// Catalog is the in-memory Provider implementation. The entry set is fixed
// at construction; popularity counters are the only mutable state and use
// atomics, so concurrent readers never block.
type Catalog struct {
	entries    []*Entry
	byKey      map[string]*Entry
	byCategory map[string][]*Entry
	seasonal   []*Entry
	hints      CategoryHints
}

// Option customizes a Catalog at construction.
type Option func(*Catalog)

// WithCategoryHints overrides the keyword tables used by InferCategory.
func WithCategoryHints(h CategoryHints) Option {
	return func(c *Catalog) { c.hints = h }
}

// New builds a catalog from entries, preserving their order. Duplicate
// keys are rejected: the key is the identity the rest of the engine
// depends on.
func New(entries []*Entry, opts ...Option) (*Catalog, error) {
	c := &Catalog{
		entries:    make([]*Entry, 0, len(entries)),
		byKey:      make(map[string]*Entry, len(entries)),
		byCategory: make(map[string][]*Entry),
		hints:      DefaultCategoryHints(),
	}
	for _, opt := range opts {
		opt(c)
	}

	for _, e := range entries {
		if e == nil {
			continue
		}
		if e.DisplayName == "" {
			e.DisplayName = DisplayNameFor(e.Name, e.Specification, e.Unit)
		}
		key := KeyFor(e.Key)
		if key == "" {
			key = KeyFor(e.DisplayName)
		}
		if key == "" {
			return nil, errors.Errorf("catalog entry %q has no key", e.Name)
		}
		if _, dup := c.byKey[key]; dup {
			return nil, errors.Errorf("duplicate catalog key %q", key)
		}
		e.Key = key
		c.byKey[key] = e
		c.entries = append(c.entries, e)
		c.byCategory[e.Category] = append(c.byCategory[e.Category], e)
		if e.IsSeasonal {
			c.seasonal = append(c.seasonal, e)
		}
	}

	slog.Info("catalog loaded",
		"entries", len(c.entries),
		"categories", len(c.byCategory),
		"seasonal", len(c.seasonal))
	return c, nil
}

// AllEntries implements Provider.
func (c *Catalog) AllEntries() []*Entry {
	return c.entries
}

// Get implements Provider.
func (c *Catalog) Get(key string) (*Entry, bool) {
	e, ok := c.byKey[KeyFor(key)]
	return e, ok
}

// Len reports the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// IncrementPopularity bumps an entry's popularity counter. Unknown keys
// are ignored.
func (c *Catalog) IncrementPopularity(key string, delta int64) {
	if e, ok := c.Get(key); ok {
		e.AddPopularity(delta)
	}
}

// ByCategory returns up to limit entries of the given category, most
// popular first.
func (c *Catalog) ByCategory(category string, limit int) []*Entry {
	if category == "" {
		return nil
	}
	var out []*Entry
	for _, e := range c.entries {
		if strings.EqualFold(e.Category, category) {
			out = append(out, e)
		}
	}
	sortByPopularity(out)
	return capLen(out, limit)
}

// Popular returns up to limit entries ordered by popularity, optionally
// restricted to one category.
func (c *Catalog) Popular(limit int, category string) []*Entry {
	var out []*Entry
	for _, e := range c.entries {
		if category != "" && !strings.EqualFold(e.Category, category) {
			continue
		}
		out = append(out, e)
	}
	sortByPopularity(out)
	return capLen(out, limit)
}

// Seasonal returns up to limit seasonal entries, back-filled with popular
// entries when there are not enough in season. No entry appears twice.
func (c *Catalog) Seasonal(limit int, category string) []*Entry {
	var out []*Entry
	seen := make(map[string]struct{})
	for _, e := range c.seasonal {
		if category != "" && !strings.EqualFold(e.Category, category) {
			continue
		}
		out = append(out, e)
		seen[e.Key] = struct{}{}
	}
	if len(out) < limit {
		for _, e := range c.Popular(limit, category) {
			if len(out) >= limit {
				break
			}
			if _, dup := seen[e.Key]; dup {
				continue
			}
			out = append(out, e)
			seen[e.Key] = struct{}{}
		}
	}
	return capLen(out, limit)
}

func sortByPopularity(entries []*Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Popularity() > entries[j].Popularity()
	})
}

func capLen(entries []*Entry, limit int) []*Entry {
	if limit > 0 && len(entries) > limit {
		return entries[:limit]
	}
	return entries
}
