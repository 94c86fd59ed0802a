// Package profile loads slice cardinality constraints from StructureDefinition
// profiles and memoizes them for the duration of one analysis run.
package profile

import (
	"sync"

	"github.com/plugdev/pluglint/pkg/lint"
	"github.com/plugdev/pluglint/pkg/model"
)

// BaseKey is the synthetic slice code for the unsliced base element.
const BaseKey = "__BASE__"

// Cardinality is a min/max pair; Max is "0", "1", ... or "*".
type Cardinality struct {
	Min int
	Max string
}

// Unbounded reports whether Max is "*".
func (c Cardinality) Unbounded() bool {
	return c.Max == "*"
}

// SliceCardinalities maps slice codes to their cardinalities, plus the
// BaseKey entry for the unsliced element.
type SliceCardinalities map[string]Cardinality

// Base returns the base element cardinality and whether it was present.
func (s SliceCardinalities) Base() (Cardinality, bool) {
	c, ok := s[BaseKey]
	return c, ok
}

// Cache memoizes slice cardinalities per profile URL. Entries are computed
// once per key, first access wins under concurrency, and are never
// invalidated within one run.
type Cache struct {
	locator model.ResourceLocator

	mu      sync.Mutex
	entries map[cacheKey]*entry
}

// cacheKey spans profile and element path: the same profile may be consulted
// for several element paths.
type cacheKey struct {
	profileURL string
	basePath   string
}

type entry struct {
	once  sync.Once
	cards SliceCardinalities
	err   error
}

// NewCache creates a cache resolving profile URLs through the given locator.
func NewCache(locator model.ResourceLocator) *Cache {
	return &Cache{
		locator: locator,
		entries: make(map[cacheKey]*entry),
	}
}

// Cardinalities loads the cardinalities of basePath (and its named slices)
// from the profile with the given canonical URL. Returns a
// PROFILE_UNRESOLVED error when the profile cannot be located; callers
// degrade their cardinality checks to a skipped WARN in that case.
func (c *Cache) Cardinalities(profileURL, basePath string) (SliceCardinalities, error) {
	key := cacheKey{profileURL: profileURL, basePath: basePath}

	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	c.mu.Unlock()

	e.once.Do(func() {
		e.cards, e.err = c.load(profileURL, basePath)
	})
	return e.cards, e.err
}

func (c *Cache) load(profileURL, basePath string) (SliceCardinalities, error) {
	if c.locator == nil {
		return nil, lint.NewErrorf(lint.ErrCodeProfileUnresolved,
			"no resource locator; cannot resolve profile %s", profileURL)
	}
	doc := c.locator.ResourceByURL(model.KindStructureDefinition, profileURL)
	if doc == nil || doc.StructureDefinition == nil {
		return nil, lint.NewErrorf(lint.ErrCodeProfileUnresolved,
			"profile %s not found in resource set", profileURL)
	}

	cards := make(SliceCardinalities)
	for _, el := range doc.StructureDefinition.Differential {
		if el.Path != basePath {
			continue
		}
		if el.SliceName == "" {
			cards[BaseKey] = Cardinality{Min: el.Min, Max: el.Max}
		} else {
			cards[el.SliceName] = Cardinality{Min: el.Min, Max: el.Max}
		}
	}
	if len(cards) == 0 {
		return nil, lint.NewErrorf(lint.ErrCodeProfileUnresolved,
			"profile %s defines no element at %s", profileURL, basePath)
	}
	return cards, nil
}
