package analysis

import (
	"sync"

	"github.com/plugdev/pluglint/pkg/model"
)

// Index aggregates the resource documents of every plugin added to a bundle.
// Canonical resolution and message-name lookups go through it, so a resource
// defined under one plugin is resolvable from another.
type Index struct {
	mu        sync.RWMutex
	docs      map[model.ResourceKind]map[string]*model.ResourceDocument
	byMessage map[string]*model.ResourceDocument
}

// NewIndex creates an empty Index.
func NewIndex() *Index {
	return &Index{
		docs:      make(map[model.ResourceKind]map[string]*model.ResourceDocument),
		byMessage: make(map[string]*model.ResourceDocument),
	}
}

// AddPlugin registers every document of the plugin. First registration of a
// canonical URL wins; duplicate definitions surface through the rule sets,
// not here.
func (ix *Index) AddPlugin(p *model.Plugin) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	for kind, files := range p.Resources {
		byURL := ix.docs[kind]
		if byURL == nil {
			byURL = make(map[string]*model.ResourceDocument)
			ix.docs[kind] = byURL
		}
		for _, rf := range files {
			doc := rf.Document
			if doc == nil || doc.URL == "" {
				continue
			}
			if _, exists := byURL[doc.URL]; !exists {
				byURL[doc.URL] = doc
			}
			if kind == model.KindActivityDefinition && doc.ActivityDefinition != nil {
				for _, name := range doc.ActivityDefinition.MessageNames {
					if _, exists := ix.byMessage[name]; !exists {
						ix.byMessage[name] = doc
					}
				}
			}
		}
	}
}

// ResourceByURL resolves the stem of a canonical reference to a document of
// the given kind, or nil.
func (ix *Index) ResourceByURL(kind model.ResourceKind, canonical string) *model.ResourceDocument {
	stem, _ := model.CanonicalStem(canonical)
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.docs[kind][stem]
}

// ActivityByMessageName returns the ActivityDefinition declaring the given
// message name, or nil.
func (ix *Index) ActivityByMessageName(name string) *model.ResourceDocument {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.byMessage[name]
}
