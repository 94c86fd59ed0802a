package model

// Generation is the declared plugin API generation. The required base
// contracts for definition types and listeners differ between generations.
type Generation string

const (
	GenerationV1 Generation = "v1"
	GenerationV2 Generation = "v2"
)

// FileRef identifies the file a finding refers to, plus an optional element
// or resource reference within it.
type FileRef struct {
	File    string
	Element string
}

// WithElement returns a copy of the ref pointing at the given element.
func (f FileRef) WithElement(element string) FileRef {
	return FileRef{File: f.File, Element: element}
}

func (f FileRef) String() string {
	if f.Element == "" {
		return f.File
	}
	return f.File + "#" + f.Element
}

// ResourceFile pairs a parsed document with its originating file.
type ResourceFile struct {
	Document *ResourceDocument
	File     string
}

// ProcessFile pairs a parsed process graph with its originating file.
type ProcessFile struct {
	Graph *ProcessGraph
	File  string
}

// Plugin is one packaged process-automation plugin: its process graphs, its
// resource documents partitioned by kind, and the declarations needed for
// capability lookups.
type Plugin struct {
	Name       string
	Generation Generation

	// DefinitionType is the fully-qualified type name declared in the plugin
	// registration manifest. Empty means the plugin is not registered.
	DefinitionType string

	// ProjectRoot locates compiled artifacts and dependency archives for
	// capability resolution. Empty disables artifact lookups.
	ProjectRoot string

	Processes []ProcessFile
	Resources map[ResourceKind][]ResourceFile

	// ProcessResources maps a process id to the canonical identifiers of the
	// resources it declares a dependency on.
	ProcessResources map[string][]string
}

// ResourceByURL finds a document of the given kind whose canonical URL equals
// the stem of the given canonical reference. Returns nil if absent.
func (p *Plugin) ResourceByURL(kind ResourceKind, canonical string) *ResourceDocument {
	stem, _ := CanonicalStem(canonical)
	for _, rf := range p.Resources[kind] {
		if rf.Document != nil && rf.Document.URL == stem {
			return rf.Document
		}
	}
	return nil
}

// ResourceLocator resolves canonical references against a set of documents,
// typically the union of one plugin's resources. Implemented by Plugin and by
// bundle-wide aggregates.
type ResourceLocator interface {
	ResourceByURL(kind ResourceKind, canonical string) *ResourceDocument
}
