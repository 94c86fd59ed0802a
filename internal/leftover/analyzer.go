// Package leftover finds resources that are defined somewhere in a bundle but
// referenced by no process graph of any plugin in that bundle.
package leftover

import (
	"sort"
	"sync"

	"github.com/plugdev/pluglint/pkg/model"
)

// Report lists leftover identifiers per scope, process graphs and structured
// documents kept separate. Slices are sorted for deterministic output.
type Report struct {
	Processes []string
	Resources map[model.ResourceKind][]string
}

// Analyzer accumulates defined and referenced identifier sets across all
// plugins of a bundle. Leftovers may only be computed after every plugin has
// been accumulated: a resource defined under one plugin may legitimately be
// referenced by another.
type Analyzer struct {
	mu sync.Mutex

	definedProcesses    map[string]bool
	referencedProcesses map[string]bool

	definedResources    map[model.ResourceKind]map[string]bool
	referencedResources map[model.ResourceKind]map[string]bool
}

// NewAnalyzer creates an empty Analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		definedProcesses:    make(map[string]bool),
		referencedProcesses: make(map[string]bool),
		definedResources:    make(map[model.ResourceKind]map[string]bool),
		referencedResources: make(map[model.ResourceKind]map[string]bool),
	}
}

// Accumulate records the plugin's definitions and its declared references.
// Definitions come from the plugin's graphs and documents; references from
// the process-to-resource mapping (canonical stems).
func (a *Analyzer) Accumulate(p *model.Plugin) {
	for _, pf := range p.Processes {
		if pf.Graph != nil && pf.Graph.Id != "" {
			a.DefineProcess(pf.Graph.Id)
		}
	}
	for kind, files := range p.Resources {
		for _, rf := range files {
			if rf.Document != nil && rf.Document.URL != "" {
				a.DefineResource(kind, rf.Document.URL)
			}
		}
	}
	for processId, refs := range p.ProcessResources {
		a.ReferenceProcess(processId)
		for _, ref := range refs {
			stem, _ := model.CanonicalStem(ref)
			a.ReferenceAny(stem)
		}
	}
}

// DefineProcess records a defined process graph id.
func (a *Analyzer) DefineProcess(id string) {
	a.mu.Lock()
	a.definedProcesses[id] = true
	a.mu.Unlock()
}

// ReferenceProcess records a referenced process graph id.
func (a *Analyzer) ReferenceProcess(id string) {
	a.mu.Lock()
	a.referencedProcesses[id] = true
	a.mu.Unlock()
}

// DefineResource records a defined document identifier under its kind.
func (a *Analyzer) DefineResource(kind model.ResourceKind, id string) {
	a.mu.Lock()
	set := a.definedResources[kind]
	if set == nil {
		set = make(map[string]bool)
		a.definedResources[kind] = set
	}
	set[id] = true
	a.mu.Unlock()
}

// ReferenceResource records a referenced document identifier under its kind.
func (a *Analyzer) ReferenceResource(kind model.ResourceKind, id string) {
	a.mu.Lock()
	set := a.referencedResources[kind]
	if set == nil {
		set = make(map[string]bool)
		a.referencedResources[kind] = set
	}
	set[id] = true
	a.mu.Unlock()
}

// ReferenceAny records a referenced identifier whose kind is not declared at
// the reference site. It matches against every kind during the set
// difference.
func (a *Analyzer) ReferenceAny(id string) {
	for _, kind := range model.ResourceKinds {
		a.ReferenceResource(kind, id)
	}
}

// Leftovers computes defined − referenced per scope. Call only after every
// plugin of the bundle has been accumulated.
func (a *Analyzer) Leftovers() Report {
	a.mu.Lock()
	defer a.mu.Unlock()

	report := Report{Resources: make(map[model.ResourceKind][]string)}

	for id := range a.definedProcesses {
		if !a.referencedProcesses[id] {
			report.Processes = append(report.Processes, id)
		}
	}
	sort.Strings(report.Processes)

	for kind, defined := range a.definedResources {
		referenced := a.referencedResources[kind]
		var left []string
		for id := range defined {
			if !referenced[id] {
				left = append(left, id)
			}
		}
		if len(left) > 0 {
			sort.Strings(left)
			report.Resources[kind] = left
		}
	}
	return report
}
