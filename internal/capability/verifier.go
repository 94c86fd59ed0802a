// Package capability determines, without executing any plugin code, whether a
// named implementation type exists in a project's compiled artifacts and
// whether it satisfies a required supertype/interface contract.
package capability

import (
	"io"
	"log/slog"
	"sync"
)

// Query is the result of one capability verification. Exists and
// ImplementsRequired are kept distinct: "not found" and "found but
// non-conforming" are different findings.
type Query struct {
	Exists             bool
	ImplementsRequired bool
	// Resolved is the ancestor on the supertype/interface chain that matched
	// the required contract, "" when no match.
	Resolved string
}

// chainWalkLimit bounds supertype chain traversal against cyclic metadata.
const chainWalkLimit = 256

// Verifier resolves type names through, in order: an in-memory type registry,
// compiled classes under a project root, and dependency archives bundled with
// the project. Results are cached per (typeName, projectRoot) for the
// duration of one analysis run, computed once per key.
type Verifier struct {
	logger *slog.Logger

	regMu    sync.RWMutex
	registry map[string]TypeInfo

	classpaths *classpathCache

	mu    sync.Mutex
	cache map[cacheKey]*queryEntry
}

type cacheKey struct {
	typeName    string
	projectRoot string
}

type queryEntry struct {
	once      sync.Once
	info      *TypeInfo
	ancestors map[string]bool
}

// NewVerifier creates a Verifier. logger may be nil.
func NewVerifier(logger *slog.Logger) *Verifier {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Verifier{
		logger:     logger,
		registry:   make(map[string]TypeInfo),
		classpaths: newClasspathCache(),
		cache:      make(map[cacheKey]*queryEntry),
	}
}

// Register adds type metadata to the in-memory registry. Registry entries win
// over compiled artifacts during resolution.
func (v *Verifier) Register(info TypeInfo) {
	v.regMu.Lock()
	v.registry[info.Name] = info
	v.regMu.Unlock()
}

// Verify reports whether typeName exists in the project's artifacts and
// whether its declared supertype/interface chain includes required.
// An empty projectRoot limits resolution to the registry.
func (v *Verifier) Verify(typeName, required, projectRoot string) Query {
	if typeName == "" {
		return Query{}
	}

	e := v.entry(typeName, projectRoot)
	if e.info == nil {
		return Query{}
	}

	q := Query{Exists: true}
	if required != "" && e.ancestors[required] {
		q.ImplementsRequired = true
		q.Resolved = required
	}
	return q
}

// entry returns the compute-once cache entry for (typeName, projectRoot).
func (v *Verifier) entry(typeName, projectRoot string) *queryEntry {
	key := cacheKey{typeName: typeName, projectRoot: projectRoot}

	v.mu.Lock()
	e, ok := v.cache[key]
	if !ok {
		e = &queryEntry{}
		v.cache[key] = e
	}
	v.mu.Unlock()

	e.once.Do(func() {
		e.info = v.resolve(typeName, projectRoot)
		if e.info != nil {
			e.ancestors = v.collectAncestors(e.info, projectRoot)
		}
	})
	return e
}

// resolve finds type metadata by registry, then compiled classes, then
// dependency archives. Returns nil when the type cannot be found anywhere.
func (v *Verifier) resolve(typeName, projectRoot string) *TypeInfo {
	v.regMu.RLock()
	info, ok := v.registry[typeName]
	v.regMu.RUnlock()
	if ok {
		return &info
	}

	if projectRoot == "" {
		return nil
	}
	return v.classpaths.get(projectRoot).lookup(typeName)
}

// collectAncestors walks the declared supertype/interface chain, resolving
// each ancestor through the same sources. An unresolvable ancestor ends its
// branch of the chain; the type itself still exists.
func (v *Verifier) collectAncestors(info *TypeInfo, projectRoot string) map[string]bool {
	ancestors := make(map[string]bool)
	queue := make([]string, 0, len(info.Interfaces)+1)
	if info.Super != "" {
		queue = append(queue, info.Super)
	}
	queue = append(queue, info.Interfaces...)

	steps := 0
	for len(queue) > 0 && steps < chainWalkLimit {
		steps++
		name := queue[0]
		queue = queue[1:]
		if name == "" || ancestors[name] {
			continue
		}
		ancestors[name] = true

		next := v.resolve(name, projectRoot)
		if next == nil {
			continue
		}
		if next.Super != "" {
			queue = append(queue, next.Super)
		}
		queue = append(queue, next.Interfaces...)
	}
	return ancestors
}
