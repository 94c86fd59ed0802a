package capability

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// classDirs and jarGlobs describe where compiled artifacts live relative to
// a project root (maven-style layout plus a flat lib directory).
var (
	classDirs = []string{
		filepath.Join("target", "classes"),
		filepath.Join("build", "classes"),
		"classes",
	}
	jarGlobs = []string{
		filepath.Join("target", "*.jar"),
		filepath.Join("target", "dependency", "*.jar"),
		filepath.Join("lib", "*.jar"),
	}
)

// classpath is the resolved artifact layout of one project root: class
// directories that exist plus the dependency archives found under it.
// Construction is cached per root by the verifier.
type classpath struct {
	dirs []string
	jars []string
}

// buildClasspath scans the project root once. A missing root yields an empty
// classpath, which gracefully disables artifact lookups.
func buildClasspath(projectRoot string) *classpath {
	cp := &classpath{}
	if projectRoot == "" {
		return cp
	}
	if _, err := os.Stat(projectRoot); err != nil {
		return cp
	}
	for _, d := range classDirs {
		dir := filepath.Join(projectRoot, d)
		if st, err := os.Stat(dir); err == nil && st.IsDir() {
			cp.dirs = append(cp.dirs, dir)
		}
	}
	for _, g := range jarGlobs {
		matches, err := filepath.Glob(filepath.Join(projectRoot, g))
		if err != nil {
			continue
		}
		cp.jars = append(cp.jars, matches...)
	}
	return cp
}

// classFilePath converts a fully-qualified type name to its class-file path.
func classFilePath(typeName string) string {
	return strings.ReplaceAll(typeName, ".", "/") + ".class"
}

// lookup finds and parses the class metadata for typeName, searching class
// directories before dependency archives. Returns nil when absent.
func (cp *classpath) lookup(typeName string) *TypeInfo {
	rel := classFilePath(typeName)

	for _, dir := range cp.dirs {
		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
		if err != nil {
			continue
		}
		if info, err := ParseClassFile(data); err == nil {
			return info
		}
	}

	for _, jar := range cp.jars {
		if info := lookupInJar(jar, rel); info != nil {
			return info
		}
	}
	return nil
}

func lookupInJar(jarPath, classEntry string) *TypeInfo {
	zr, err := zip.OpenReader(jarPath)
	if err != nil {
		return nil
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != classEntry {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil
		}
		info, err := ParseClassFile(data)
		if err != nil {
			return nil
		}
		return info
	}
	return nil
}

// classpathCache memoizes classpath construction per project root with a
// compute-once-per-key discipline.
type classpathCache struct {
	mu      sync.Mutex
	entries map[string]*classpathEntry
}

type classpathEntry struct {
	once sync.Once
	cp   *classpath
}

func newClasspathCache() *classpathCache {
	return &classpathCache{entries: make(map[string]*classpathEntry)}
}

func (c *classpathCache) get(projectRoot string) *classpath {
	c.mu.Lock()
	e, ok := c.entries[projectRoot]
	if !ok {
		e = &classpathEntry{}
		c.entries[projectRoot] = e
	}
	c.mu.Unlock()

	e.once.Do(func() {
		e.cp = buildClasspath(projectRoot)
	})
	return e.cp
}
