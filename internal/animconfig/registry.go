package animconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-anim/internal/logger"
)

// Registry holds loaded animation definitions keyed by name. Safe for
// concurrent lookups.
type Registry struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		docs: make(map[string]*Document),
	}
}

// Load parses one definition file and registers it. A definition with
// no name takes the file stem. An existing entry with the same name is
// replaced.
func (r *Registry) Load(path string) (*Document, error) {
	doc, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	if doc.Name == "" {
		doc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	r.mu.Lock()
	r.docs[doc.Name] = doc
	r.mu.Unlock()

	logger.Log.Debug("loaded animation config",
		zap.String("name", doc.Name),
		zap.Int("states", len(doc.States)))
	return doc, nil
}

// LoadDirectory loads every *.yaml and *.yml file in a directory and
// returns how many definitions were registered. A file that fails to
// parse is logged and skipped.
func (r *Registry) LoadDirectory(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("reading animation config dir %s: %w", dir, err)
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		if _, err := r.Load(filepath.Join(dir, entry.Name())); err != nil {
			logger.Log.Warn("skipping animation config",
				zap.String("file", entry.Name()),
				zap.Error(err))
			continue
		}
		loaded++
	}
	return loaded, nil
}

// Get returns the definition registered under a name.
func (r *Registry) Get(name string) (*Document, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[name]
	return doc, ok
}

// Has reports whether a definition is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.docs[name]
	return ok
}

// Names returns the registered definition names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.docs))
	for name := range r.docs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clear removes all registered definitions.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.docs = make(map[string]*Document)
	r.mu.Unlock()
}
