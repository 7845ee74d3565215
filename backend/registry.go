package backend

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/gogpu/dm"
)

// Standard backend names.
const (
	// NameRaster is the software rasterizer in backend/raster.
	NameRaster = "raster"
	// NameRecord is the call-recording backend in backend/record.
	NameRecord = "record"
)

// ErrNoBackend is returned by Default when no backend is registered.
var ErrNoBackend = errors.New("backend: no backend registered")

// Factory is a function that creates a new backend instance.
// Factories are registered via Register() and called by New().
type Factory func() dm.Backend

// Registry state - protected by mutex for thread-safe access.
var (
	registryMu sync.RWMutex
	backends   = make(map[string]Factory)
	// Priority order for Default (first registered wins).
	priority = []string{NameRaster, NameRecord}
)

// Register registers a backend factory with the given name.
// This function is typically called from init() in backend packages,
// following the database/sql driver pattern:
//
//	func init() {
//	    backend.Register("gl", func() dm.Backend {
//	        return NewGLBackend()
//	    })
//	}
//
// Register panics if factory is nil or a backend with the same name is
// already registered.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if factory == nil {
		panic("backend: Register factory is nil")
	}
	if _, dup := backends[name]; dup {
		panic("backend: Register called twice for " + name)
	}
	backends[name] = factory
}

// Unregister removes a backend from the registry.
// This is primarily useful for testing to clean up between tests.
// If the backend is not registered, this is a no-op.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// New creates a new backend instance by name.
//
// Example:
//
//	import _ "github.com/gogpu/dm/backend/raster"
//
//	b, err := backend.New("raster")
//
// The error message includes a hint about forgotten imports.
func New(name string) (dm.Backend, error) {
	registryMu.RLock()
	factory, ok := backends[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("backend: unknown backend %q (forgotten import?)", name)
	}
	return factory(), nil
}

// MustNew creates a new backend instance by name, panicking on error.
func MustNew(name string) dm.Backend {
	b, err := New(name)
	if err != nil {
		panic(err)
	}
	return b
}

// Default returns a new instance of the best registered backend.
// Priority order: raster > record > others in name order.
func Default() (dm.Backend, error) {
	for _, name := range priority {
		if IsRegistered(name) {
			return New(name)
		}
	}
	if names := Names(); len(names) > 0 {
		return New(names[0])
	}
	return nil, ErrNoBackend
}

// Names returns a sorted list of registered backend names.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := backends[name]
	return ok
}

// Count returns the number of registered backends.
func Count() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(backends)
}
