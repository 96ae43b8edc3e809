package backend

import (
	"fmt"
	"sort"
	"sync"

	"github.com/weebcore/atlas"
)

// registry holds registered backends.
var (
	registryMu sync.RWMutex
	backends   = make(map[string]Factory)
	// Priority order for backend selection (first available wins).
	backendPriority = []string{NameWGPU, NameSoftware}
)

// Register registers a backend factory with the given name.
// If a backend with the same name is already registered, it is replaced.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = factory
}

// Unregister removes a backend from the registry.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// Available returns the registered backend names in sorted order.
func Available() []string {
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

// Get creates an uploader from the backend registered under name.
func Get(name string) (atlas.TextureUploader, error) {
	registryMu.RLock()
	factory, ok := backends[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBackendNotAvailable, name)
	}
	return factory()
}

// Default creates an uploader from the best available backend.
// Priority order: wgpu > software, then any other registered backend.
func Default() (atlas.TextureUploader, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	for _, name := range backendPriority {
		factory, ok := backends[name]
		if !ok {
			continue
		}
		u, err := factory()
		if err != nil {
			atlas.Logger().Warn("backend: factory failed", "backend", name, "error", err)
			continue
		}
		return u, nil
	}

	for name, factory := range backends {
		u, err := factory()
		if err != nil {
			atlas.Logger().Warn("backend: factory failed", "backend", name, "error", err)
			continue
		}
		return u, nil
	}

	return nil, ErrBackendNotAvailable
}
