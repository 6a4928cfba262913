package journal

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownBackend is returned by Open when no factory is registered
// under the requested name. Use errors.Is to detect it.
var ErrUnknownBackend = errors.New("journal: unknown backend")

// Factory constructs a Journal from a backend-specific DSN. The meaning
// of the DSN is up to the backend: a file path for sqlite, ignored by
// the in-memory backend.
type Factory func(dsn string) (Journal, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register makes a journal backend available under the given name.
// Backends call Register from init(). Registering a nil factory or the
// same name twice panics, mirroring database/sql driver registration:
// both are programmer errors that should fail at process start.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if factory == nil {
		panic("journal: Register factory is nil")
	}
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("journal: Register called twice for backend %q", name))
	}
	registry[name] = factory
}

// Open resolves a backend by name and constructs a Journal from the DSN.
//
// Resolution happens once, at engine startup; there is no reflection and
// no runtime lookup after that. An unregistered name yields an error
// wrapping ErrUnknownBackend that lists the registered backends, so a
// typo in configuration fails fast with something actionable.
func Open(name, dsn string) (Journal, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w %q (registered: %v)", ErrUnknownBackend, name, Backends())
	}

	j, err := factory(dsn)
	if err != nil {
		return nil, fmt.Errorf("open journal backend %q: %w", name, err)
	}
	return j, nil
}

// Backends returns the names of all registered backends, sorted.
func Backends() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
