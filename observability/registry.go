package observability

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

var (
	mu        sync.RWMutex
	observers = make(map[string]Observer)
)

func init() {
	RegisterObserver("noop", NoOpObserver{})
	RegisterObserver("slog", NewSlogObserver(slog.Default()))
}

// GetObserver resolves a configured observer name. An empty name means
// the caller opted out of observability and resolves to "noop"; an
// unknown name is a configuration mistake and the error lists what is
// actually registered.
func GetObserver(name string) (Observer, error) {
	if name == "" {
		name = "noop"
	}

	mu.RLock()
	defer mu.RUnlock()

	obs, ok := observers[name]
	if !ok {
		return nil, fmt.Errorf("unknown observer %q (registered: %s)", name, registeredNames())
	}
	return obs, nil
}

// RegisterObserver adds or replaces a named observer. Registering over
// "slog" is how a command installs its configured logger.
func RegisterObserver(name string, observer Observer) {
	mu.Lock()
	defer mu.Unlock()

	observers[name] = observer
}

// registeredNames is called with mu held.
func registeredNames() string {
	names := make([]string, 0, len(observers))
	for name := range observers {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
