package patterns

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Prefix is carried by every catalog identifier, following the TA-Lib naming.
const Prefix = "CDL"

// Detector scans aligned OHLC arrays and returns a same-length signal array:
// positive is bullish, negative bearish, zero none.
type Detector func(open, high, low, close []float64) ([]float64, error)

// Registry maps pattern identifiers to detectors.
type Registry struct {
	mu        sync.RWMutex
	detectors map[string]Detector
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{detectors: make(map[string]Detector)}
}

// NormalizeName upper-cases a pattern name and adds the CDL prefix when missing.
func NormalizeName(name string) string {
	n := strings.ToUpper(strings.TrimSpace(name))
	if strings.HasPrefix(n, Prefix) {
		return n
	}
	return Prefix + n
}

// DisplayName strips the CDL prefix from an identifier.
func DisplayName(id string) string {
	return strings.TrimPrefix(id, Prefix)
}

// Register adds a detector under a normalised identifier.
func (r *Registry) Register(name string, d Detector) error {
	if d == nil {
		return fmt.Errorf("register %s: nil detector", name)
	}
	id := NormalizeName(name)
	if id == Prefix {
		return fmt.Errorf("register: empty pattern name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.detectors[id]; dup {
		return fmt.Errorf("register %s: already registered", id)
	}
	r.detectors[id] = d
	return nil
}

// Lookup finds a detector by name; the CDL prefix is optional.
func (r *Registry) Lookup(name string) (Detector, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.detectors[NormalizeName(name)]
	return d, ok
}

// Names returns all identifiers in ascending order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.detectors))
	for id := range r.detectors {
		names = append(names, id)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.detectors)
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the built-in catalog. It is populated once on first use.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
		for id, d := range catalog() {
			if err := defaultRegistry.Register(id, d); err != nil {
				panic(err)
			}
		}
	})
	return defaultRegistry
}
