package loaders

import (
	"fmt"
	"slices"
	"sync"

	"github.com/custodia-labs/stig-assist/internal/core/domain"
	"github.com/custodia-labs/stig-assist/internal/core/ports/driven"
	"github.com/custodia-labs/stig-assist/internal/loaders/records"
	"github.com/custodia-labs/stig-assist/internal/loaders/xccdf"
)

// Ensure Registry implements the interface.
var _ driven.LoaderRegistry = (*Registry)(nil)

// Registry maps document formats to their loaders.
type Registry struct {
	mu      sync.RWMutex
	loaders map[domain.DocumentFormat]driven.ControlLoader
}

// NewRegistry creates an empty loader registry.
func NewRegistry() *Registry {
	return &Registry{
		loaders: make(map[domain.DocumentFormat]driven.ControlLoader),
	}
}

// NewDefaultRegistry creates a registry with the built-in loaders.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(xccdf.New())
	r.Register(records.New())
	return r
}

// Register adds a loader, replacing any existing loader for the same format.
func (r *Registry) Register(loader driven.ControlLoader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaders[loader.Format()] = loader
}

// Get returns the loader for a format.
func (r *Registry) Get(format domain.DocumentFormat) (driven.ControlLoader, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	loader, ok := r.loaders[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format)
	}
	return loader, nil
}

// Formats returns the registered formats in sorted order.
func (r *Registry) Formats() []domain.DocumentFormat {
	r.mu.RLock()
	defer r.mu.RUnlock()

	formats := make([]domain.DocumentFormat, 0, len(r.loaders))
	for f := range r.loaders {
		formats = append(formats, f)
	}
	slices.Sort(formats)
	return formats
}
