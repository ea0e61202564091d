package gateway

import (
	"fmt"
	"sort"
	"sync"
)

// Info describes a registered gateway's name and kind.
type Info struct {
	Name string
	Kind string
}

// Registry manages named gateway configurations with lazy instantiation.
// Configs are stored at registration time; gateways are created on first Get
// call. Thread-safe for concurrent access.
type Registry struct {
	mu       sync.RWMutex
	configs  map[string]Config
	gateways map[string]Gateway
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		configs:  make(map[string]Config),
		gateways: make(map[string]Gateway),
	}
}

// Register adds a named gateway configuration to the registry.
// The gateway is not instantiated until Get is called.
func (r *Registry) Register(name string, cfg Config) error {
	if name == "" {
		return ErrEmptyGatewayName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.configs[name]; exists {
		return fmt.Errorf("%w: %s", ErrGatewayExists, name)
	}

	r.configs[name] = cfg
	return nil
}

// Replace updates the configuration for an existing named gateway. Any cached
// instance is invalidated; the next Get re-instantiates.
func (r *Registry) Replace(name string, cfg Config) error {
	if name == "" {
		return ErrEmptyGatewayName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.configs[name]; !exists {
		return fmt.Errorf("%w: %s", ErrGatewayNotFound, name)
	}

	r.configs[name] = cfg
	delete(r.gateways, name)
	return nil
}

// Get retrieves a named gateway, instantiating it lazily on first access.
func (r *Registry) Get(name string) (Gateway, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cfg, registered := r.configs[name]
	if !registered {
		return nil, fmt.Errorf("%w: %s", ErrGatewayNotFound, name)
	}

	if g, exists := r.gateways[name]; exists {
		return g, nil
	}

	g, err := New(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway %q: %w", name, err)
	}

	r.gateways[name] = g
	return g, nil
}

// List returns information about all registered gateways, sorted by name.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.configs))
	for name, cfg := range r.configs {
		infos = append(infos, Info{Name: name, Kind: cfg.Kind})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})

	return infos
}

// Unregister removes a named gateway from the registry.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.configs[name]; !exists {
		return fmt.Errorf("%w: %s", ErrGatewayNotFound, name)
	}

	delete(r.configs, name)
	delete(r.gateways, name)
	return nil
}
