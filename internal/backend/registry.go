// ABOUTME: Explicit backend registry constructed once and passed into the pipeline
// ABOUTME: Replaces module-scope backend globals; resolution follows the preference list
package backend

import (
	"fmt"

	"github.com/sagascribe/sagascribe/internal/config"
)

// Registry holds the configured backends by name. It is built once at
// startup and shared read-only across runs.
type Registry struct {
	backends map[string]Backend
	order    []string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{backends: make(map[string]Backend)}
}

// NewRegistryFromConfig builds the standard three-backend registry.
// The remote backend is only registered when an API key is configured.
func NewRegistryFromConfig(cfg *config.Config) *Registry {
	r := NewRegistry()

	if cfg.OpenAIKey != "" {
		r.Register(NewRemote(RemoteConfig{
			APIKey:     cfg.OpenAIKey,
			Model:      cfg.RemoteModel,
			Budget:     cfg.RemoteBudget,
			Timeout:    cfg.RemoteTimeout,
			MaxRetries: cfg.MaxRetries,
			RetryDelay: cfg.RetryDelay,
		}))
	}

	r.Register(NewLocal(LocalConfig{
		BaseURL:    cfg.LocalBaseURL,
		Model:      cfg.LocalModel,
		Budget:     cfg.LocalBudget,
		Timeout:    cfg.LocalTimeout,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
	}))

	r.Register(NewOffline(cfg.OfflineBudget))

	return r
}

// Register adds a backend, keeping registration order for Names
func (r *Registry) Register(b Backend) {
	if _, exists := r.backends[b.Name()]; !exists {
		r.order = append(r.order, b.Name())
	}
	r.backends[b.Name()] = b
}

// Get returns the backend with the given name
func (r *Registry) Get(name string) (Backend, bool) {
	b, ok := r.backends[name]
	return b, ok
}

// Names returns registered backend names in registration order
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Resolve maps an ordered preference list to backends. Preference
// entries naming unregistered backends are skipped; an error is
// returned only when nothing in the list resolves.
func (r *Registry) Resolve(preference []string) ([]Backend, error) {
	if len(preference) == 0 {
		preference = r.Names()
	}

	var resolved []Backend
	for _, name := range preference {
		if b, ok := r.backends[name]; ok {
			resolved = append(resolved, b)
		}
	}

	if len(resolved) == 0 {
		return nil, fmt.Errorf("no usable backends in preference list %v (registered: %v)", preference, r.Names())
	}

	return resolved, nil
}
