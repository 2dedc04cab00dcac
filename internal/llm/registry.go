package llm

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/veeru594/ai-agent/internal/credentials"
)

// ModelRoute binds a logical model id to a provider and physical model name.
type ModelRoute struct {
	Name        string
	Provider    string
	Model       string
	Temperature float64
}

// Registry resolves model ids to callers. Providers and pools are registered
// once at startup and shared by every caller built from them.
type Registry struct {
	providers map[string]Provider
	pools     map[string]*credentials.Pool
	models    map[string]ModelRoute
	logger    *zap.Logger
	recorder  Recorder
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *zap.Logger, recorder Recorder) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		providers: make(map[string]Provider),
		pools:     make(map[string]*credentials.Pool),
		models:    make(map[string]ModelRoute),
		logger:    logger,
		recorder:  recorder,
	}
}

// RegisterProvider adds a provider implementation and its credential pool.
func (r *Registry) RegisterProvider(name string, p Provider, pool *credentials.Pool) {
	r.providers[name] = p
	r.pools[name] = pool
}

// RegisterModel adds a model route.
func (r *Registry) RegisterModel(name string, route ModelRoute) {
	route.Name = name
	r.models[name] = route
}

// HasModel reports whether a model id resolves to a registered provider.
func (r *Registry) HasModel(name string) bool {
	route, ok := r.models[name]
	if !ok {
		return false
	}
	_, ok = r.providers[route.Provider]
	return ok
}

// Caller returns a caller for the given model id.
func (r *Registry) Caller(modelName string) (*Caller, error) {
	route, ok := r.models[modelName]
	if !ok {
		return nil, fmt.Errorf("model %q not registered", modelName)
	}

	p, ok := r.providers[route.Provider]
	if !ok {
		return nil, fmt.Errorf("provider %q not registered for model %q", route.Provider, modelName)
	}
	pool := r.pools[route.Provider]
	if pool == nil {
		return nil, fmt.Errorf("provider %q has no credential pool", route.Provider)
	}

	return NewCaller(p, pool, route, r.logger.With(zap.String("model_id", modelName)), r.recorder), nil
}

// Pools returns the registered pools ordered by provider name.
func (r *Registry) Pools() []*credentials.Pool {
	names := make([]string, 0, len(r.pools))
	for name := range r.pools {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]*credentials.Pool, 0, len(names))
	for _, name := range names {
		out = append(out, r.pools[name])
	}
	return out
}
