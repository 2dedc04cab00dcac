package tools

// Registry exposes shared tool instances.
type Registry struct {
	FS *Filesystem
}

// NewRegistry builds a registry from instantiated tools.
func NewRegistry(fs *Filesystem) *Registry {
	return &Registry{FS: fs}
}

// Schema returns schema for a given tool name if present.
func (r *Registry) Schema(name string) (Schema, bool) {
	for _, s := range r.Schemas() {
		if s.Name == name {
			return s, true
		}
	}
	return Schema{}, false
}
