package credentials

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// KeyPrefix returns the environment variable prefix for a provider, e.g.
// "groq" -> "GROQ_KEY_".
func KeyPrefix(providerPrefix string) string {
	return strings.ToUpper(strings.TrimSpace(providerPrefix)) + "_KEY_"
}

// KeysFromEnviron collects the values of every non-empty <PREFIX>_KEY_*
// variable in environ (os.Environ format), ordered by variable name.
func KeysFromEnviron(providerPrefix string, environ []string) []string {
	prefix := KeyPrefix(providerPrefix)

	type entry struct{ name, value string }
	var found []entry
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, prefix) {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		found = append(found, entry{name: name, value: value})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].name < found[j].name })

	keys := make([]string, 0, len(found))
	for _, e := range found {
		keys = append(keys, e.value)
	}
	return keys
}

// LoadFromEnv builds a pool from the process environment.
func LoadFromEnv(provider, providerPrefix string, opts ...Option) (*Pool, error) {
	pool, err := NewPool(provider, KeysFromEnviron(providerPrefix, os.Environ()), opts...)
	if err != nil {
		return nil, fmt.Errorf("load %s*: %w", KeyPrefix(providerPrefix), err)
	}
	return pool, nil
}
