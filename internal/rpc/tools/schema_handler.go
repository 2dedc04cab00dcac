package tools

import (
	"encoding/json"
	"net/http"

	"github.com/veeru594/ai-agent/internal/tools"
)

// SchemaHandler serves the schemas of the tools a model may request.
type SchemaHandler struct {
	Registry *tools.Registry
}

// ServeHTTP renders schemas together with the JSON shape that invokes each.
func (h SchemaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	type entry struct {
		tools.Schema
		Usage string `json:"usage"`
	}
	schemas := h.Registry.Schemas()
	out := make([]entry, 0, len(schemas))
	for _, s := range schemas {
		out = append(out, entry{Schema: s, Usage: s.Usage()})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}
