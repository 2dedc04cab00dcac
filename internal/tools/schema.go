package tools

import (
	"fmt"
	"strings"

	"github.com/veeru594/ai-agent/internal/toolcall"
)

// Schema describes a tool a model may request in its reply.
type Schema struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Parameters  []SchemaField `json:"parameters"`
}

// SchemaField describes a single parameter.
type SchemaField struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// Schemas lists the tools the router intercepts.
func (r *Registry) Schemas() []Schema {
	return []Schema{
		{
			Name:        toolcall.ToolReadFile,
			Description: "Read a file relative to the project root",
			Parameters: []SchemaField{
				{Name: "path", Type: "string", Description: "Relative file path", Required: true},
			},
		},
	}
}

// Usage renders the JSON shape a model must emit to invoke the tool.
func (s Schema) Usage() string {
	parts := []string{fmt.Sprintf(`"tool": %q`, s.Name)}
	for _, p := range s.Parameters {
		parts = append(parts, fmt.Sprintf(`"%s": "<%s>"`, p.Name, strings.ToLower(p.Description)))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
