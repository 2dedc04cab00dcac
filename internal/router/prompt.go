package router

import (
	"fmt"
	"strings"
)

// DefaultToolUsage is the reply shape that triggers a file read.
const DefaultToolUsage = `{"tool": "read_file", "path": "<relative file path>"}`

func buildRulesPreamble(toolUsage string) string {
	if strings.TrimSpace(toolUsage) == "" {
		toolUsage = DefaultToolUsage
	}
	var b strings.Builder
	b.WriteString("SYSTEM ROLE\n")
	b.WriteString("You are a coding assistant working in read-only, snippet mode.\n")
	b.WriteString("Do not write files, apply patches, emit unified diffs or rewrite whole files.\n")
	b.WriteString("Reason only over code you have been shown and output minimal, additive snippets.\n\n")
	b.WriteString("FILE CONTEXT\n")
	b.WriteString("If the answer depends on a file you have not seen, do not guess. Request it by replying with exactly:\n")
	fmt.Fprintf(&b, "%s\n", toolUsage)
	b.WriteString("The file content will be sent back to you.\n\n")
	b.WriteString("CHANGE SCOPE\n")
	b.WriteString("Unless asked to refactor, treat existing code as correct and leave its behaviour unchanged.\n")
	b.WriteString("Add new functions, cases or definitions; never remove, rename or reorder existing code.\n\n")
	b.WriteString("OUTPUT\n")
	b.WriteString("Output only the code to add, without explanations or markdown fences unless asked.\n")
	b.WriteString("When placement matters add a single short comment naming where the snippet goes.\n\n")
	return b.String()
}

const groundingPreamble = "You are continuing an ongoing technical discussion.\n" +
	"A change may already have been suggested earlier in this session, possibly by another model; " +
	"questions may refer to it.\n" +
	"Answer strictly from the provided project files and the changes inferred from them.\n" +
	"Do not invent classes, functions, variables or files that are not present in the provided context. " +
	"If an identifier is unknown, describe the change behaviourally. " +
	"If the answer cannot be grounded in the provided files, say so.\n\n"

func (r *Router) buildPrompt(kind TaskKind, prompt string) string {
	var b strings.Builder
	b.WriteString(r.rules)
	if kind == TaskReason {
		b.WriteString(groundingPreamble)
	}
	b.WriteString(prompt)
	return b.String()
}
