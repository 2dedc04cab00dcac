package router

import "strings"

// TaskKind selects a fallback chain.
type TaskKind string

const (
	TaskCode   TaskKind = "code"
	TaskReason TaskKind = "reason"
	TaskPlan   TaskKind = "plan"
)

var understandKeywords = []string{
	"understand", "explain", "summarize",
	"overview", "what is in", "how does",
	"walk me through",
}

// ClassifyTask picks reason for questions about existing code and code for
// everything else.
func ClassifyTask(message string) TaskKind {
	text := strings.ToLower(message)
	for _, k := range understandKeywords {
		if strings.Contains(text, k) {
			return TaskReason
		}
	}
	return TaskCode
}

// ParseTaskKind normalises a user-supplied kind. Empty input yields "".
func ParseTaskKind(s string) TaskKind {
	return TaskKind(strings.ToLower(strings.TrimSpace(s)))
}
