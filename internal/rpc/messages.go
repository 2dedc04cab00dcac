package rpc

import (
	"github.com/veeru594/ai-agent/internal/llm"
	"github.com/veeru594/ai-agent/internal/router"
)

// Event types emitted while serving a RouteRequest.
const (
	EventAttempt = "attempt"
	EventTool    = "tool"
	EventResult  = "result"
	EventError   = "error"
	EventDone    = "done"
)

// RouteRequest is the top-level request for routing one prompt.
type RouteRequest struct {
	RequestID string `json:"request_id,omitempty"`
	// Kind is code, reason or plan; empty means classify from the prompt.
	Kind   string `json:"kind,omitempty"`
	Prompt string `json:"prompt"`
}

// RouteEvent streams back progress from the daemon.
type RouteEvent struct {
	Type      string        `json:"type"` // attempt|tool|result|error|done
	RequestID string        `json:"request_id,omitempty"`
	Kind      string        `json:"kind,omitempty"`
	Chain     string        `json:"chain,omitempty"`
	Identity  *llm.Identity `json:"identity,omitempty"`
	Status    int           `json:"status,omitempty"`
	Text      string        `json:"text,omitempty"`
	Path      string        `json:"path,omitempty"`
	Depth     int           `json:"depth,omitempty"`
	State     string        `json:"state,omitempty"`
	Error     string        `json:"error,omitempty"`
	Done      bool          `json:"done,omitempty"`
}

// AttemptEvent renders a failed provider attempt.
func AttemptEvent(requestID string, a router.Attempt) RouteEvent {
	id := a.Identity
	return RouteEvent{
		Type:      EventAttempt,
		RequestID: requestID,
		Chain:     a.Chain,
		Identity:  &id,
		Status:    a.Status,
		Error:     a.Error,
	}
}

// ToolEvent renders an intercepted read_file request.
func ToolEvent(requestID string, r router.ToolRead) RouteEvent {
	return RouteEvent{
		Type:      EventTool,
		RequestID: requestID,
		Path:      r.Path,
		Depth:     r.Depth,
		Error:     r.Error,
	}
}

// RouteStreamRequest is the bidirectional stream payload for Connect RPC.
// The first message must contain the Route request; later messages may only
// cancel.
type RouteStreamRequest struct {
	Route     *RouteRequest `json:"route,omitempty"`
	Cancel    bool          `json:"cancel,omitempty"`
	RequestID string        `json:"request_id,omitempty"`
}

// ProjectRequest switches the directory read_file is rooted at.
type ProjectRequest struct {
	Path string `json:"path"`
}

// ProjectStatus reports the current project root ("" when unset).
type ProjectStatus struct {
	Root string `json:"root"`
}
