package route

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/veeru594/ai-agent/internal/observability"
	"github.com/veeru594/ai-agent/internal/rpc"
)

// Handler processes Route requests and streams NDJSON events.
type Handler struct {
	runner  Runner
	metrics *observability.Metrics
}

// NewHandler constructs a handler instance.
func NewHandler(runner Runner, metrics *observability.Metrics) *Handler {
	return &Handler{runner: runner, metrics: metrics}
}

// ServeHTTP handles POST /route with an NDJSON stream of RouteEvent.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.metrics.RecordTransportError("ndjson", "method_not_allowed")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.metrics.IncActiveSessions("ndjson")
	defer h.metrics.DecActiveSessions("ndjson")

	var req rpc.RouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.metrics.RecordTransportError("ndjson", "decode")
		http.Error(w, fmt.Sprintf("invalid request: %v", err), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		h.metrics.RecordTransportError("ndjson", "empty_prompt")
		http.Error(w, "prompt is required", http.StatusBadRequest)
		return
	}
	if h.runner == nil {
		http.Error(w, "router unavailable", http.StatusServiceUnavailable)
		return
	}
	req.RequestID = EnsureRequestID(req.RequestID)

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	events, err := h.runner.Run(r.Context(), req)
	if err != nil {
		h.metrics.RecordTransportError("ndjson", "runner_error")
		http.Error(w, fmt.Sprintf("runner error: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("X-Request-ID", req.RequestID)
	w.WriteHeader(http.StatusOK)

	writer := bufio.NewWriter(w)
	enc := json.NewEncoder(writer)
	for ev := range events {
		if err := enc.Encode(ev); err != nil {
			h.metrics.RecordTransportError("ndjson", "write")
			break
		}
		writer.Flush()
		flusher.Flush()
	}
}
