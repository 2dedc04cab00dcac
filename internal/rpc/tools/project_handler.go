package tools

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/veeru594/ai-agent/internal/rpc"
	"github.com/veeru594/ai-agent/internal/tools"
)

// ProjectHandler shows (GET) or switches (POST) the read_file project root.
type ProjectHandler struct {
	FS     *tools.Filesystem
	Logger *zap.Logger
}

// ServeHTTP handles /project.
func (h ProjectHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		var req rpc.ProjectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, fmt.Sprintf("invalid request: %v", err), http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Path) == "" {
			http.Error(w, "path is required", http.StatusBadRequest)
			return
		}
		if err := h.FS.SetRoot(req.Path); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if h.Logger != nil {
			h.Logger.Info("project root switched", zap.String("root", h.FS.Root()))
		}
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rpc.ProjectStatus{Root: h.FS.Root()})
}
