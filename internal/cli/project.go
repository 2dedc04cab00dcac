package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/veeru594/ai-agent/internal/rpc"
)

// NewProjectCmd shows or switches the project root the daemon reads files from.
func NewProjectCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Show or switch the daemon's project root",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the current project root",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			st, err := projectCall(cmd.Context(), http.MethodGet, daemonURL(cfg.Server.Addr)+"/project", nil)
			if err != nil {
				return err
			}
			if st.Root == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "No project set.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Project: %s\n", st.Root)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <path>",
		Short: "Point read_file at a project directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			st, err := projectCall(cmd.Context(), http.MethodPost, daemonURL(cfg.Server.Addr)+"/project", &rpc.ProjectRequest{Path: path})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Project set to: %s\n", st.Root)
			return nil
		},
	})

	return cmd
}

func projectCall(ctx context.Context, method, url string, body *rpc.ProjectRequest) (rpc.ProjectStatus, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return rpc.ProjectStatus{}, err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return rpc.ProjectStatus{}, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return rpc.ProjectStatus{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return rpc.ProjectStatus{}, fmt.Errorf("daemon returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var st rpc.ProjectStatus
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return rpc.ProjectStatus{}, fmt.Errorf("decode project status: %w", err)
	}
	return st, nil
}
