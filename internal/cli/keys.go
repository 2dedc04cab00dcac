package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/veeru594/ai-agent/internal/credentials"
)

// NewKeysCmd lists provider key pools, either from the local environment or
// from a running daemon.
func NewKeysCmd(opts *Options) *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Show provider key pools (secrets are masked)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if remote {
				statuses, err := fetchPoolStatus(cmd.Context(), daemonURL(cfg.Server.Addr)+"/credentials")
				if err != nil {
					return err
				}
				for _, st := range statuses {
					fmt.Fprintf(out, "%-12s size=%d cursor=%d blacklisted=%d\n", st.Provider, st.Size, st.Cursor, st.Blacklisted)
				}
				return nil
			}

			names := make([]string, 0, len(cfg.Providers))
			for name := range cfg.Providers {
				names = append(names, name)
			}
			sort.Strings(names)

			environ := os.Environ()
			for _, name := range names {
				keys := credentials.KeysFromEnviron(cfg.Providers[name].KeyPrefix, environ)
				fmt.Fprintf(out, "%-12s %d key(s)\n", name, len(keys))
				for i, k := range keys {
					fmt.Fprintf(out, "  [%d] %s\n", i, credentials.Mask(k))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "Query pool status from the running daemon")
	return cmd
}

func fetchPoolStatus(ctx context.Context, url string) ([]credentials.Status, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("daemon returned status %d", resp.StatusCode)
	}

	var statuses []credentials.Status
	if err := json.NewDecoder(resp.Body).Decode(&statuses); err != nil {
		return nil, fmt.Errorf("decode pool status: %w", err)
	}
	return statuses, nil
}
