package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/veeru594/ai-agent/internal/credentials"
)

// NewDoctorCmd returns a health-check command validating config and provider keys.
func NewDoctorCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Validate configuration and provider keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config OK. Providers: %d, models: %d\n", len(cfg.Providers), len(cfg.Models))
			fmt.Fprintf(out, "Chains: code=%v reason=%v, max tool depth: %d\n", cfg.Chains.Code, cfg.Chains.Reason, cfg.Router.MaxToolDepth)

			names := make([]string, 0, len(cfg.Providers))
			for name := range cfg.Providers {
				names = append(names, name)
			}
			sort.Strings(names)

			var missing []string
			environ := os.Environ()
			for _, name := range names {
				p := cfg.Providers[name]
				n := len(credentials.KeysFromEnviron(p.KeyPrefix, environ))
				state := "ok"
				switch {
				case n == 0 && p.Required:
					state = "MISSING"
					missing = append(missing, name)
				case n == 0:
					state = "skipped (optional)"
				}
				fmt.Fprintf(out, "  %-12s %s* keys=%d %s\n", name, credentials.KeyPrefix(p.KeyPrefix), n, state)
			}

			if len(missing) > 0 {
				return fmt.Errorf("required providers without keys: %v", missing)
			}
			return nil
		},
	}
}
