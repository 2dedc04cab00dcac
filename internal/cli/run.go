package cli

import (
	"bufio"
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/bufbuild/connect-go"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"

	"github.com/veeru594/ai-agent/internal/router"
	"github.com/veeru594/ai-agent/internal/rpc"
	"github.com/veeru594/ai-agent/internal/rpc/connectjson"
	routerpc "github.com/veeru594/ai-agent/internal/rpc/route"
)

// NewRunCmd wires the run command to stream route events from the daemon.
func NewRunCmd(opts *Options) *cobra.Command {
	var kind string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "run \"<prompt>\"",
		Short: "Send a prompt to the daemon and print the routed answer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			prompt := args[0]
			if strings.TrimSpace(prompt) == "" {
				return fmt.Errorf("prompt cannot be empty")
			}
			switch router.ParseTaskKind(kind) {
			case "", router.TaskCode, router.TaskReason, router.TaskPlan:
			default:
				return fmt.Errorf("unknown kind %q (want code, reason or plan)", kind)
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			reqBody := rpc.RouteRequest{
				RequestID: "cli-" + uuid.NewString(),
				Kind:      kind,
				Prompt:    prompt,
			}
			r := &eventRenderer{out: cmd.OutOrStdout(), verbose: verbose}

			baseURL := daemonURL(cfg.Server.Addr)
			switch strings.ToLower(strings.TrimSpace(cfg.Server.Transport)) {
			case "ndjson":
				return runNDJSON(ctx, r, baseURL+"/route", reqBody)
			default:
				return runConnect(ctx, r, baseURL+routerpc.ConnectRouteProcedure, reqBody)
			}
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "Task kind: code, reason or plan (default: classify from prompt)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print failed attempts and tool reads")
	return cmd
}

func daemonURL(addr string) string {
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return addr
	}
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

func runNDJSON(ctx context.Context, r *eventRenderer, url string, reqBody rpc.RouteRequest) error {
	data, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("daemon returned status %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var evt rpc.RouteEvent
		if err := json.Unmarshal(scanner.Bytes(), &evt); err != nil {
			return fmt.Errorf("decode event: %w", err)
		}
		if err := r.render(evt); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func runConnect(ctx context.Context, r *eventRenderer, url string, reqBody rpc.RouteRequest) error {
	client := connect.NewClient[rpc.RouteStreamRequest, rpc.RouteEvent](buildH2CClient(), url, connect.WithCodec(connectjson.Codec{}))
	stream := client.CallBidiStream(ctx)

	if err := stream.Send(&rpc.RouteStreamRequest{Route: &reqBody}); err != nil {
		return err
	}

	// propagate cancellation to the daemon.
	go func() {
		<-ctx.Done()
		_ = stream.Send(&rpc.RouteStreamRequest{Cancel: true, RequestID: reqBody.RequestID})
		_ = stream.CloseRequest()
	}()

	for {
		evt, err := stream.Receive()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if err := r.render(*evt); err != nil {
			return err
		}
	}
	_ = stream.CloseRequest()
	return stream.CloseResponse()
}

type eventRenderer struct {
	out     io.Writer
	verbose bool
}

func (r *eventRenderer) render(evt rpc.RouteEvent) error {
	switch evt.Type {
	case rpc.EventAttempt:
		if r.verbose {
			fmt.Fprintf(r.out, "[attempt %s %s status=%d] %s\n", evt.Chain, evt.Identity, evt.Status, evt.Error)
		}
	case rpc.EventTool:
		if r.verbose {
			if evt.Error != "" {
				fmt.Fprintf(r.out, "[read_file %s failed: %s]\n", evt.Path, evt.Error)
			} else {
				fmt.Fprintf(r.out, "[read_file %s]\n", evt.Path)
			}
		}
	case rpc.EventResult:
		if r.verbose {
			fmt.Fprintf(r.out, "[%s via %s, depth %d]\n", evt.Kind, evt.Identity, evt.Depth)
		}
		fmt.Fprintln(r.out, evt.Text)
		if evt.State == router.StateDepthExceeded {
			fmt.Fprintln(r.out, "[tool depth exceeded]")
		}
	case rpc.EventDone:
		if r.verbose {
			fmt.Fprintln(r.out, "[done]")
		}
	case rpc.EventError:
		return fmt.Errorf("daemon error: %s", evt.Error)
	}
	return nil
}

func buildH2CClient() *http.Client {
	return &http.Client{
		Transport: &http2.Transport{
			AllowHTTP: true,
			DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, network, addr)
			},
		},
	}
}
