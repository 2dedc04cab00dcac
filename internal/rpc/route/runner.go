package route

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/veeru594/ai-agent/internal/router"
	"github.com/veeru594/ai-agent/internal/rpc"
)

// Runner executes a route request and yields streamed events.
type Runner interface {
	Run(ctx context.Context, req rpc.RouteRequest) (<-chan rpc.RouteEvent, error)
}

// Router is satisfied by *router.Router.
type Router interface {
	Route(ctx context.Context, req router.Request) (router.Result, error)
}

// RouterRunner bridges the router to RPC events.
type RouterRunner struct {
	Router Router
	Logger *zap.Logger
}

// Run routes the prompt and replays what happened as events: failed
// attempts, tool reads, then either the result or the error, then done.
func (r *RouterRunner) Run(ctx context.Context, req rpc.RouteRequest) (<-chan rpc.RouteEvent, error) {
	req.RequestID = EnsureRequestID(req.RequestID)
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("request_id", req.RequestID))

	out := make(chan rpc.RouteEvent, 16)
	go func() {
		defer close(out)
		send := func(ev rpc.RouteEvent) bool {
			select {
			case <-ctx.Done():
				return false
			case out <- ev:
				return true
			}
		}

		if r.Router == nil {
			send(rpc.RouteEvent{Type: rpc.EventError, RequestID: req.RequestID, Error: "router unavailable"})
			return
		}

		start := time.Now()
		res, err := r.Router.Route(ctx, router.Request{Kind: router.ParseTaskKind(req.Kind), Prompt: req.Prompt})
		logger.Debug("route finished", zap.Duration("elapsed", time.Since(start)), zap.Error(err))

		for _, a := range res.Attempts {
			if !send(rpc.AttemptEvent(req.RequestID, a)) {
				return
			}
		}
		for _, read := range res.Reads {
			if !send(rpc.ToolEvent(req.RequestID, read)) {
				return
			}
		}

		if err != nil {
			if !send(rpc.RouteEvent{Type: rpc.EventError, RequestID: req.RequestID, Kind: string(res.Kind), Error: err.Error()}) {
				return
			}
			state := router.StateError
			if errors.Is(err, router.ErrChainExhausted) {
				state = router.StateExhausted
			}
			send(rpc.RouteEvent{Type: rpc.EventDone, RequestID: req.RequestID, Done: true, State: state})
			return
		}

		id := res.Identity
		if !send(rpc.RouteEvent{
			Type:      rpc.EventResult,
			RequestID: req.RequestID,
			Kind:      string(res.Kind),
			Chain:     res.Chain,
			Identity:  &id,
			Text:      res.Text,
			Depth:     res.Depth,
			State:     res.State,
		}) {
			return
		}
		send(rpc.RouteEvent{Type: rpc.EventDone, RequestID: req.RequestID, Done: true, State: res.State})
	}()
	return out, nil
}

// EnsureRequestID returns id, or a fresh UUID when id is empty.
func EnsureRequestID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}
