// Package router maps task kinds to provider fallback chains and drives the
// read_file interception loop on the replies they produce.
package router

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/veeru594/ai-agent/internal/llm"
)

// Chain names.
const (
	ChainCode   = "code"
	ChainReason = "reason"
)

// Metrics receives routing observations. Implemented by observability.Metrics.
type Metrics interface {
	RecordRoute(kind, outcome string, duration time.Duration)
	RecordToolRead(result string)
	RecordExhausted(chain string)
}

// Options configures a Router.
type Options struct {
	// MaxToolDepth caps resubmissions per request; zero or less means
	// DefaultMaxToolDepth.
	MaxToolDepth int
	// Detach runs provider calls independently of caller cancellation, bounded
	// only by the provider timeouts.
	Detach    bool
	ToolUsage string
	Logger    *zap.Logger
	Metrics   Metrics
}

// Request is a single routing call.
type Request struct {
	Kind   TaskKind
	Prompt string
}

// Result is the final answer plus what it took to get there.
type Result struct {
	Identity llm.Identity `json:"identity"`
	Text     string       `json:"text"`
	Kind     TaskKind     `json:"kind"`
	Chain    string       `json:"chain"`
	Depth    int          `json:"depth"`
	State    string       `json:"state"`
	Attempts []Attempt    `json:"attempts,omitempty"`
	Reads    []ToolRead   `json:"reads,omitempty"`
}

// Router owns the chains and the interception loop. It holds no per-request
// state and is safe for concurrent use.
type Router struct {
	chains      map[string]*Chain
	interceptor *interceptor
	rules       string
	detach      bool
	logger      *zap.Logger
	metrics     Metrics
}

// New builds a router. The code chain escalates to the reason chain when its
// own entries are exhausted.
func New(code, reason *Chain, reader Reader, opts Options) (*Router, error) {
	if reason == nil {
		return nil, errors.New("reason chain is required")
	}
	if code == nil {
		code = NewChain(ChainCode, nil, opts.Logger)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	depth := opts.MaxToolDepth
	if depth <= 0 {
		depth = DefaultMaxToolDepth
	}

	return &Router{
		chains: map[string]*Chain{
			ChainCode:   code.WithEscalation(reason),
			ChainReason: reason,
		},
		interceptor: &interceptor{reader: reader, maxDepth: depth, logger: logger, metrics: opts.Metrics},
		rules:       buildRulesPreamble(opts.ToolUsage),
		detach:      opts.Detach,
		logger:      logger,
		metrics:     opts.Metrics,
	}, nil
}

// Chain returns the chain used for a task kind.
func (r *Router) Chain(kind TaskKind) *Chain {
	if kind == TaskCode {
		return r.chains[ChainCode]
	}
	return r.chains[ChainReason]
}

// Route serves one request end to end. The only error it returns wraps
// ErrChainExhausted (or reports an empty prompt).
func (r *Router) Route(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return Result{}, fmt.Errorf("prompt is required")
	}
	if r.detach {
		ctx = context.WithoutCancel(ctx)
	}

	kind := req.Kind
	if kind == "" {
		kind = ClassifyTask(req.Prompt)
	}
	start := time.Now()
	logger := r.logger.With(zap.String("kind", string(kind)))

	prompt := r.buildPrompt(kind, req.Prompt)
	chain := r.Chain(kind)

	first, err := chain.Run(ctx, prompt)
	if err != nil {
		r.fail(logger, kind, start, err)
		return Result{Kind: kind, Attempts: first.Attempts}, err
	}

	loop, err := r.interceptor.run(ctx, prompt, first, r.resubmit)
	if err != nil {
		r.fail(logger, kind, start, err)
		return Result{Kind: kind, Attempts: loop.Attempts, Reads: loop.Reads}, err
	}

	if r.metrics != nil {
		r.metrics.RecordRoute(string(kind), loop.State, time.Since(start))
	}
	logger.Info("routed",
		zap.Stringer("identity", loop.Completion.Identity),
		zap.Int("depth", loop.Depth),
		zap.String("state", loop.State),
		zap.Int("failed_attempts", len(loop.Attempts)),
	)

	return Result{
		Identity: loop.Completion.Identity,
		Text:     loop.Completion.Text,
		Kind:     kind,
		Chain:    loop.Completion.Chain,
		Depth:    loop.Depth,
		State:    loop.State,
		Attempts: loop.Attempts,
		Reads:    loop.Reads,
	}, nil
}

func (r *Router) resubmit(ctx context.Context, chain, prompt string) (Completion, error) {
	c, ok := r.chains[chain]
	if !ok {
		c = r.chains[ChainReason]
	}
	return c.Run(ctx, prompt)
}

func (r *Router) fail(logger *zap.Logger, kind TaskKind, start time.Time, err error) {
	logger.Error("routing failed", zap.Error(err))
	if r.metrics == nil {
		return
	}
	r.metrics.RecordRoute(string(kind), "exhausted", time.Since(start))
	var ex *ExhaustedError
	if errors.As(err, &ex) {
		r.metrics.RecordExhausted(ex.Chain)
	}
}
