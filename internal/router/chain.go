package router

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/veeru594/ai-agent/internal/llm"
)

// Attempt records one provider invocation made while serving a request.
type Attempt struct {
	Chain    string       `json:"chain"`
	Identity llm.Identity `json:"identity"`
	Status   int          `json:"status"`
	Error    string       `json:"error,omitempty"`
}

// Completion is a successful chain run.
type Completion struct {
	Identity llm.Identity
	Text     string
	// Chain is the tier that produced Text; resubmissions go back to it.
	Chain    string
	Attempts []Attempt
}

// Invoker is satisfied by *llm.Caller.
type Invoker interface {
	Identity() llm.Identity
	Invoke(ctx context.Context, prompt string) llm.Outcome
}

// Chain tries its entries in declared order and stops at the first success.
// A chain with an escalation hands over to it once its own entries are spent.
type Chain struct {
	name     string
	entries  []Invoker
	escalate *Chain
	logger   *zap.Logger
}

// NewChain builds a chain. The entries slice is copied.
func NewChain(name string, entries []Invoker, logger *zap.Logger) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{
		name:    name,
		entries: append([]Invoker(nil), entries...),
		logger:  logger.With(zap.String("chain", name)),
	}
}

// WithEscalation returns a copy of c that falls through to next on exhaustion.
func (c *Chain) WithEscalation(next *Chain) *Chain {
	cp := *c
	cp.escalate = next
	return &cp
}

// Name returns the chain name.
func (c *Chain) Name() string {
	return c.name
}

// Identities lists the entries in order.
func (c *Chain) Identities() []llm.Identity {
	out := make([]llm.Identity, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e.Identity())
	}
	return out
}

// Run submits prompt to each entry in turn. Per-attempt failures are absorbed;
// only exhaustion of the chain (and of its escalation, if any) is returned.
func (c *Chain) Run(ctx context.Context, prompt string) (Completion, error) {
	attempts := make([]Attempt, 0, len(c.entries))
	for _, entry := range c.entries {
		out := entry.Invoke(ctx, prompt)
		if out.OK() {
			return Completion{Identity: out.Identity, Text: out.Text, Chain: c.name, Attempts: attempts}, nil
		}
		attempts = append(attempts, Attempt{Chain: c.name, Identity: out.Identity, Status: out.Status, Error: out.Err.Error()})
		c.logger.Warn("chain entry failed, trying next",
			zap.Stringer("entry", out.Identity),
			zap.Int("status", out.Status),
		)
	}

	if c.escalate != nil {
		c.logger.Info("chain exhausted, escalating", zap.String("to", c.escalate.name))
		comp, err := c.escalate.Run(ctx, prompt)
		comp.Attempts = append(attempts, comp.Attempts...)
		var ex *ExhaustedError
		if errors.As(err, &ex) {
			return comp, &ExhaustedError{Chain: c.name + "->" + ex.Chain, Attempts: comp.Attempts}
		}
		return comp, err
	}

	c.logger.Error("chain exhausted", zap.Int("attempts", len(attempts)))
	return Completion{Attempts: attempts}, &ExhaustedError{Chain: c.name, Attempts: attempts}
}
