package llm

import (
	"context"

	"go.uber.org/zap"

	"github.com/veeru594/ai-agent/internal/credentials"
)

// Recorder receives per-attempt observations. Implemented by
// observability.Metrics; nil is allowed.
type Recorder interface {
	RecordAttempt(provider, model, result string)
	RecordRotation(provider, reason string)
}

// Outcome is the tagged result of one invocation: Text on success, otherwise
// Status (0 for transport and local failures) and Err.
type Outcome struct {
	Identity Identity
	Text     string
	Status   int
	Err      error
}

// OK reports whether the attempt succeeded.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Caller binds a provider, its credential pool and a model route.
type Caller struct {
	provider Provider
	pool     *credentials.Pool
	route    ModelRoute
	logger   *zap.Logger
	recorder Recorder
}

// NewCaller constructs a Caller. logger and recorder may be nil.
func NewCaller(p Provider, pool *credentials.Pool, route ModelRoute, logger *zap.Logger, recorder Recorder) *Caller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Caller{provider: p, pool: pool, route: route, logger: logger, recorder: recorder}
}

// Identity returns the provider/model pair this caller targets.
func (c *Caller) Identity() Identity {
	return Identity{Provider: c.route.Provider, Model: c.route.Model}
}

// Invoke performs one round trip with a credential from the pool. On a
// provider failure the pool is told about the status before the outcome is
// returned. Local failures leave the credential untouched.
func (c *Caller) Invoke(ctx context.Context, prompt string) Outcome {
	id := c.Identity()
	key := c.pool.Acquire()

	resp, err := c.provider.Chat(ctx, ChatRequest{
		Model:       c.route.Model,
		Messages:    []ChatMessage{{Role: RoleUser, Content: prompt}},
		Temperature: c.route.Temperature,
		APIKey:      key,
	})
	if err != nil && !IsProviderFailure(err) {
		c.logger.Warn("request not sent",
			zap.String("provider", id.Provider),
			zap.String("model", id.Model),
			zap.Error(err),
		)
		if c.recorder != nil {
			c.recorder.RecordAttempt(id.Provider, id.Model, string(KindLocal))
		}
		return Outcome{Identity: id, Err: err}
	}
	if err != nil {
		status := StatusOf(err)
		kind := Classify(status)
		if kind == KindOK {
			kind = KindMalformed
		}
		if c.pool.ReportOutcome(key, status) {
			c.logger.Warn("credential rotated",
				zap.String("provider", id.Provider),
				zap.Int("status", status),
				zap.String("credential", credentials.Mask(key)),
			)
			if c.recorder != nil {
				c.recorder.RecordRotation(id.Provider, string(kind))
			}
		}
		if c.recorder != nil {
			c.recorder.RecordAttempt(id.Provider, id.Model, string(kind))
		}
		return Outcome{Identity: id, Status: status, Err: err}
	}

	if c.recorder != nil {
		c.recorder.RecordAttempt(id.Provider, id.Model, string(KindOK))
	}
	return Outcome{Identity: id, Text: resp.Message.Content, Status: 200}
}
