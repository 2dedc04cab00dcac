package llm_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/veeru594/ai-agent/internal/credentials"
	"github.com/veeru594/ai-agent/internal/llm"
	llmmock "github.com/veeru594/ai-agent/internal/llm/mock"
)

type recorder struct {
	attempts  []string
	rotations []string
}

func (r *recorder) RecordAttempt(provider, model, result string) {
	r.attempts = append(r.attempts, provider+"/"+model+":"+result)
}

func (r *recorder) RecordRotation(provider, reason string) {
	r.rotations = append(r.rotations, provider+":"+reason)
}

func newRegistry(t *testing.T, p llm.Provider, keys ...string) (*llm.Registry, *credentials.Pool, *recorder) {
	t.Helper()
	pool, err := credentials.NewPool(p.Name(), keys)
	require.NoError(t, err)

	rec := &recorder{}
	reg := llm.NewRegistry(nil, rec)
	reg.RegisterProvider(p.Name(), p, pool)
	reg.RegisterModel("main", llm.ModelRoute{Provider: p.Name(), Model: "dummy", Temperature: 0.2})
	return reg, pool, rec
}

func TestRegistryCaller(t *testing.T) {
	mockProvider := &llmmock.Provider{NameValue: "mock", ChatFn: llmmock.Reply("hi")}
	reg, _, _ := newRegistry(t, mockProvider, "k1")

	c, err := reg.Caller("main")
	require.NoError(t, err)
	require.Equal(t, llm.Identity{Provider: "mock", Model: "dummy"}, c.Identity())
	require.True(t, reg.HasModel("main"))
	require.False(t, reg.HasModel("missing"))

	_, err = reg.Caller("missing")
	require.Error(t, err)
}

func TestCallerInvokeSuccess(t *testing.T) {
	mockProvider := &llmmock.Provider{NameValue: "mock", ChatFn: llmmock.Reply("hello")}
	reg, _, rec := newRegistry(t, mockProvider, "k1")

	c, err := reg.Caller("main")
	require.NoError(t, err)

	out := c.Invoke(context.Background(), "prompt")
	require.True(t, out.OK())
	require.Equal(t, "hello", out.Text)

	calls := mockProvider.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, "k1", calls[0].APIKey)
	require.Equal(t, "dummy", calls[0].Model)
	require.InDelta(t, 0.2, calls[0].Temperature, 1e-9)
	require.Equal(t, "prompt", calls[0].Messages[0].Content)
	require.Equal(t, []string{"mock/dummy:ok"}, rec.attempts)
}

func TestCallerInvokeFailureReportsToPool(t *testing.T) {
	mockProvider := &llmmock.Provider{NameValue: "mock", ChatFn: llmmock.Fail("mock", 429)}
	reg, pool, rec := newRegistry(t, mockProvider, "k1", "k2")

	c, err := reg.Caller("main")
	require.NoError(t, err)

	out := c.Invoke(context.Background(), "prompt")
	require.False(t, out.OK())
	require.Equal(t, 429, out.Status)
	require.True(t, pool.Blacklisted("k1"))
	require.Equal(t, "k2", pool.Acquire())
	require.Equal(t, []string{"mock:rate_limited"}, rec.rotations)

	out = c.Invoke(context.Background(), "prompt")
	require.False(t, out.OK())
	calls := mockProvider.Calls()
	require.Equal(t, "k2", calls[1].APIKey)
}

func TestCallerClientErrorDoesNotRotate(t *testing.T) {
	mockProvider := &llmmock.Provider{NameValue: "mock", ChatFn: llmmock.Fail("mock", 400)}
	reg, pool, rec := newRegistry(t, mockProvider, "k1", "k2")

	c, err := reg.Caller("main")
	require.NoError(t, err)

	out := c.Invoke(context.Background(), "prompt")
	require.Equal(t, 400, out.Status)
	require.False(t, pool.Blacklisted("k1"))
	require.Equal(t, "k1", pool.Acquire())
	require.Empty(t, rec.rotations)
	require.Equal(t, []string{"mock/dummy:client_error"}, rec.attempts)
}

func TestCallerLocalErrorKeepsCredential(t *testing.T) {
	mockProvider := &llmmock.Provider{NameValue: "mock", ChatFn: func(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
		return llm.ChatResponse{}, errors.New("model is required")
	}}
	reg, pool, rec := newRegistry(t, mockProvider, "k1", "k2")

	c, err := reg.Caller("main")
	require.NoError(t, err)

	out := c.Invoke(context.Background(), "prompt")
	require.False(t, out.OK())
	require.Equal(t, 0, out.Status)
	require.False(t, pool.Blacklisted("k1"))
	require.Equal(t, "k1", pool.Acquire())
	require.Empty(t, rec.rotations)
	require.Equal(t, []string{"mock/dummy:local"}, rec.attempts)
}

func TestCallerNetworkErrorStillRotates(t *testing.T) {
	mockProvider := &llmmock.Provider{NameValue: "mock", ChatFn: llmmock.Fail("mock", 0)}
	reg, pool, rec := newRegistry(t, mockProvider, "k1", "k2")

	c, err := reg.Caller("main")
	require.NoError(t, err)

	out := c.Invoke(context.Background(), "prompt")
	require.Equal(t, 0, out.Status)
	require.True(t, pool.Blacklisted("k1"))
	require.Equal(t, []string{"mock:network"}, rec.rotations)
}
