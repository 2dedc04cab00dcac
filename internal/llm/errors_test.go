package llm

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	require.Equal(t, KindNetwork, Classify(0))
	require.Equal(t, KindRateLimited, Classify(429))
	require.Equal(t, KindForbidden, Classify(403))
	require.Equal(t, KindServerError, Classify(500))
	require.Equal(t, KindServerError, Classify(503))
	require.Equal(t, KindClientError, Classify(401))
	require.Equal(t, KindOK, Classify(200))
}

func TestStatusOfUnwrapsWrappedErrors(t *testing.T) {
	base := &StatusError{Provider: "groq", Model: "m", Status: 503, Body: "down"}
	wrapped := fmt.Errorf("call: %w", base)
	require.Equal(t, 503, StatusOf(wrapped))
	require.Equal(t, 0, StatusOf(errors.New("boom")))
	require.Contains(t, base.Error(), "status 503")
}

func TestIsProviderFailure(t *testing.T) {
	require.True(t, IsProviderFailure(fmt.Errorf("call: %w", &StatusError{Status: 0})))
	require.True(t, IsProviderFailure(&StatusError{Status: 429}))
	require.False(t, IsProviderFailure(errors.New("model is required")))
}
