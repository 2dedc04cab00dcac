package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const baseYAML = `
version: "0.1.0"
providers:
  groq:
    type: groq
    endpoint: https://api.groq.com/openai/v1/chat/completions
    timeout: 30s
    required: true
  openrouter:
    type: openrouter
    endpoint: https://openrouter.ai/api/v1/chat/completions
    timeout: 45s
    temperature: 0.2
    headers:
      X-Title: Jarvis
models:
  groq-llama:
    provider: groq
    model: llama-3.3-70b-versatile
  or-qwen:
    provider: openrouter
    model: qwen/qwen2.5-32b-instruct
chains:
  code: [groq-llama]
  reason: [or-qwen]
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigFromFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, baseYAML))
	require.NoError(t, err)

	require.Equal(t, "groq", cfg.Models["groq-llama"].Provider)
	require.Equal(t, []string{"groq-llama"}, cfg.Chains.Code)
	require.Equal(t, 45*time.Second, cfg.Providers["openrouter"].Timeout)
	require.Equal(t, "Jarvis", cfg.Providers["openrouter"].Headers["x-title"])
	require.Equal(t, "GROQ", cfg.Providers["groq"].KeyPrefix)
	require.True(t, cfg.Providers["groq"].Required)

	require.Equal(t, 2, cfg.Router.MaxToolDepth)
	require.True(t, cfg.Router.DetachCalls)
	require.Equal(t, 60*time.Second, cfg.Cooldowns.RateLimited)
	require.Equal(t, 300*time.Second, cfg.Cooldowns.Forbidden)
	require.Equal(t, 10*time.Second, cfg.Cooldowns.Transient)
	require.Equal(t, 12000, cfg.Sandbox.MaxReadChars)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("JARVIS_ROUTER_MAX_TOOL_DEPTH", "1")
	cfg, err := Load(writeConfig(t, baseYAML))
	require.NoError(t, err)
	require.Equal(t, 1, cfg.Router.MaxToolDepth)
}

func TestLoadRejectsDeepToolRecursion(t *testing.T) {
	t.Setenv("JARVIS_ROUTER_MAX_TOOL_DEPTH", "3")
	_, err := Load(writeConfig(t, baseYAML))
	require.ErrorContains(t, err, "max_tool_depth")
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("JARVIS_TEST_KEY_1=from-file\nJARVIS_TEST_KEY_2=file-two\n"), 0o600))

	t.Setenv("JARVIS_TEST_KEY_1", "from-env")
	t.Setenv("JARVIS_TEST_KEY_2", "")
	require.NoError(t, os.Unsetenv("JARVIS_TEST_KEY_2"))

	require.NoError(t, LoadDotEnv(path))
	require.Equal(t, "from-env", os.Getenv("JARVIS_TEST_KEY_1"))
	require.Equal(t, "file-two", os.Getenv("JARVIS_TEST_KEY_2"))

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}

func TestValidateFailsOnUnknownChainModel(t *testing.T) {
	cfg := validConfig()
	cfg.Chains.Reason = []string{"missing"}
	require.Error(t, cfg.Validate())
}

func TestValidateRequiresReasonChain(t *testing.T) {
	cfg := validConfig()
	cfg.Chains.Reason = nil
	require.Error(t, cfg.Validate())
}

func TestValidateFailsOnUnknownProvider(t *testing.T) {
	cfg := validConfig()
	cfg.Models["broken"] = ModelConfig{Provider: "missing", Model: "x"}
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsBadTransport(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Transport = "grpc"
	require.Error(t, cfg.Validate())
}

func TestValidateBoundsToolDepth(t *testing.T) {
	for _, depth := range []int{-1, 0, MaxToolDepth + 1, 50} {
		cfg := validConfig()
		cfg.Router.MaxToolDepth = depth
		require.Error(t, cfg.Validate(), "depth %d", depth)
	}
	for depth := 1; depth <= MaxToolDepth; depth++ {
		cfg := validConfig()
		cfg.Router.MaxToolDepth = depth
		require.NoError(t, cfg.Validate(), "depth %d", depth)
	}
}

func TestValidateAcceptsValidConfig(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())
}

func validConfig() Config {
	return Config{
		Providers: map[string]ProviderConfig{
			"groq": {Type: "groq"},
		},
		Models: map[string]ModelConfig{
			"fast": {Provider: "groq", Model: "llama"},
		},
		Chains:    ChainsConfig{Code: []string{"fast"}, Reason: []string{"fast"}},
		Router:    RouterConfig{MaxToolDepth: 2},
		Cooldowns: CooldownConfig{RateLimited: time.Minute, Forbidden: 5 * time.Minute, Transient: 10 * time.Second},
		Sandbox:   SandboxConfig{MaxReadChars: 100},
	}
}

func TestLoadExampleConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "config.example.yaml"))
	require.NoError(t, err)
	require.Equal(t, []string{"deepseek-reasoner", "or-llama", "or-qwen"}, cfg.Chains.Reason)
	require.Equal(t, "qwen/qwen2.5-32b-instruct", cfg.Models["or-qwen"].Model)
	require.False(t, cfg.Providers["deepseek"].Required)
	require.Equal(t, 60*time.Second, cfg.Providers["deepseek"].Timeout)
	require.Equal(t, "Jarvis", cfg.Providers["openrouter"].Headers["x-title"])
	require.True(t, cfg.Router.DetachCalls)
}
