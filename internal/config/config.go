package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config describes the top-level application configuration loaded from YAML and ENV.
type Config struct {
	Version   string                    `mapstructure:"version"`
	Providers map[string]ProviderConfig `mapstructure:"providers"`
	Models    map[string]ModelConfig    `mapstructure:"models"`
	Chains    ChainsConfig              `mapstructure:"chains"`
	Router    RouterConfig              `mapstructure:"router"`
	Cooldowns CooldownConfig            `mapstructure:"cooldowns"`
	Sandbox   SandboxConfig             `mapstructure:"sandbox"`
	Logging   LoggingConfig             `mapstructure:"logging"`
	Server    ServerConfig              `mapstructure:"server"`
}

// ProviderConfig describes one OpenAI-compatible backend and where its keys live.
type ProviderConfig struct {
	Type        string            `mapstructure:"type"`        // openai-compatible: openai, groq, deepseek, openrouter, custom
	Endpoint    string            `mapstructure:"endpoint"`    // full chat-completions URL
	KeyPrefix   string            `mapstructure:"key_prefix"`  // env prefix, keys read from <PREFIX>_KEY_*
	Timeout     time.Duration     `mapstructure:"timeout"`     // per-call timeout
	Temperature float64           `mapstructure:"temperature"` // sent only when > 0
	Headers     map[string]string `mapstructure:"headers"`     // extra request headers
	Required    bool              `mapstructure:"required"`    // missing keys abort startup
}

// ModelConfig binds a logical model id to a provider entry.
type ModelConfig struct {
	Provider string `mapstructure:"provider"`
	Model    string `mapstructure:"model"`
}

// ChainsConfig lists model ids per task class, in fallback order.
type ChainsConfig struct {
	Code   []string `mapstructure:"code"`
	Reason []string `mapstructure:"reason"`
}

// MaxToolDepth is the largest accepted router.max_tool_depth.
const MaxToolDepth = 2

// RouterConfig tunes the routing loop.
type RouterConfig struct {
	MaxToolDepth int  `mapstructure:"max_tool_depth"`
	DetachCalls  bool `mapstructure:"detach_calls"`
}

// CooldownConfig sets credential blacklist windows per failure class.
type CooldownConfig struct {
	RateLimited time.Duration `mapstructure:"rate_limited"`
	Forbidden   time.Duration `mapstructure:"forbidden"`
	Transient   time.Duration `mapstructure:"transient"`
}

// SandboxConfig controls the read_file collaborator.
type SandboxConfig struct {
	WorkingDir   string `mapstructure:"working_dir"`
	MaxReadChars int    `mapstructure:"max_read_chars"`
}

// LoggingConfig controls logger behaviour.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // console or json
}

// ServerConfig describes daemon settings.
type ServerConfig struct {
	Addr           string `mapstructure:"addr"`
	MetricsEnabled bool   `mapstructure:"metrics_enabled"`
	Transport      string `mapstructure:"transport"` // connect or ndjson
}

// Load reads configuration from the provided path or defaults to configs/config.yaml.
// A .env file in the working directory, if present, is loaded first so that
// provider keys may live there. Environment variables override file values
// (prefix: JARVIS_, dots replaced with underscores).
func Load(path string) (*Config, error) {
	if err := LoadDotEnv(""); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("JARVIS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("configs")
	} else {
		v.SetConfigFile(path)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && path == "" {
			v.SetConfigName("config.example")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config: %w", err)
			}
		} else {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.applyProviderDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadDotEnv loads a dotenv file without overriding variables already set.
// An empty path means ".env"; a missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// setDefaults populates sensible defaults for optional fields.
func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("router.max_tool_depth", 2)
	v.SetDefault("router.detach_calls", true)

	v.SetDefault("cooldowns.rate_limited", "60s")
	v.SetDefault("cooldowns.forbidden", "300s")
	v.SetDefault("cooldowns.transient", "10s")

	v.SetDefault("sandbox.working_dir", "")
	v.SetDefault("sandbox.max_read_chars", 12000)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.metrics_enabled", true)
	v.SetDefault("server.transport", "connect")
}

func (c *Config) applyProviderDefaults() {
	for name, p := range c.Providers {
		if strings.TrimSpace(p.KeyPrefix) == "" {
			p.KeyPrefix = strings.ToUpper(name)
		}
		if p.Timeout == 0 {
			p.Timeout = 30 * time.Second
		}
		c.Providers[name] = p
	}
}

// Validate performs basic sanity checks on configuration values.
func (c *Config) Validate() error {
	if len(c.Providers) == 0 {
		return errors.New("at least one provider must be configured")
	}

	if len(c.Models) == 0 {
		return errors.New("at least one model must be defined")
	}

	for name, p := range c.Providers {
		if p.Type == "" {
			return fmt.Errorf("provider %q must define type", name)
		}
		if p.Timeout < 0 {
			return fmt.Errorf("provider %q timeout cannot be negative", name)
		}
		if p.Temperature < 0 || p.Temperature > 2 {
			return fmt.Errorf("provider %q temperature must be within [0,2]", name)
		}
	}

	for name, m := range c.Models {
		if m.Provider == "" {
			return fmt.Errorf("model %q must reference provider", name)
		}
		if _, ok := c.Providers[m.Provider]; !ok {
			return fmt.Errorf("model %q references unknown provider %q", name, m.Provider)
		}
		if strings.TrimSpace(m.Model) == "" {
			return fmt.Errorf("model %q must name the upstream model", name)
		}
	}

	if len(c.Chains.Reason) == 0 {
		return errors.New("chains.reason must list at least one model")
	}
	for chain, ids := range map[string][]string{"code": c.Chains.Code, "reason": c.Chains.Reason} {
		for _, id := range ids {
			if _, ok := c.Models[id]; !ok {
				return fmt.Errorf("chain %s references unknown model %q", chain, id)
			}
		}
	}

	if c.Router.MaxToolDepth <= 0 || c.Router.MaxToolDepth > MaxToolDepth {
		return fmt.Errorf("router.max_tool_depth must be between 1 and %d", MaxToolDepth)
	}
	if c.Cooldowns.RateLimited <= 0 || c.Cooldowns.Forbidden <= 0 || c.Cooldowns.Transient <= 0 {
		return errors.New("cooldowns must be > 0")
	}
	if c.Sandbox.MaxReadChars <= 0 {
		return errors.New("sandbox.max_read_chars must be > 0")
	}

	switch strings.ToLower(strings.TrimSpace(c.Server.Transport)) {
	case "", "connect", "ndjson":
	default:
		return fmt.Errorf("server.transport must be one of connect or ndjson, got %q", c.Server.Transport)
	}

	return nil
}
