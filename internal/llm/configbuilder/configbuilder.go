package configbuilder

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/veeru594/ai-agent/internal/config"
	"github.com/veeru594/ai-agent/internal/credentials"
	"github.com/veeru594/ai-agent/internal/llm"
	llmopenai "github.com/veeru594/ai-agent/internal/llm/providers/openai"
	"github.com/veeru594/ai-agent/internal/router"
)

// Options injects dependencies that are not part of the config file.
type Options struct {
	Logger   *zap.Logger
	Recorder llm.Recorder
	// Environ replaces os.Environ for key discovery (tests).
	Environ []string
	// PoolOptions are appended to every pool (e.g. a test clock).
	PoolOptions []credentials.Option
}

// BuildRegistryFromConfig constructs providers, credential pools and model
// routes. Providers without keys abort the build when required and are
// skipped otherwise.
func BuildRegistryFromConfig(cfg *config.Config, opts Options) (*llm.Registry, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	reg := llm.NewRegistry(logger, opts.Recorder)

	names := make([]string, 0, len(cfg.Providers))
	for name := range cfg.Providers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		pCfg := cfg.Providers[name]
		pool, err := buildPool(name, pCfg, cfg.Cooldowns, opts)
		if err != nil {
			if errors.Is(err, credentials.ErrNoCredentials) && !pCfg.Required {
				logger.Warn("provider has no keys, skipping", zap.String("provider", name), zap.String("prefix", credentials.KeyPrefix(pCfg.KeyPrefix)))
				continue
			}
			return nil, err
		}
		p, err := buildProvider(name, pCfg, logger)
		if err != nil {
			return nil, err
		}
		reg.RegisterProvider(name, p, pool)
		logger.Info("provider registered", zap.String("provider", name), zap.Int("keys", pool.Size()))
	}

	for name, mCfg := range cfg.Models {
		reg.RegisterModel(name, llm.ModelRoute{
			Provider:    mCfg.Provider,
			Model:       mCfg.Model,
			Temperature: cfg.Providers[mCfg.Provider].Temperature,
		})
	}

	return reg, nil
}

// BuildChains resolves the configured code and reason chains. Entries whose
// provider was skipped are dropped; an empty reason chain is an error.
func BuildChains(cfg *config.Config, reg *llm.Registry, logger *zap.Logger) (code, reason *router.Chain, err error) {
	codeEntries, err := resolve(cfg.Chains.Code, reg, logger)
	if err != nil {
		return nil, nil, err
	}
	reasonEntries, err := resolve(cfg.Chains.Reason, reg, logger)
	if err != nil {
		return nil, nil, err
	}
	if len(reasonEntries) == 0 {
		return nil, nil, errors.New("reason chain has no usable providers")
	}
	return router.NewChain(router.ChainCode, codeEntries, logger), router.NewChain(router.ChainReason, reasonEntries, logger), nil
}

// BuildRouter wires registry, chains and the read collaborator together.
func BuildRouter(cfg *config.Config, reg *llm.Registry, reader router.Reader, opts router.Options) (*router.Router, error) {
	code, reason, err := BuildChains(cfg, reg, opts.Logger)
	if err != nil {
		return nil, err
	}
	opts.MaxToolDepth = cfg.Router.MaxToolDepth
	opts.Detach = cfg.Router.DetachCalls
	return router.New(code, reason, reader, opts)
}

func resolve(ids []string, reg *llm.Registry, logger *zap.Logger) ([]router.Invoker, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	out := make([]router.Invoker, 0, len(ids))
	for _, id := range ids {
		if !reg.HasModel(id) {
			logger.Warn("dropping chain entry without provider", zap.String("model_id", id))
			continue
		}
		c, err := reg.Caller(id)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func buildPool(name string, cfg config.ProviderConfig, cd config.CooldownConfig, opts Options) (*credentials.Pool, error) {
	poolOpts := append([]credentials.Option{credentials.WithCooldowns(credentials.Cooldowns{
		RateLimited: cd.RateLimited,
		Forbidden:   cd.Forbidden,
		Transient:   cd.Transient,
	})}, opts.PoolOptions...)

	if opts.Environ != nil {
		pool, err := credentials.NewPool(name, credentials.KeysFromEnviron(cfg.KeyPrefix, opts.Environ), poolOpts...)
		if err != nil {
			return nil, fmt.Errorf("load %s*: %w", credentials.KeyPrefix(cfg.KeyPrefix), err)
		}
		return pool, nil
	}
	return credentials.LoadFromEnv(name, cfg.KeyPrefix, poolOpts...)
}

func buildProvider(name string, cfg config.ProviderConfig, logger *zap.Logger) (llm.Provider, error) {
	switch cfg.Type {
	case "openai", "groq", "deepseek", "openrouter", "custom":
		return llmopenai.NewProvider(name, llmopenai.Options{
			Endpoint: cfg.Endpoint,
			Timeout:  cfg.Timeout,
			Headers:  cfg.Headers,
			Logger:   logger,
		}), nil
	default:
		return nil, fmt.Errorf("unknown provider type %q for provider %s", cfg.Type, name)
	}
}
