package main

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/parleyhq/parley/internal/agent"
	githubagent "github.com/parleyhq/parley/internal/agents/github"
	slackagent "github.com/parleyhq/parley/internal/agents/slack"
	"github.com/parleyhq/parley/internal/config"
	"github.com/parleyhq/parley/internal/history"
	"github.com/parleyhq/parley/internal/observability"
	"github.com/parleyhq/parley/internal/providers"
	githubtool "github.com/parleyhq/parley/internal/tools/github"
	slacktool "github.com/parleyhq/parley/internal/tools/slack"
)

// app holds the assembled runtime: logger, metrics, agents, and the optional
// history store.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	logLevel *slog.LevelVar
	metrics  *observability.Metrics
	agents   map[string]*agent.Agent
	history  *history.Store
}

// newApp wires the application from config: logging, metrics, the selected
// completion provider, the enabled tools, and one agent per tool kind.
func newApp(cfg *config.Config) (*app, error) {
	logLevel := new(slog.LevelVar)
	logLevel.Set(observability.ParseLevel(cfg.Logging.Level))
	logger := observability.NewLogger(observability.LogConfig{
		LevelVar:  logLevel,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.AddSource,
	})
	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)

	client, err := buildProvider(cfg)
	if err != nil {
		return nil, err
	}

	opts := agent.Options{
		Client:       client,
		Logger:       logger,
		Metrics:      metrics,
		ToolTimeout:  cfg.Agents.ToolTimeout,
		ModelTimeout: cfg.Agents.ModelTimeout,
	}

	agents := make(map[string]*agent.Agent)
	if cfg.Tools.GitHub.Enabled {
		tool := githubtool.New(githubtool.Config{
			Token:   cfg.Tools.GitHub.Token,
			BaseURL: cfg.Tools.GitHub.BaseURL,
			Owner:   cfg.Tools.GitHub.Owner,
			Repo:    cfg.Tools.GitHub.Repo,
		})
		agents["github"] = githubagent.New(tool, opts)
	}
	if cfg.Tools.Slack.Enabled {
		tool := slacktool.New(slacktool.Config{
			BotToken:       cfg.Tools.Slack.BotToken,
			DefaultChannel: cfg.Tools.Slack.DefaultChannel,
		})
		agents["slack"] = slackagent.New(tool, opts)
	}
	if len(agents) == 0 {
		return nil, fmt.Errorf("no tools enabled in config")
	}

	a := &app{cfg: cfg, logger: logger, logLevel: logLevel, metrics: metrics, agents: agents}
	if cfg.Storage.Path != "" {
		store, err := history.Open(cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		a.history = store
	}
	return a, nil
}

func buildProvider(cfg *config.Config) (agent.CompletionClient, error) {
	switch cfg.Providers.Default {
	case "anthropic":
		return providers.NewAnthropicProvider(providers.AnthropicConfig{
			APIKey:    cfg.Providers.Anthropic.APIKey,
			Model:     cfg.Providers.Anthropic.Model,
			MaxTokens: cfg.Providers.Anthropic.MaxTokens,
		})
	default:
		return providers.NewOpenAIProvider(providers.OpenAIConfig{
			APIKey:  cfg.Providers.OpenAI.APIKey,
			Model:   cfg.Providers.OpenAI.Model,
			BaseURL: cfg.Providers.OpenAI.BaseURL,
		})
	}
}

// agentFor picks the agent by name, defaulting to the sole agent when only
// one is configured.
func (a *app) agentFor(name string) (*agent.Agent, error) {
	if name == "" {
		if len(a.agents) == 1 {
			for _, ag := range a.agents {
				return ag, nil
			}
		}
		return nil, fmt.Errorf("multiple agents configured, select one with --agent")
	}
	ag, ok := a.agents[name]
	if !ok {
		return nil, fmt.Errorf("unknown agent %q", name)
	}
	return ag, nil
}

// applyReload applies the reloadable subset of a changed config. Agent,
// provider, and storage wiring is fixed at startup; the log level takes
// effect immediately.
func (a *app) applyReload(cfg *config.Config) {
	a.logLevel.Set(observability.ParseLevel(cfg.Logging.Level))
}

func (a *app) close() {
	if a.history != nil {
		a.history.Close()
	}
}
