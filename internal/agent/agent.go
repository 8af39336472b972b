// Package agent implements the tool-invocation protocol at the heart of
// parley: the fast-path intent matcher, the tag grammar embedded in model
// output, and the extraction, validation, enhancement, dispatch, and
// response-rewriting pipeline that turns tagged text into executed actions.
package agent

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/parleyhq/parley/internal/observability"
	"github.com/parleyhq/parley/pkg/models"
)

// CompletionClient is the model-completion collaborator consumed by the
// generic protocol. Generate returns the primary completion choice for the
// prompt. It is never called when a fast-path intent matches.
type CompletionClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Options configures an Agent.
type Options struct {
	// Name identifies the agent in outcomes, logs, and metrics.
	Name string

	// Description is a human description of the agent's purpose.
	Description string

	// Registry is the agent's tool registry. A nil registry is replaced
	// with an empty one.
	Registry *Registry

	// Intents is the ordered fast-path rule list, evaluated before any
	// model call.
	Intents []Intent

	// Client is the model-completion collaborator. Queries that miss the
	// fast path fail with ErrNoCompletionClient when it is nil.
	Client CompletionClient

	// Logger receives structured pipeline logs. Defaults to slog.Default.
	Logger *slog.Logger

	// Metrics records pipeline counters. Optional.
	Metrics *observability.Metrics

	// ToolTimeout bounds each tool action execution. Zero disables the
	// bound.
	ToolTimeout time.Duration

	// ModelTimeout bounds the model-completion call. Zero disables the
	// bound.
	ModelTimeout time.Duration
}

// Agent turns a natural-language query into a response, optionally through
// tool execution. Queries are processed independently; the only shared
// mutable state is the tool registry, which guards its own mutation.
type Agent struct {
	name         string
	description  string
	registry     *Registry
	intents      []Intent
	client       CompletionClient
	logger       *slog.Logger
	metrics      *observability.Metrics
	toolTimeout  time.Duration
	modelTimeout time.Duration
}

// New creates an agent from options.
func New(opts Options) *Agent {
	if opts.Registry == nil {
		opts.Registry = NewRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Agent{
		name:         opts.Name,
		description:  opts.Description,
		registry:     opts.Registry,
		intents:      opts.Intents,
		client:       opts.Client,
		logger:       opts.Logger.With("agent", opts.Name),
		metrics:      opts.Metrics,
		toolTimeout:  opts.ToolTimeout,
		modelTimeout: opts.ModelTimeout,
	}
}

// Name returns the agent's name.
func (a *Agent) Name() string { return a.name }

// Description returns the agent's description.
func (a *Agent) Description() string { return a.description }

// Registry returns the agent's tool registry for register/deregister calls.
func (a *Agent) Registry() *Registry { return a.registry }

// ProcessQuery answers one query. The fast path is tried first: the ordered
// intent list is matched case-insensitively against the query and the first
// match calls its tool directly, bypassing the model. Otherwise the tool
// catalog is rendered into a prompt, the model completion is requested, and
// every embedded invocation tag is validated, enhanced, dispatched in
// textual order, and rewritten into the response.
//
// An outcome is always produced under partial failure; only a failure to
// obtain a model completion at all returns an error.
func (a *Agent) ProcessQuery(ctx context.Context, query string, queryCtx map[string]any) (*models.QueryOutcome, error) {
	id := uuid.NewString()
	log := a.logger.With("query_id", id)
	start := time.Now()

	if intent, match, ok := matchIntent(a.intents, query); ok {
		log.Info("fast-path intent matched", "intent", intent.Name)
		outcome, err := a.runFastPath(ctx, intent, match, log)
		if err != nil {
			a.metrics.QueryProcessed(a.name, "error", time.Since(start))
			return nil, err
		}
		outcome.ID = id
		outcome.Agent = a.name
		outcome.CreatedAt = time.Now()
		a.metrics.QueryProcessed(a.name, "fastpath", time.Since(start))
		return outcome, nil
	}

	if a.client == nil {
		a.metrics.QueryProcessed(a.name, "error", time.Since(start))
		return nil, &ModelCompletionError{Err: ErrNoCompletionClient}
	}

	prompt := BuildPrompt(query, a.registry.Tools())
	completion, err := a.generate(ctx, prompt)
	if err != nil {
		log.Error("model completion failed", "error", err)
		a.metrics.QueryProcessed(a.name, "error", time.Since(start))
		return nil, &ModelCompletionError{Err: err}
	}

	invs := ExtractInvocations(completion)
	log.Debug("invocations extracted", "count", len(invs))

	outcomes, results := a.dispatchAll(ctx, invs, queryCtx)
	outcome := &models.QueryOutcome{
		ID:          id,
		Agent:       a.name,
		Response:    rewriteResponse(completion, outcomes),
		ToolResults: results,
		CreatedAt:   time.Now(),
	}
	a.metrics.QueryProcessed(a.name, "model", time.Since(start))
	return outcome, nil
}

// runFastPath executes a matched intent. A tool failure on the fast path has
// no further fallback, so it is surfaced as a degraded textual response
// rather than an error. The query fails outright only when the intent blows
// its per-call deadline.
func (a *Agent) runFastPath(ctx context.Context, intent Intent, match []string, log *slog.Logger) (*models.QueryOutcome, error) {
	handlerCtx := ctx
	if a.toolTimeout > 0 {
		var cancel context.CancelFunc
		handlerCtx, cancel = context.WithTimeout(ctx, a.toolTimeout)
		defer cancel()
	}

	response, results, err := intent.Handle(handlerCtx, match)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			log.Error("fast-path execution timed out", "intent", intent.Name)
			return nil, &FastPathError{Intent: intent.Name, Err: ErrToolTimeout}
		}
		fpErr := &FastPathError{Intent: intent.Name, Err: err}
		log.Warn("fast-path execution failed", "intent", intent.Name, "error", err)
		return &models.QueryOutcome{
			FastPath: true,
			Response: "Sorry, I couldn't complete that: " + err.Error(),
			ToolResults: map[string]models.ExecutionResult{
				intent.Name: {Success: false, Error: fpErr.Error()},
			},
		}, nil
	}
	return &models.QueryOutcome{
		FastPath:    true,
		Response:    response,
		ToolResults: results,
	}, nil
}

// generate calls the model-completion collaborator under the configured
// timeout.
func (a *Agent) generate(ctx context.Context, prompt string) (string, error) {
	if a.modelTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.modelTimeout)
		defer cancel()
	}
	start := time.Now()
	text, err := a.client.Generate(ctx, prompt)
	a.metrics.ModelCompletion(a.name, time.Since(start), err == nil)
	return text, err
}
