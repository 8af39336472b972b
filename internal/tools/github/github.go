// Package github provides the GitHub tool: a typed wrapper around the
// GitHub REST API exposing issue and pull-request actions to agents.
package github

import (
	"context"
	"fmt"

	"github.com/parleyhq/parley/internal/agent"
)

// Config configures the GitHub tool.
type Config struct {
	// Token is the API token. Used only when no client is injected.
	Token string

	// BaseURL overrides the API endpoint (GitHub Enterprise). Empty
	// targets the public API.
	BaseURL string

	// Owner and Repo identify the default repository, contributed as
	// implicit context for invocations that omit them.
	Owner string
	Repo  string
}

// Tool exposes GitHub issue and pull-request actions to agents.
type Tool struct {
	api   API
	owner string
	repo  string
}

// New creates a GitHub tool from config.
func New(cfg Config) *Tool {
	return &Tool{
		api:   NewClient(cfg.Token, cfg.BaseURL),
		owner: cfg.Owner,
		repo:  cfg.Repo,
	}
}

// NewWithClient creates a GitHub tool with an injected API client.
func NewWithClient(api API, owner, repo string) *Tool {
	return &Tool{api: api, owner: owner, repo: repo}
}

// Name returns the tool identifier resolved from invocation tags.
func (t *Tool) Name() string { return "github" }

// Description returns a human description of the tool.
func (t *Tool) Description() string {
	return "Reads pull requests and manages issues in a GitHub repository"
}

// Actions returns the static action catalog.
func (t *Tool) Actions() []agent.ActionDescriptor {
	return []agent.ActionDescriptor{
		{
			Name:        "get_pull_request",
			Description: "Fetch a pull request with its summary stats",
			Params: map[string]agent.ParamSpec{
				"owner":  {Type: "string", Required: true, Description: "Repository owner"},
				"repo":   {Type: "string", Required: true, Description: "Repository name"},
				"number": {Type: "number", Required: true, Description: "Pull request number"},
			},
		},
		{
			Name:        "list_pull_request_files",
			Description: "List the files changed by a pull request",
			Params: map[string]agent.ParamSpec{
				"owner":  {Type: "string", Required: true, Description: "Repository owner"},
				"repo":   {Type: "string", Required: true, Description: "Repository name"},
				"number": {Type: "number", Required: true, Description: "Pull request number"},
			},
		},
		{
			Name:        "create_issue",
			Description: "Open a new issue",
			Params: map[string]agent.ParamSpec{
				"owner": {Type: "string", Required: true, Description: "Repository owner"},
				"repo":  {Type: "string", Required: true, Description: "Repository name"},
				"title": {Type: "string", Required: true, Description: "Issue title"},
				"body":  {Type: "string", Required: false, Description: "Issue body"},
			},
		},
		{
			Name:        "comment_issue",
			Description: "Comment on an issue or pull request",
			Params: map[string]agent.ParamSpec{
				"owner":  {Type: "string", Required: true, Description: "Repository owner"},
				"repo":   {Type: "string", Required: true, Description: "Repository name"},
				"number": {Type: "number", Required: true, Description: "Issue or pull request number"},
				"body":   {Type: "string", Required: true, Description: "Comment body"},
			},
		},
	}
}

// ImplicitContext contributes the configured default repository identity for
// invocations that omit it.
func (t *Tool) ImplicitContext() map[string]any {
	if t.owner == "" && t.repo == "" {
		return nil
	}
	ctx := map[string]any{}
	if t.owner != "" {
		ctx["owner"] = t.owner
	}
	if t.repo != "" {
		ctx["repo"] = t.repo
	}
	return ctx
}

// Execute runs the named action.
func (t *Tool) Execute(ctx context.Context, action string, params map[string]any) (any, error) {
	owner := stringParam(params, "owner")
	repo := stringParam(params, "repo")

	switch action {
	case "get_pull_request":
		return t.api.GetPullRequest(ctx, owner, repo, intParam(params, "number"))
	case "list_pull_request_files":
		return t.api.ListPullRequestFiles(ctx, owner, repo, intParam(params, "number"))
	case "create_issue":
		return t.api.CreateIssue(ctx, owner, repo, stringParam(params, "title"), stringParam(params, "body"))
	case "comment_issue":
		return t.api.CreateIssueComment(ctx, owner, repo, intParam(params, "number"), stringParam(params, "body"))
	default:
		return nil, fmt.Errorf("unknown action %q", action)
	}
}

func stringParam(params map[string]any, key string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return ""
}

// intParam accepts both JSON numbers and pre-parsed ints, since parameters
// arrive from decoded tags as float64 and from fast-path handlers as int.
func intParam(params map[string]any, key string) int {
	switch v := params[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}
