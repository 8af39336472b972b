// Package github assembles the GitHub agent: the GitHub tool, the fast-path
// intents for common pull-request requests, and their report templates.
package github

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/parleyhq/parley/internal/agent"
	ghtool "github.com/parleyhq/parley/internal/tools/github"
	"github.com/parleyhq/parley/pkg/models"
)

// New builds the GitHub agent around the given tool. The intent list is
// ordered and matched first-match-wins before any model call; unmatched
// queries fall through to the generic tag protocol with the tool registered.
func New(tool *ghtool.Tool, opts agent.Options) *agent.Agent {
	opts.Name = "github"
	opts.Description = "Answers questions about pull requests and issues"
	opts.Registry = agent.NewRegistry(tool)
	opts.Intents = intents(tool)
	return agent.New(opts)
}

func intents(tool *ghtool.Tool) []agent.Intent {
	return []agent.Intent{
		agent.MustIntent(
			"summarize_pull_request",
			`^\s*summari[sz]e\s+(?:pull\s+request|pr)\s+#?(\d+)\s*$`,
			func(ctx context.Context, match []string) (string, map[string]models.ExecutionResult, error) {
				return summarizePullRequest(ctx, tool, match[1])
			},
		),
		agent.MustIntent(
			"review_pull_request",
			`^\s*review\s+(?:pull\s+request|pr)\s+#?(\d+)\s*$`,
			func(ctx context.Context, match []string) (string, map[string]models.ExecutionResult, error) {
				return reviewPullRequest(ctx, tool, match[1])
			},
		),
	}
}

func summarizePullRequest(ctx context.Context, tool *ghtool.Tool, rawNumber string) (string, map[string]models.ExecutionResult, error) {
	number, _ := strconv.Atoi(rawNumber)

	// The intent captures only the PR number; the configured repo identity
	// comes from the tool's implicit context, same as on the tag path.
	params := agent.EnhanceParams(tool, map[string]any{"number": number}, nil)
	data, err := tool.Execute(ctx, "get_pull_request", params)
	if err != nil {
		return "", nil, err
	}
	pr, ok := data.(*ghtool.PullRequest)
	if !ok {
		return "", nil, fmt.Errorf("unexpected result type %T", data)
	}

	results := map[string]models.ExecutionResult{
		models.ResultKey("github", "get_pull_request"): {Success: true, Data: pr},
	}
	return renderSummary(pr), results, nil
}

func reviewPullRequest(ctx context.Context, tool *ghtool.Tool, rawNumber string) (string, map[string]models.ExecutionResult, error) {
	number, _ := strconv.Atoi(rawNumber)
	params := agent.EnhanceParams(tool, map[string]any{"number": number}, nil)

	data, err := tool.Execute(ctx, "get_pull_request", params)
	if err != nil {
		return "", nil, err
	}
	pr, ok := data.(*ghtool.PullRequest)
	if !ok {
		return "", nil, fmt.Errorf("unexpected result type %T", data)
	}

	filesData, err := tool.Execute(ctx, "list_pull_request_files", params)
	if err != nil {
		return "", nil, err
	}
	files, ok := filesData.([]ghtool.PullRequestFile)
	if !ok {
		return "", nil, fmt.Errorf("unexpected result type %T", filesData)
	}

	results := map[string]models.ExecutionResult{
		models.ResultKey("github", "get_pull_request"):        {Success: true, Data: pr},
		models.ResultKey("github", "list_pull_request_files"): {Success: true, Data: files},
	}
	return renderReview(pr, files), results, nil
}

func renderSummary(pr *ghtool.PullRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Pull request #%d: %s\n", pr.Number, pr.Title)
	fmt.Fprintf(&b, "Author: %s | State: %s\n", pr.User.Login, pr.State)
	fmt.Fprintf(&b, "Branch: %s -> %s\n", pr.Head.Ref, pr.Base.Ref)
	fmt.Fprintf(&b, "Changes: %d files, +%d/-%d\n", pr.Changed, pr.Additions, pr.Deletions)
	if body := strings.TrimSpace(pr.Body); body != "" {
		fmt.Fprintf(&b, "\n%s\n", body)
	}
	if pr.HTMLURL != "" {
		fmt.Fprintf(&b, "\n%s\n", pr.HTMLURL)
	}
	return b.String()
}

func renderReview(pr *ghtool.PullRequest, files []ghtool.PullRequestFile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Review of pull request #%d: %s\n", pr.Number, pr.Title)
	fmt.Fprintf(&b, "Author: %s | %d files changed, +%d/-%d\n\n", pr.User.Login, pr.Changed, pr.Additions, pr.Deletions)
	b.WriteString("Changed files:\n")
	for _, f := range files {
		fmt.Fprintf(&b, "- %s (%s, +%d/-%d)\n", f.Filename, f.Status, f.Additions, f.Deletions)
	}
	return b.String()
}
