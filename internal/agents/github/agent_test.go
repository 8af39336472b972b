package github

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/parleyhq/parley/internal/agent"
	ghtool "github.com/parleyhq/parley/internal/tools/github"
)

type fakeAPI struct {
	pr      *ghtool.PullRequest
	files   []ghtool.PullRequestFile
	err     error
	prCalls int

	owner string
	repo  string
}

func (f *fakeAPI) GetPullRequest(ctx context.Context, owner, repo string, number int) (*ghtool.PullRequest, error) {
	f.prCalls++
	f.owner, f.repo = owner, repo
	if f.err != nil {
		return nil, f.err
	}
	return f.pr, nil
}

func (f *fakeAPI) ListPullRequestFiles(ctx context.Context, owner, repo string, number int) ([]ghtool.PullRequestFile, error) {
	f.owner, f.repo = owner, repo
	if f.err != nil {
		return nil, f.err
	}
	return f.files, nil
}

func (f *fakeAPI) CreateIssue(ctx context.Context, owner, repo, title, body string) (*ghtool.Issue, error) {
	return &ghtool.Issue{Number: 1, Title: title}, nil
}

func (f *fakeAPI) CreateIssueComment(ctx context.Context, owner, repo string, number int, body string) (*ghtool.IssueComment, error) {
	return &ghtool.IssueComment{ID: 1}, nil
}

// failingClient fails every completion; queries reaching it indicate a
// fast-path miss.
type failingClient struct{}

func (failingClient) Generate(ctx context.Context, prompt string) (string, error) {
	return "", errors.New("model should not be reached")
}

func testPR() *ghtool.PullRequest {
	return &ghtool.PullRequest{
		Number:    42,
		Title:     "Add retry logic",
		Body:      "Retries transient provider failures.",
		State:     "open",
		User:      ghtool.User{Login: "alice"},
		Head:      ghtool.Ref{Ref: "feature/retries"},
		Base:      ghtool.Ref{Ref: "main"},
		Additions: 120,
		Deletions: 8,
		Changed:   3,
	}
}

func newTestAgent(api *fakeAPI) *agent.Agent {
	tool := ghtool.NewWithClient(api, "parleyhq", "parley")
	return New(tool, agent.Options{Client: failingClient{}})
}

func TestSummarizeIntent_Phrasings(t *testing.T) {
	for _, query := range []string{
		"summarize pull request #42",
		"summarize pr 42",
		"Summarise PR #42",
		"  summarize pr #42  ",
	} {
		api := &fakeAPI{pr: testPR()}
		outcome, err := newTestAgent(api).ProcessQuery(context.Background(), query, nil)
		if err != nil {
			t.Fatalf("%q: %v", query, err)
		}
		if !outcome.FastPath {
			t.Errorf("%q did not take the fast path", query)
		}
		if api.prCalls != 1 {
			t.Errorf("%q: expected one PR fetch, got %d", query, api.prCalls)
		}
	}
}

func TestSummarizeIntent_Report(t *testing.T) {
	api := &fakeAPI{pr: testPR()}
	outcome, err := newTestAgent(api).ProcessQuery(context.Background(), "summarize pr #42", nil)
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		"Pull request #42: Add retry logic",
		"Author: alice | State: open",
		"feature/retries -> main",
		"3 files, +120/-8",
		"Retries transient provider failures.",
	} {
		if !strings.Contains(outcome.Response, want) {
			t.Errorf("report missing %q:\n%s", want, outcome.Response)
		}
	}

	if r, ok := outcome.ToolResults["github_get_pull_request"]; !ok || !r.Success {
		t.Errorf("result map not populated: %v", outcome.ToolResults)
	}
}

func TestReviewIntent_Report(t *testing.T) {
	api := &fakeAPI{
		pr: testPR(),
		files: []ghtool.PullRequestFile{
			{Filename: "internal/providers/openai.go", Status: "modified", Additions: 100, Deletions: 5},
			{Filename: "internal/providers/openai_test.go", Status: "added", Additions: 20, Deletions: 3},
		},
	}
	outcome, err := newTestAgent(api).ProcessQuery(context.Background(), "review pr #42", nil)
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		"Review of pull request #42",
		"- internal/providers/openai.go (modified, +100/-5)",
		"- internal/providers/openai_test.go (added, +20/-3)",
	} {
		if !strings.Contains(outcome.Response, want) {
			t.Errorf("report missing %q:\n%s", want, outcome.Response)
		}
	}

	if len(outcome.ToolResults) != 2 {
		t.Errorf("expected results for fetch and files, got %v", outcome.ToolResults)
	}
}

func TestIntents_ApplyDefaultRepoIdentity(t *testing.T) {
	for _, query := range []string{"summarize pr #42", "review pr #42"} {
		api := &fakeAPI{pr: testPR()}
		if _, err := newTestAgent(api).ProcessQuery(context.Background(), query, nil); err != nil {
			t.Fatalf("%q: %v", query, err)
		}
		if api.owner != "parleyhq" || api.repo != "parley" {
			t.Errorf("%q: configured repo identity not applied: owner=%q repo=%q",
				query, api.owner, api.repo)
		}
	}
}

func TestIntentFailure_DegradesGracefully(t *testing.T) {
	api := &fakeAPI{err: errors.New("API rate limit exceeded")}
	outcome, err := newTestAgent(api).ProcessQuery(context.Background(), "summarize pr #42", nil)
	if err != nil {
		t.Fatalf("fast-path failure must not propagate: %v", err)
	}
	if !strings.Contains(outcome.Response, "API rate limit exceeded") {
		t.Errorf("failure detail missing from degraded response: %q", outcome.Response)
	}
}

func TestUnmatchedPhrasingFallsThrough(t *testing.T) {
	api := &fakeAPI{pr: testPR()}
	_, err := newTestAgent(api).ProcessQuery(context.Background(), "what changed in PR 42 recently?", nil)
	if err == nil {
		t.Fatal("expected the failing model client to be reached")
	}
	if api.prCalls != 0 {
		t.Error("tool executed without an intent match")
	}
}
