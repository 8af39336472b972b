// Package slack assembles the Slack agent: the Slack tool, the fast-path
// intents for common messaging requests, and their report templates.
package slack

import (
	"context"
	"fmt"

	"github.com/parleyhq/parley/internal/agent"
	slacktool "github.com/parleyhq/parley/internal/tools/slack"
	"github.com/parleyhq/parley/pkg/models"
)

// New builds the Slack agent around the given tool.
func New(tool *slacktool.Tool, opts agent.Options) *agent.Agent {
	opts.Name = "slack"
	opts.Description = "Sends messages and manages channels on Slack"
	opts.Registry = agent.NewRegistry(tool)
	opts.Intents = intents(tool)
	return agent.New(opts)
}

func intents(tool *slacktool.Tool) []agent.Intent {
	return []agent.Intent{
		agent.MustIntent(
			"send_message",
			`^\s*send\s+a\s+message\s+to\s+#?([\w-]+)\s+saying\s+(.+?)\s*$`,
			func(ctx context.Context, match []string) (string, map[string]models.ExecutionResult, error) {
				return sendMessage(ctx, tool, match[1], match[2])
			},
		),
		agent.MustIntent(
			"create_channel",
			`^\s*create\s+a\s+channel\s+(?:called|named)\s+#?([\w-]+)\s*$`,
			func(ctx context.Context, match []string) (string, map[string]models.ExecutionResult, error) {
				return createChannel(ctx, tool, match[1])
			},
		),
	}
}

func sendMessage(ctx context.Context, tool *slacktool.Tool, channel, text string) (string, map[string]models.ExecutionResult, error) {
	data, err := tool.Execute(ctx, "send_message", map[string]any{
		"channel": channel,
		"text":    text,
	})
	if err != nil {
		return "", nil, err
	}

	results := map[string]models.ExecutionResult{
		models.ResultKey("slack", "send_message"): {Success: true, Data: data},
	}
	return fmt.Sprintf("Message sent to #%s: %s", channel, text), results, nil
}

func createChannel(ctx context.Context, tool *slacktool.Tool, name string) (string, map[string]models.ExecutionResult, error) {
	data, err := tool.Execute(ctx, "create_channel", map[string]any{"name": name})
	if err != nil {
		return "", nil, err
	}

	results := map[string]models.ExecutionResult{
		models.ResultKey("slack", "create_channel"): {Success: true, Data: data},
	}
	return fmt.Sprintf("Channel #%s created.", name), results, nil
}
