// Package slack provides the Slack tool: a typed wrapper around the Slack
// Web API exposing message and channel actions to agents.
package slack

import (
	"context"
	"fmt"
	"strings"

	"github.com/slack-go/slack"

	"github.com/parleyhq/parley/internal/agent"
)

// APIClient defines the Slack API operations used by the tool. The interface
// allows mock injection during testing.
type APIClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
	CreateConversationContext(ctx context.Context, params slack.CreateConversationParams) (*slack.Channel, error)
	GetConversationsContext(ctx context.Context, params *slack.GetConversationsParameters) ([]slack.Channel, string, error)
}

// Ensure slack.Client implements APIClient.
var _ APIClient = (*slack.Client)(nil)

// Config configures the Slack tool.
type Config struct {
	// BotToken is the bot OAuth token (xoxb-...). Used only when no
	// client is injected.
	BotToken string

	// DefaultChannel, when set, is contributed as implicit "channel"
	// context for invocations that omit it.
	DefaultChannel string
}

// Tool exposes Slack messaging actions to agents.
type Tool struct {
	api            APIClient
	defaultChannel string
}

// New creates a Slack tool from config.
func New(cfg Config) *Tool {
	return &Tool{
		api:            slack.New(cfg.BotToken),
		defaultChannel: cfg.DefaultChannel,
	}
}

// NewWithClient creates a Slack tool with an injected API client.
func NewWithClient(api APIClient, defaultChannel string) *Tool {
	return &Tool{api: api, defaultChannel: defaultChannel}
}

// Name returns the tool identifier resolved from invocation tags.
func (t *Tool) Name() string { return "slack" }

// Description returns a human description of the tool.
func (t *Tool) Description() string {
	return "Sends messages and manages channels in a Slack workspace"
}

// Actions returns the static action catalog.
func (t *Tool) Actions() []agent.ActionDescriptor {
	return []agent.ActionDescriptor{
		{
			Name:        "send_message",
			Description: "Post a message to a channel",
			Params: map[string]agent.ParamSpec{
				"channel": {Type: "string", Required: true, Description: "Channel name or ID"},
				"text":    {Type: "string", Required: true, Description: "Message text"},
			},
		},
		{
			Name:        "create_channel",
			Description: "Create a new public channel",
			Params: map[string]agent.ParamSpec{
				"name": {Type: "string", Required: true, Description: "Channel name"},
			},
		},
		{
			Name:        "list_channels",
			Description: "List channels in the workspace",
			Params: map[string]agent.ParamSpec{
				"limit": {Type: "number", Required: false, Default: 100, Description: "Maximum channels to return"},
			},
		},
	}
}

// ImplicitContext contributes the configured default channel for
// invocations that omit one.
func (t *Tool) ImplicitContext() map[string]any {
	if t.defaultChannel == "" {
		return nil
	}
	return map[string]any{"channel": t.defaultChannel}
}

// Execute runs the named action.
func (t *Tool) Execute(ctx context.Context, action string, params map[string]any) (any, error) {
	switch action {
	case "send_message":
		return t.sendMessage(ctx, params)
	case "create_channel":
		return t.createChannel(ctx, params)
	case "list_channels":
		return t.listChannels(ctx, params)
	default:
		return nil, fmt.Errorf("unknown action %q", action)
	}
}

func (t *Tool) sendMessage(ctx context.Context, params map[string]any) (any, error) {
	channel := stringParam(params, "channel")
	text := stringParam(params, "text")

	channelID, timestamp, err := t.api.PostMessageContext(ctx, normalizeChannel(channel), slack.MsgOptionText(text, false))
	if err != nil {
		return nil, fmt.Errorf("post message to %s: %w", channel, err)
	}
	return map[string]any{
		"channel":   channelID,
		"timestamp": timestamp,
	}, nil
}

func (t *Tool) createChannel(ctx context.Context, params map[string]any) (any, error) {
	name := normalizeChannel(stringParam(params, "name"))

	ch, err := t.api.CreateConversationContext(ctx, slack.CreateConversationParams{
		ChannelName: name,
	})
	if err != nil {
		return nil, fmt.Errorf("create channel %s: %w", name, err)
	}
	return map[string]any{
		"id":   ch.ID,
		"name": ch.Name,
	}, nil
}

func (t *Tool) listChannels(ctx context.Context, params map[string]any) (any, error) {
	limit := intParam(params, "limit", 100)

	channels, _, err := t.api.GetConversationsContext(ctx, &slack.GetConversationsParameters{
		Limit:           limit,
		ExcludeArchived: true,
	})
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}

	out := make([]map[string]any, 0, len(channels))
	for _, ch := range channels {
		out = append(out, map[string]any{
			"id":   ch.ID,
			"name": ch.Name,
		})
	}
	return out, nil
}

// normalizeChannel strips a leading "#" so both "#general" and "general"
// address the same channel.
func normalizeChannel(name string) string {
	return strings.TrimPrefix(strings.TrimSpace(name), "#")
}

func stringParam(params map[string]any, key string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return ""
}

func intParam(params map[string]any, key string, fallback int) int {
	switch v := params[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return fallback
	}
}
