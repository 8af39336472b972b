package slack

import (
	"context"
	"errors"
	"testing"

	"github.com/slack-go/slack"
)

type mockAPI struct {
	postChannel string
	postErr     error

	createdName string
	createErr   error

	listLimit int
	channels  []slack.Channel
	listErr   error
}

func (m *mockAPI) PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error) {
	m.postChannel = channelID
	if m.postErr != nil {
		return "", "", m.postErr
	}
	return channelID, "1724500000.000100", nil
}

func (m *mockAPI) CreateConversationContext(ctx context.Context, params slack.CreateConversationParams) (*slack.Channel, error) {
	m.createdName = params.ChannelName
	if m.createErr != nil {
		return nil, m.createErr
	}
	ch := &slack.Channel{}
	ch.ID = "C123"
	ch.Name = params.ChannelName
	return ch, nil
}

func (m *mockAPI) GetConversationsContext(ctx context.Context, params *slack.GetConversationsParameters) ([]slack.Channel, string, error) {
	m.listLimit = params.Limit
	if m.listErr != nil {
		return nil, "", m.listErr
	}
	return m.channels, "", nil
}

func TestSendMessage_NormalizesChannel(t *testing.T) {
	api := &mockAPI{}
	tool := NewWithClient(api, "")

	data, err := tool.Execute(context.Background(), "send_message", map[string]any{
		"channel": "#general",
		"text":    "hello",
	})
	if err != nil {
		t.Fatal(err)
	}
	if api.postChannel != "general" {
		t.Errorf("leading # not stripped: %q", api.postChannel)
	}
	out, ok := data.(map[string]any)
	if !ok || out["timestamp"] == "" {
		t.Errorf("unexpected result shape: %v", data)
	}
}

func TestSendMessage_APIErrorWrapped(t *testing.T) {
	sentinel := errors.New("channel_not_found")
	tool := NewWithClient(&mockAPI{postErr: sentinel}, "")

	_, err := tool.Execute(context.Background(), "send_message", map[string]any{
		"channel": "general",
		"text":    "hello",
	})
	if !errors.Is(err, sentinel) {
		t.Errorf("API error not wrapped: %v", err)
	}
}

func TestCreateChannel(t *testing.T) {
	api := &mockAPI{}
	tool := NewWithClient(api, "")

	data, err := tool.Execute(context.Background(), "create_channel", map[string]any{
		"name": "#deploys",
	})
	if err != nil {
		t.Fatal(err)
	}
	if api.createdName != "deploys" {
		t.Errorf("channel name not normalized: %q", api.createdName)
	}
	out := data.(map[string]any)
	if out["id"] != "C123" || out["name"] != "deploys" {
		t.Errorf("unexpected result: %v", out)
	}
}

func TestListChannels_LimitHandling(t *testing.T) {
	mk := func(id, name string) slack.Channel {
		var ch slack.Channel
		ch.ID = id
		ch.Name = name
		return ch
	}
	api := &mockAPI{channels: []slack.Channel{mk("C1", "general"), mk("C2", "random")}}
	tool := NewWithClient(api, "")

	// Tag-decoded numbers arrive as float64.
	data, err := tool.Execute(context.Background(), "list_channels", map[string]any{"limit": float64(5)})
	if err != nil {
		t.Fatal(err)
	}
	if api.listLimit != 5 {
		t.Errorf("limit not applied: %d", api.listLimit)
	}
	out := data.([]map[string]any)
	if len(out) != 2 || out[0]["name"] != "general" {
		t.Errorf("unexpected channel list: %v", out)
	}

	// Missing limit falls back to the default.
	if _, err := tool.Execute(context.Background(), "list_channels", map[string]any{}); err != nil {
		t.Fatal(err)
	}
	if api.listLimit != 100 {
		t.Errorf("default limit not applied: %d", api.listLimit)
	}
}

func TestImplicitContext(t *testing.T) {
	if got := NewWithClient(&mockAPI{}, "").ImplicitContext(); got != nil {
		t.Errorf("expected nil implicit context without default channel, got %v", got)
	}

	tool := NewWithClient(&mockAPI{}, "engineering")
	got := tool.ImplicitContext()
	if got["channel"] != "engineering" {
		t.Errorf("default channel not contributed: %v", got)
	}
}

func TestExecute_UnknownAction(t *testing.T) {
	tool := NewWithClient(&mockAPI{}, "")
	if _, err := tool.Execute(context.Background(), "delete_workspace", nil); err == nil {
		t.Error("unknown action must fail")
	}
}
