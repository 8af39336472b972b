package agent

import (
	"context"
	"reflect"
	"testing"
)

func TestMissingParams(t *testing.T) {
	action := ActionDescriptor{
		Name: "create_issue",
		Params: map[string]ParamSpec{
			"title":  {Type: "string", Required: true},
			"number": {Type: "number", Required: true},
			"body":   {Type: "string"},
		},
	}

	tests := []struct {
		name   string
		params map[string]any
		want   []string
	}{
		{
			name:   "all absent",
			params: map[string]any{},
			want:   []string{"number", "title"},
		},
		{
			name:   "nil map",
			params: nil,
			want:   []string{"number", "title"},
		},
		{
			name:   "explicit null is missing",
			params: map[string]any{"title": nil, "number": 1},
			want:   []string{"title"},
		},
		{
			name:   "empty string counts as present",
			params: map[string]any{"title": "", "number": 0},
			want:   nil,
		},
		{
			name:   "false counts as present",
			params: map[string]any{"title": false, "number": float64(0)},
			want:   nil,
		},
		{
			name:   "optional params never reported",
			params: map[string]any{"title": "x", "number": 1},
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MissingParams(action, tt.params)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MissingParams() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnhanceParams_LayerPriority(t *testing.T) {
	tool := &fakeTool{
		name:     "github",
		implicit: map[string]any{"owner": "parleyhq", "repo": "parley"},
	}

	explicit := map[string]any{"repo": "other", "number": 7}
	ambient := map[string]any{"owner": "someone-else", "requested_by": "alice"}

	got := EnhanceParams(tool, explicit, ambient)

	want := map[string]any{
		"number":       7,            // explicit
		"repo":         "other",      // explicit wins over implicit
		"owner":        "parleyhq",   // implicit wins over ambient
		"requested_by": "alice",      // ambient fills the rest
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("EnhanceParams() = %v, want %v", got, want)
	}

	if _, ok := explicit["owner"]; ok {
		t.Error("explicit map was mutated")
	}
}

func TestEnhanceParams_NonContextualTool(t *testing.T) {
	// plainTool does not implement ContextualTool at all.
	tool := plainTool{}

	got := EnhanceParams(tool, map[string]any{"a": 1}, map[string]any{"b": 2})
	want := map[string]any{"a": 1, "b": 2}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("EnhanceParams() = %v, want %v", got, want)
	}
}

func TestEnhanceParams_ExplicitNullIsNotFilled(t *testing.T) {
	tool := &fakeTool{name: "github", implicit: map[string]any{"owner": "parleyhq"}}

	got := EnhanceParams(tool, map[string]any{"owner": nil}, nil)
	if got["owner"] != nil {
		t.Errorf("explicit null was overwritten: %v", got["owner"])
	}
}

// plainTool is a minimal Tool without implicit context.
type plainTool struct{}

func (plainTool) Name() string                { return "plain" }
func (plainTool) Description() string         { return "plain tool" }
func (plainTool) Actions() []ActionDescriptor { return nil }
func (plainTool) Execute(ctx context.Context, action string, params map[string]any) (any, error) {
	return nil, nil
}
