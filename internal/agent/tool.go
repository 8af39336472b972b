package agent

import "context"

// Tool is the contract between the agent core and an external service
// wrapper. Implementations expose a static catalog of named actions and an
// executor for them. Tools may be shared by reference across agents; the
// catalog must not change after construction.
type Tool interface {
	// Name returns the configured tool identifier. Invocation tags are
	// resolved against it case-insensitively.
	Name() string

	// Description returns a natural language description of the tool.
	Description() string

	// Actions returns the ordered catalog of actions this tool supports.
	// Action names are unique within the catalog.
	Actions() []ActionDescriptor

	// Execute runs the named action with the given parameters. The params
	// have already passed required-field validation against the action's
	// declared schema. Execution failures are returned as errors and are
	// absorbed by the dispatcher, never propagated out of a query.
	Execute(ctx context.Context, action string, params map[string]any) (any, error)
}

// ContextualTool is implemented by tools that carry implicit parameter
// context, such as a default repository identity. The dispatcher merges the
// implicit context into invocation parameters without overwriting explicit
// values. This is an explicit capability interface: the core never probes
// tool values for methods at runtime.
type ContextualTool interface {
	Tool

	// ImplicitContext returns default parameter values contributed by the
	// tool's configuration.
	ImplicitContext() map[string]any
}

// ParamSpec describes a single parameter of an action.
type ParamSpec struct {
	// Type is the semantic type shown to the model ("string", "number",
	// "boolean", ...).
	Type string `json:"type"`

	// Required marks the parameter as mandatory for dispatch.
	Required bool `json:"required"`

	// Default is an optional default value, rendered into the prompt.
	Default any `json:"default,omitempty"`

	// Description explains the parameter to the model.
	Description string `json:"description,omitempty"`
}

// ActionDescriptor describes one named operation on a tool.
type ActionDescriptor struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Params      map[string]ParamSpec `json:"params,omitempty"`
}

// Action looks up an action descriptor by name in a tool's catalog.
func Action(t Tool, name string) (ActionDescriptor, bool) {
	for _, a := range t.Actions() {
		if a.Name == name {
			return a, true
		}
	}
	return ActionDescriptor{}, false
}
