package models

import "time"

// ExecutionResult captures the outcome of a single tool action execution.
type ExecutionResult struct {
	// Success indicates the action completed without error.
	Success bool `json:"success"`

	// Data is the payload returned by the tool on success.
	Data any `json:"data,omitempty"`

	// Error holds the failure message when Success is false.
	Error string `json:"error,omitempty"`
}

// ResultKey builds the composite key under which an execution result is
// stored: "<toolName>_<actionName>". Repeated invocations of the same
// tool+action pair within one completion overwrite the previous entry under
// this key; callers that need every result must inspect the rewritten
// response text instead.
func ResultKey(tool, action string) string {
	return tool + "_" + action
}

// QueryOutcome is the final product of processing one query: the rewritten
// response text plus the keyed map of tool execution results. It is always
// produced, even when individual tool invocations failed.
type QueryOutcome struct {
	// ID is the unique identifier assigned to the query.
	ID string `json:"id"`

	// Agent is the name of the agent that handled the query.
	Agent string `json:"agent"`

	// FastPath indicates the query was answered by a matched intent
	// without a model completion.
	FastPath bool `json:"fast_path"`

	// Response is the final text with every invocation tag replaced by
	// its outcome marker.
	Response string `json:"response"`

	// ToolResults maps composite result keys to execution results, in
	// first-occurrence textual order of the underlying invocations.
	ToolResults map[string]ExecutionResult `json:"tool_results,omitempty"`

	// CreatedAt records when processing finished.
	CreatedAt time.Time `json:"created_at"`
}
