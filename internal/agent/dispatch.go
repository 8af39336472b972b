package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/parleyhq/parley/pkg/models"
)

// tagOutcome pairs an extracted invocation with the marker that replaces its
// span in the rewritten response.
type tagOutcome struct {
	inv    Invocation
	marker string
}

// dispatchAll validates, enhances, and executes every invocation in strict
// textual order, never concurrently: later tags may depend on side effects
// of earlier ones. Every per-tag failure is absorbed into an inline marker;
// nothing propagates out. Successful results are recorded in the returned
// map under models.ResultKey(tool, action); a repeated tool+action pair
// within one completion overwrites the earlier entry.
func (a *Agent) dispatchAll(ctx context.Context, invs []Invocation, ambient map[string]any) ([]tagOutcome, map[string]models.ExecutionResult) {
	outcomes := make([]tagOutcome, 0, len(invs))
	results := make(map[string]models.ExecutionResult)

	for _, inv := range invs {
		outcomes = append(outcomes, tagOutcome{
			inv:    inv,
			marker: a.dispatchOne(ctx, inv, ambient, results),
		})
	}
	return outcomes, results
}

// dispatchOne resolves and executes a single invocation, returning its
// inline marker and recording its execution result when the tool ran.
func (a *Agent) dispatchOne(ctx context.Context, inv Invocation, ambient map[string]any, results map[string]models.ExecutionResult) string {
	if inv.Err != nil {
		a.metrics.TagOutcome(a.name, "malformed")
		return fmt.Sprintf("[invalid tool call: %v]", inv.Err)
	}

	tool, ok := a.registry.Resolve(inv.ToolToken)
	if !ok {
		a.logger.Warn("unknown tool in invocation", "tool", inv.ToolToken, "action", inv.Action)
		a.metrics.TagOutcome(a.name, "unknown_tool")
		return fmt.Sprintf("[tool %q not found]", inv.ToolToken)
	}

	action, ok := Action(tool, inv.Action)
	if !ok {
		a.metrics.TagOutcome(a.name, "unknown_action")
		return fmt.Sprintf("[tool %q has no action %q]", tool.Name(), inv.Action)
	}

	params := EnhanceParams(tool, inv.Params, ambient)
	if missing := MissingParams(action, params); len(missing) > 0 {
		err := &MissingParamsError{Tool: tool.Name(), Action: action.Name, Missing: missing}
		a.metrics.TagOutcome(a.name, "missing_params")
		return fmt.Sprintf("[tool call failed: %v]", err)
	}

	key := models.ResultKey(tool.Name(), action.Name)
	data, err := a.executeTool(ctx, tool, action.Name, params)
	if err != nil {
		execErr := &ToolExecutionError{Tool: tool.Name(), Action: action.Name, Err: err}
		results[key] = models.ExecutionResult{Success: false, Error: err.Error()}
		a.logger.Warn("tool execution failed", "tool", tool.Name(), "action", action.Name, "error", err)
		a.metrics.TagOutcome(a.name, "execution_error")
		return fmt.Sprintf("[tool call failed: %v]", execErr)
	}

	results[key] = models.ExecutionResult{Success: true, Data: data}
	a.metrics.TagOutcome(a.name, "success")
	return fmt.Sprintf("[tool executed: %s]", key)
}

// executeTool runs one action under the agent's per-call timeout. A timeout
// is a recoverable per-tag error, reported like any other execution failure.
func (a *Agent) executeTool(ctx context.Context, tool Tool, action string, params map[string]any) (any, error) {
	if a.toolTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.toolTimeout)
		defer cancel()
	}
	start := time.Now()
	data, err := tool.Execute(ctx, action, params)
	a.metrics.ToolExecution(tool.Name(), action, time.Since(start), err == nil)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = ErrToolTimeout
		}
		return nil, err
	}
	return data, nil
}

// rewriteResponse replaces every tag span with its outcome marker in a
// single pass. The function is total: every invocation produced by
// extraction has a marker, so the returned text contains no residual tag
// syntax regardless of how many tags failed.
func rewriteResponse(text string, outcomes []tagOutcome) string {
	if len(outcomes) == 0 {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	pos := 0
	for _, o := range outcomes {
		b.WriteString(text[pos:o.inv.Span.Start])
		b.WriteString(o.marker)
		pos = o.inv.Span.End
	}
	b.WriteString(text[pos:])
	return b.String()
}
