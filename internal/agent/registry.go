package agent

import (
	"strings"
	"sync"
)

// Registry is a per-agent keyed container of tools with thread-safe
// registration and lookup. Tools are held in registration order so that
// prompt rendering is deterministic. Mutation is safe to perform
// concurrently with in-flight lookups: a lookup sees a tool fully or not at
// all.
type Registry struct {
	mu    sync.RWMutex
	tools []Tool
}

// NewRegistry creates a new empty tool registry.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{}
	for _, t := range tools {
		r.Register(t)
	}
	return r
}

// Register adds a tool to the registry. A tool whose name matches an
// existing entry case-insensitively replaces it in place.
func (r *Registry) Register(tool Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, t := range r.tools {
		if strings.EqualFold(t.Name(), tool.Name()) {
			r.tools[i] = tool
			return
		}
	}
	r.tools = append(r.tools, tool)
}

// Deregister removes a tool by name, matched case-insensitively.
func (r *Registry) Deregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, t := range r.tools {
		if strings.EqualFold(t.Name(), name) {
			r.tools = append(r.tools[:i], r.tools[i+1:]...)
			return
		}
	}
}

// Resolve matches an invocation tool token against the registered tools.
// An optional trailing case-insensitive "tool" suffix is stripped from the
// token before comparison, and the comparison itself is a case-insensitive
// exact match on each tool's configured Name rather than a map-key lookup.
func (r *Registry) Resolve(token string) (Tool, bool) {
	name := NormalizeToolToken(token)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.tools {
		if strings.EqualFold(t.Name(), name) {
			return t, true
		}
	}
	return nil, false
}

// Tools returns a snapshot of the registered tools in registration order.
func (r *Registry) Tools() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, len(r.tools))
	copy(out, r.tools)
	return out
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// NormalizeToolToken strips an optional trailing case-insensitive "tool"
// suffix from an invocation token. "GitHubTool" and "github" both resolve a
// tool named "github". A token that is exactly "tool" is left unchanged.
func NormalizeToolToken(token string) string {
	token = strings.TrimSpace(token)
	if len(token) > 4 && strings.EqualFold(token[len(token)-4:], "tool") {
		return token[:len(token)-4]
	}
	return token
}
