package agent

import "sort"

// MissingParams returns the names of every schema-required parameter absent
// from params, in lexical order. A key counts as missing only when it is
// absent or explicitly null; an empty string, zero, or false is present.
func MissingParams(action ActionDescriptor, params map[string]any) []string {
	var missing []string
	for name, spec := range action.Params {
		if !spec.Required {
			continue
		}
		if v, ok := params[name]; !ok || v == nil {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

// EnhanceParams produces the final parameter object used for execution by
// merging three layers, highest priority first:
//
//  1. parameters explicitly present in the tag — never overwritten;
//  2. the resolved tool's implicit context, when it declares one;
//  3. ambient parameters supplied by the caller for this query.
//
// Each layer fills only keys absent from higher layers. The explicit map is
// not mutated.
func EnhanceParams(tool Tool, explicit, ambient map[string]any) map[string]any {
	merged := make(map[string]any, len(explicit))
	for k, v := range explicit {
		merged[k] = v
	}
	if ct, ok := tool.(ContextualTool); ok {
		fillAbsent(merged, ct.ImplicitContext())
	}
	fillAbsent(merged, ambient)
	return merged
}

func fillAbsent(dst map[string]any, src map[string]any) {
	for k, v := range src {
		if _, ok := dst[k]; !ok {
			dst[k] = v
		}
	}
}
