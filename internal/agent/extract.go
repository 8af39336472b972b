package agent

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TagMarker opens an embedded tool invocation inside model output. The full
// grammar is:
//
//	[TOOL_ACTION:<tool_token>:<action_name>:<json_object>]
//
// The tool token and action name contain no colons; the parameter object is
// a JSON object literal. Tags never nest.
const TagMarker = "[TOOL_ACTION:"

// Span marks the half-open byte range [Start, End) a tag occupied in the
// scanned text.
type Span struct {
	Start int
	End   int
}

// Invocation is one parsed tool-invocation tag. Spans of the invocations
// returned by ExtractInvocations are non-overlapping and ordered by first
// occurrence. A tag whose parameter text is not a valid JSON object carries
// a non-nil Err and nil Params; it must not be dispatched, but its span is
// still rewritten.
type Invocation struct {
	// ToolToken is the raw tool token from the tag, before suffix
	// stripping and registry resolution.
	ToolToken string

	// Action is the action name from the tag.
	Action string

	// Params is the decoded parameter object, nil when Err is set.
	Params map[string]any

	// Span is the exact text range the tag occupied.
	Span Span

	// Err is set for malformed invocations (invalid parameter JSON).
	Err error
}

// ExtractInvocations scans text in a single left-to-right pass and returns
// every embedded invocation tag in order. Malformed tags are returned with
// Err set and the scan continues past them; they never abort extraction of
// subsequent tags.
func ExtractInvocations(text string) []Invocation {
	var invs []Invocation
	pos := 0
	for {
		rel := strings.Index(text[pos:], TagMarker)
		if rel < 0 {
			return invs
		}
		start := pos + rel
		inv, next, ok := scanTag(text, start)
		if !ok {
			// Not a tag at all (missing separators or closing
			// delimiter). Resume after the marker so a later
			// marker is still found.
			pos = start + len(TagMarker)
			continue
		}
		invs = append(invs, inv)
		pos = next
	}
}

// scanTag parses one tag beginning at start (which points at TagMarker).
// It returns the invocation, the scan resume position, and whether the text
// at start forms a tag at all.
func scanTag(text string, start int) (Invocation, int, bool) {
	p := start + len(TagMarker)

	tool, p, ok := scanToken(text, p)
	if !ok {
		return Invocation{}, 0, false
	}
	action, p, ok := scanToken(text, p)
	if !ok {
		return Invocation{}, 0, false
	}

	inv := Invocation{ToolToken: tool, Action: action}

	raw, end, ok := scanObject(text, p)
	if !ok {
		// The parameter region never closes as a JSON object followed
		// by "]". Recover the span through the next "]" and report a
		// malformed invocation; without any "]" there is no tag.
		closeIdx := strings.IndexByte(text[p:], ']')
		if closeIdx < 0 {
			return Invocation{}, 0, false
		}
		inv.Span = Span{Start: start, End: p + closeIdx + 1}
		inv.Err = &MalformedInvocationError{
			ToolToken: tool,
			Action:    action,
			Err:       fmt.Errorf("parameter text is not a JSON object"),
		}
		return inv, inv.Span.End, true
	}

	inv.Span = Span{Start: start, End: end}
	var params map[string]any
	if err := json.Unmarshal([]byte(raw), &params); err != nil {
		inv.Err = &MalformedInvocationError{ToolToken: tool, Action: action, Err: err}
		return inv, end, true
	}
	inv.Params = params
	return inv, end, true
}

// scanToken reads a colon-terminated token starting at p. Tokens contain
// neither colons nor the tag delimiters.
func scanToken(text string, p int) (string, int, bool) {
	end := p
	for end < len(text) {
		switch text[end] {
		case ':':
			if end == p {
				return "", 0, false
			}
			return text[p:end], end + 1, true
		case '[', ']', '{', '}':
			return "", 0, false
		}
		end++
	}
	return "", 0, false
}

// scanObject reads a balanced JSON object literal starting at p, tracking
// string and escape state so braces inside string values do not terminate
// it, and requires the tag's closing "]" immediately after. It returns the
// object text and the position just past the closing "]".
func scanObject(text string, p int) (string, int, bool) {
	if p >= len(text) || text[p] != '{' {
		return "", 0, false
	}
	depth := 0
	inString := false
	escaped := false
	for i := p; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				if i+1 < len(text) && text[i+1] == ']' {
					return text[p : i+1], i + 2, true
				}
				return "", 0, false
			}
		}
	}
	return "", 0, false
}

// FormatTag serializes a tool token, action name, and parameter object into
// tag syntax. Extracting the produced tag yields the identical triple.
func FormatTag(tool, action string, params map[string]any) (string, error) {
	if params == nil {
		params = map[string]any{}
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("encode tag params: %w", err)
	}
	return fmt.Sprintf("%s%s:%s:%s]", TagMarker, tool, action, raw), nil
}
