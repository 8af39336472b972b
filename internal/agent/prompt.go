package agent

import (
	"fmt"
	"sort"
	"strings"
)

// BuildPrompt renders the tool catalog and the invocation grammar into the
// prompt sent to the model-completion client. Tools appear in registration
// order and parameters in lexical order so the rendered block is
// deterministic for a given registry state.
func BuildPrompt(query string, tools []Tool) string {
	var b strings.Builder

	b.WriteString("You are an assistant that can call external tools.\n")
	b.WriteString("To call a tool, embed a tag of the form ")
	b.WriteString("[TOOL_ACTION:<tool>:<action>:{\"param\": value}] in your answer.\n")
	b.WriteString("The parameter object must be a valid JSON object. ")
	b.WriteString("Tags are executed in the order they appear and replaced with their results.\n")

	if len(tools) > 0 {
		b.WriteString("\nAvailable tools:\n")
		for _, t := range tools {
			fmt.Fprintf(&b, "\n## %s: %s\n", t.Name(), t.Description())
			for _, a := range t.Actions() {
				fmt.Fprintf(&b, "- %s: %s\n", a.Name, a.Description)
				for _, name := range sortedParamNames(a) {
					spec := a.Params[name]
					fmt.Fprintf(&b, "    - %s (%s%s)", name, spec.Type, requiredSuffix(spec))
					if spec.Description != "" {
						b.WriteString(": " + spec.Description)
					}
					if spec.Default != nil {
						fmt.Fprintf(&b, " [default: %v]", spec.Default)
					}
					b.WriteString("\n")
				}
			}
		}
	}

	b.WriteString("\nUser request:\n")
	b.WriteString(query)
	b.WriteString("\n")
	return b.String()
}

func sortedParamNames(a ActionDescriptor) []string {
	names := make([]string, 0, len(a.Params))
	for name := range a.Params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func requiredSuffix(spec ParamSpec) string {
	if spec.Required {
		return ", required"
	}
	return ", optional"
}
