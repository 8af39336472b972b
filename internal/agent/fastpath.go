package agent

import (
	"context"
	"regexp"

	"github.com/parleyhq/parley/pkg/models"
)

// IntentHandler executes a directly matched intent. match holds the
// submatches of the intent's pattern (match[0] is the full match). It
// returns the rendered report and any execution results to expose on the
// query outcome. Handler failures degrade the textual response for the
// query; they never fall back to the model path.
type IntentHandler func(ctx context.Context, match []string) (string, map[string]models.ExecutionResult, error)

// Intent is one fast-path rule: a case-insensitive pattern over the raw
// query and the handler invoked on match. Intents are evaluated in order and
// the first match wins, short-circuiting the model entirely.
type Intent struct {
	// Name identifies the intent in logs and errors.
	Name string

	// Pattern is matched against the whole query. Compile it with (?i)
	// for the case-insensitive matching the fast path requires.
	Pattern *regexp.Regexp

	// Handle runs the intent's tool call and renders the report.
	Handle IntentHandler
}

// MustIntent builds an intent from a pattern source, prefixing (?i) so
// matching is case-insensitive. It panics on an invalid pattern and is meant
// for the static intent tables agents declare at startup.
func MustIntent(name, pattern string, handle IntentHandler) Intent {
	return Intent{
		Name:    name,
		Pattern: regexp.MustCompile("(?i)" + pattern),
		Handle:  handle,
	}
}

// matchIntent returns the first intent whose pattern matches the query,
// along with the pattern's submatches.
func matchIntent(intents []Intent, query string) (Intent, []string, bool) {
	for _, intent := range intents {
		if m := intent.Pattern.FindStringSubmatch(query); m != nil {
			return intent, m, true
		}
	}
	return Intent{}, nil, false
}
