// Package rewriter expands raw user queries through an external language
// model into technically specific restatements with related topics and
// tags. Every failure path degrades to the raw query.
package rewriter

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
)

// Rewriter rewrites a raw query for retrieval. Implementations never fail
// the query path: on any error the raw query comes back unchanged.
type Rewriter interface {
	Rewrite(ctx context.Context, query string) string
}

// Noop returns the raw query unchanged. Substituting it for a live
// rewriter yields a working retriever over the raw query.
type Noop struct{}

// Rewrite implements Rewriter.
func (Noop) Rewrite(_ context.Context, query string) string {
	return query
}

// expansion is the structured object the language model is asked to emit.
type expansion struct {
	OptimizedQuery string   `json:"Optimized Query"`
	RelatedTopics  []string `json:"Related Topics"`
	Tags           []string `json:"Tags"`
}

var (
	braceRe       = regexp.MustCompile(`\{[\s\S]*\}`)
	quoteReplacer = strings.NewReplacer("‘", "'", "’", "'", "“", `"`, "”", `"`)
)

// parseExpansion extracts the first brace-delimited object from a model
// completion, tolerating curly quotes and surrounding prose. It returns
// false when no complete expansion can be recovered.
func parseExpansion(completion string) (expansion, bool) {
	object := braceRe.FindString(completion)
	if object == "" {
		return expansion{}, false
	}
	object = quoteReplacer.Replace(object)

	var exp expansion
	if err := json.Unmarshal([]byte(object), &exp); err != nil {
		return expansion{}, false
	}
	if exp.OptimizedQuery == "" {
		return expansion{}, false
	}
	return exp, true
}

// render flattens an expansion into the labeled text handed to the
// retriever, fields separated by blank lines.
func (e expansion) render() string {
	sections := []string{"Optimized Query: " + e.OptimizedQuery}
	if len(e.RelatedTopics) > 0 {
		sections = append(sections, "Related Topics: "+strings.Join(e.RelatedTopics, ", "))
	}
	if len(e.Tags) > 0 {
		sections = append(sections, "Tags: "+strings.Join(e.Tags, ", "))
	}
	return strings.Join(sections, "\n\n")
}
