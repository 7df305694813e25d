// Package htmltext converts marked-up reader content into paragraph-bounded
// plain text with deterministic whitespace rules.
package htmltext

import (
	"regexp"
	"strings"
)

var (
	brRe         = regexp.MustCompile(`(?i)<br\s*/?>`)
	blockOpenRe  = regexp.MustCompile(`(?i)<(?:p|div|h[1-6]|li)(?:\s[^>]*)?>`)
	blockCloseRe = regexp.MustCompile(`(?i)</(?:p|div|h[1-6]|li)>`)
	anyTagRe     = regexp.MustCompile(`<[^>]+>`)
	trailingRe   = regexp.MustCompile(`[ \t]+\n`)
	multiNLRe    = regexp.MustCompile(`\n{3,}`)
)

var entityReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
)

// Normalize extracts plain text from HTML. The output invariant: paragraphs
// are separated by exactly two newlines, single newlines appear only where
// explicit line breaks originated, and no paragraph contains a blank line.
// Normalize is idempotent.
func Normalize(html string) string {
	text := brRe.ReplaceAllString(html, "\n")
	text = blockOpenRe.ReplaceAllString(text, "\n\n")
	text = blockCloseRe.ReplaceAllString(text, "")
	text = anyTagRe.ReplaceAllString(text, "")
	text = entityReplacer.Replace(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = trailingRe.ReplaceAllString(text, "\n")
	text = multiNLRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
