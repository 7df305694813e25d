package retriever

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/readloom/readloom/types"
)

// citationLen is how many title characters the in-text citation keeps.
const citationLen = 13

// FormatContext renders retrieved passages into the context block handed
// to the answering model: one cited excerpt per result followed by a
// Sources list. The boolean reports whether any sources were produced.
func FormatContext(results []types.SearchResult) (string, bool) {
	if len(results) == 0 {
		return "", false
	}

	var blocks []string
	var titles []string
	seenTitles := make(map[string]bool)

	for _, res := range results {
		blocks = append(blocks, strings.Join([]string{
			"Document Title: " + res.Title,
			"In-Text Citation: [" + abbreviate(res.Title) + "]",
			"Document URL: " + res.URL,
			"Excerpt: " + RepairMarkdown(res.Text),
		}, "\n")+"\n")

		if res.Title != "" && !seenTitles[res.Title] {
			seenTitles[res.Title] = true
			titles = append(titles, res.Title)
		}
	}

	var b strings.Builder
	b.WriteString(strings.Join(blocks, "\n"))
	b.WriteString("\n## Sources\n")
	for _, title := range titles {
		b.WriteString("- " + title + "\n")
	}
	return b.String(), true
}

// abbreviate keeps the first characters of a title, with an ellipsis when
// truncated.
func abbreviate(title string) string {
	if utf8.RuneCountInString(title) <= citationLen {
		return title
	}
	runes := []rune(title)
	return string(runes[:citationLen]) + "..."
}

var (
	headingRe    = regexp.MustCompile(`^#{1,6}\s`)
	inlinePreRe  = regexp.MustCompile("(\\S)(`[^`]+`)")
	inlinePostRe = regexp.MustCompile("(`[^`]+`)(\\S)")
)

// RepairMarkdown applies light markdown repair for downstream rendering:
// fenced code blocks get surrounding blank lines, inline code gets
// breathing space, and headings get a preceding blank line. The
// transformation is idempotent on already-correct input.
func RepairMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	var out []string
	inFence := false
	needBlank := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		isFence := strings.HasPrefix(trimmed, "```")

		if needBlank {
			if trimmed != "" {
				out = append(out, "")
			}
			needBlank = false
		}

		switch {
		case isFence && !inFence:
			if n := len(out); n > 0 && out[n-1] != "" {
				out = append(out, "")
			}
			out = append(out, line)
			inFence = true
		case isFence && inFence:
			out = append(out, line)
			inFence = false
			needBlank = true
		case inFence:
			out = append(out, line)
		default:
			if headingRe.MatchString(trimmed) {
				if n := len(out); n > 0 && out[n-1] != "" {
					out = append(out, "")
				}
			}
			line = inlinePreRe.ReplaceAllString(line, "$1 $2")
			line = inlinePostRe.ReplaceAllString(line, "$1 $2")
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
