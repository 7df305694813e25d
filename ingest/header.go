package ingest

import (
	"strings"

	"github.com/readloom/readloom/types"
)

// Super-header section bounds.
const (
	maxHeaderLen  = 1800
	maxTitleLen   = 100
	maxAuthorLen  = 100
	maxTagsLen    = 100
	maxSummaryLen = 1000
)

// BuildSuperHeader assembles the per-document summary text that backs the
// document's single header vector: labeled Title, Author, Tags, Summary,
// RAKE and TF-IDF sections separated by blank lines, bounded per section
// and to 1,800 characters overall.
func BuildSuperHeader(doc types.Document, kw types.KeywordSet) string {
	sections := []string{
		"Title: " + truncate(doc.Title, maxTitleLen),
		"Author: " + truncate(doc.Author, maxAuthorLen),
	}
	if len(doc.Tags) > 0 {
		sections = append(sections, "Tags: "+truncate(strings.Join(doc.Tags, ", "), maxTagsLen))
	}
	if doc.Summary != "" {
		sections = append(sections, "Summary: "+truncate(doc.Summary, maxSummaryLen))
	}
	sections = append(sections,
		"RAKE Keywords: "+joinTerms(kw.Rake),
		"TF-IDF Terms: "+joinTerms(kw.TfIdf),
	)
	return truncate(strings.Join(sections, "\n\n"), maxHeaderLen)
}

// joinTerms comma-joins the terms of a scored list.
func joinTerms(terms []types.ScoredTerm) string {
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = t.Term
	}
	return strings.Join(parts, ", ")
}

// truncate bounds s to n bytes without cutting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && s[n]&0xC0 == 0x80 {
		n--
	}
	return s[:n]
}
