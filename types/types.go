package types

import (
	"encoding/json"
	"fmt"
)

// Document is an immutable snapshot of one item from the reader service.
type Document struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	URL         string  `json:"source_url"`
	Category    string  `json:"category"`
	HTMLContent string  `json:"html_content,omitempty"`
	Content     string  `json:"content,omitempty"`
	Summary     string  `json:"summary,omitempty"`
	CreatedAt   string  `json:"created_at"`
	Tags        TagList `json:"tags,omitempty"`
}

// TagList normalizes the reader API's tag shapes into a flat list of names.
// Tags arrive as plain strings, as objects with a "name" field, or as a map
// keyed by tag name.
type TagList []string

// UnmarshalJSON implements json.Unmarshaler.
func (t *TagList) UnmarshalJSON(data []byte) error {
	var asList []json.RawMessage
	if err := json.Unmarshal(data, &asList); err == nil {
		names := make([]string, 0, len(asList))
		for _, raw := range asList {
			var s string
			if err := json.Unmarshal(raw, &s); err == nil {
				names = append(names, s)
				continue
			}
			var obj struct {
				Name string `json:"name"`
			}
			if err := json.Unmarshal(raw, &obj); err == nil && obj.Name != "" {
				names = append(names, obj.Name)
			}
		}
		*t = names
		return nil
	}

	var asMap map[string]json.RawMessage
	if err := json.Unmarshal(data, &asMap); err == nil {
		names := make([]string, 0, len(asMap))
		for name := range asMap {
			names = append(names, name)
		}
		*t = names
		return nil
	}

	// Null or an unrecognized shape degrades to no tags.
	*t = nil
	return nil
}

// SparseVector is a weighted bag-of-terms as parallel arrays. Indices are
// stable 32-bit hashes of tokens; values are strictly positive term counts.
type SparseVector struct {
	Indices []uint32  `json:"indices"`
	Values  []float32 `json:"values"`
}

// IsEmpty reports whether the vector carries no terms.
func (s SparseVector) IsEmpty() bool {
	return len(s.Indices) == 0
}

// KeywordSet holds the per-document keyword extraction output.
type KeywordSet struct {
	Rake  []ScoredTerm
	TfIdf []ScoredTerm
	// BoostedText repeats top terms proportionally to their weight, for
	// sparse-vector enhancement of the header.
	BoostedText string
}

// ScoredTerm is a (term, weight) pair, ordered by descending weight within
// its list.
type ScoredTerm struct {
	Term  string
	Score float64
}

// SearchResult is one passage returned by the retriever.
type SearchResult struct {
	ID    string  `json:"id"`
	Score float32 `json:"score"`
	DocID string  `json:"doc_id"`
	Title string  `json:"title"`
	URL   string  `json:"url"`
	Text  string  `json:"text"`
}

// SyncStats summarizes one sync invocation.
type SyncStats struct {
	Fetched   int `json:"fetched"`
	Skipped   int `json:"skipped"`
	Processed int `json:"processed"`
	Chunks    int `json:"chunks"`
	Failed    int `json:"failed"`
}

// HeaderID returns the vector id for a document's super-header record.
func HeaderID(docID string) string {
	return docID + "-header"
}

// ChunkID returns the vector id for the i-th chunk record of a document.
func ChunkID(docID string, i int) string {
	return fmt.Sprintf("%s-chunk-%d", docID, i)
}
