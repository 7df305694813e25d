package types

import (
	"encoding/json"
	"testing"
)

func TestTagList_Unmarshal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"strings", `["alpha", "beta"]`, 2},
		{"objects", `[{"name": "alpha"}, {"name": "beta"}]`, 2},
		{"mixed", `["alpha", {"name": "beta"}]`, 2},
		{"map keyed by name", `{"alpha": {}, "beta": {}}`, 2},
		{"null", `null`, 0},
		{"unrecognized", `42`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tags TagList
			if err := json.Unmarshal([]byte(tt.in), &tags); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(tags) != tt.want {
				t.Errorf("got %d tags %v, want %d", len(tags), tags, tt.want)
			}
		})
	}
}

func TestRecordIDs(t *testing.T) {
	if got := HeaderID("doc-42"); got != "doc-42-header" {
		t.Errorf("HeaderID = %q", got)
	}
	if got := ChunkID("doc-42", 3); got != "doc-42-chunk-3" {
		t.Errorf("ChunkID = %q", got)
	}
}

func TestSparseVector_IsEmpty(t *testing.T) {
	if !(SparseVector{}).IsEmpty() {
		t.Error("zero value should be empty")
	}
	if (SparseVector{Indices: []uint32{1}, Values: []float32{2}}).IsEmpty() {
		t.Error("populated vector should not be empty")
	}
}
