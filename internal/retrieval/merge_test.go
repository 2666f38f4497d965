package retrieval

import "testing"

func TestMergePassages(t *testing.T) {
	merged := MergePassages(
		[]Passage{
			{DocumentID: "sec-iv", Text: "Collision coverage terms."},
			{DocumentID: "sec-ii", Text: "Exclusions."},
		},
		[]Passage{
			{DocumentID: "decl-1", Text: "Declarations page."},
		},
	)

	want := "Collision coverage terms.\n\nExclusions.\n\nDeclarations page."
	if merged != want {
		t.Errorf("Expected %q, got %q", want, merged)
	}
}

func TestMergePassages_DedupeLastTextWins(t *testing.T) {
	merged := MergePassages(
		[]Passage{
			{DocumentID: "sec-iv", Text: "First fragment."},
			{DocumentID: "sec-ii", Text: "Exclusions."},
		},
		[]Passage{
			{DocumentID: "sec-iv", Text: "Fuller fragment."},
		},
	)

	// sec-iv keeps its first position but carries the later text
	want := "Fuller fragment.\n\nExclusions."
	if merged != want {
		t.Errorf("Expected %q, got %q", want, merged)
	}
}

func TestMergePassages_Empty(t *testing.T) {
	if merged := MergePassages(); merged != "" {
		t.Errorf("Expected empty string, got %q", merged)
	}
	if merged := MergePassages(nil, []Passage{}); merged != "" {
		t.Errorf("Expected empty string, got %q", merged)
	}
}
