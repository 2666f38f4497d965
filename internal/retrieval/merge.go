package retrieval

import "strings"

// MergePassages flattens grouped passages into a single policy text block.
// Passages are deduplicated by document ID: the first occurrence fixes the
// position, the last occurrence wins the text. Groups are visited in order,
// so earlier query results come before later ones. The surviving texts are
// joined with blank lines.
func MergePassages(groups ...[]Passage) string {
	order := make([]string, 0)
	texts := make(map[string]string)

	for _, group := range groups {
		for _, p := range group {
			if _, seen := texts[p.DocumentID]; !seen {
				order = append(order, p.DocumentID)
			}
			texts[p.DocumentID] = p.Text
		}
	}

	parts := make([]string, 0, len(order))
	for _, id := range order {
		parts = append(parts, texts[id])
	}
	return strings.Join(parts, "\n\n")
}
