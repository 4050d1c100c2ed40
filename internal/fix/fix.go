// Package fix composes accepted fix requests into non-overlapping byte-range
// edits and applies them to the original document text.
package fix

import "sort"

// Edit is a minimal textual edit: replace the half-open byte range
// [Start, End) of the original text with Text. Start == End inserts.
type Edit struct {
	RuleID string
	Start  int
	End    int
	Text   string
}

// Result is the outcome of composing and applying a set of edits.
type Result struct {
	Output    string
	Applied   int
	Conflicts []Edit
}

// Apply composes the candidate edits and applies the accepted ones to src.
//
// Two edits conflict iff their ranges overlap; touching at a shared boundary
// is not overlap. Candidates are sorted by start offset descending and
// accepted only when their end does not extend past the start of the last
// accepted edit. Accepted edits are applied in the same right-to-left order,
// so a replacement never shifts the extent of one applied before it.
func Apply(src string, candidates []Edit) Result {
	res := Result{Output: src}
	if len(candidates) == 0 {
		return res
	}

	sorted := make([]Edit, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start > sorted[j].Start
		}
		return sorted[i].End > sorted[j].End
	})

	out := src
	lastStart := len(src) + 1
	for _, e := range sorted {
		if e.Start < 0 || e.End < e.Start || e.End > len(src) {
			res.Conflicts = append(res.Conflicts, e)
			continue
		}
		if e.End > lastStart {
			res.Conflicts = append(res.Conflicts, e)
			continue
		}
		out = out[:e.Start] + e.Text + out[e.End:]
		lastStart = e.Start
		res.Applied++
	}
	res.Output = out
	return res
}
