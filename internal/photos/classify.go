package photos

import "sort"

const (
	TypeBefore = "before"
	TypeAfter  = "after"
)

// AssignTypes labels each photo of a job before or after. Filename keyword
// hints are kept; the remaining photos are ranked by debris score and the
// dirtier half (rounded up) becomes "before".
func AssignTypes(job []*Photo) []string {
	types := make([]string, len(job))
	var open []int
	for i, p := range job {
		if p.Hint != "" {
			types[i] = p.Hint
			continue
		}
		open = append(open, i)
	}
	sort.SliceStable(open, func(a, b int) bool {
		return job[open[a]].Analysis.DebrisScore > job[open[b]].Analysis.DebrisScore
	})
	midpoint := (len(open) + 1) / 2
	for rank, i := range open {
		if rank < midpoint {
			types[i] = TypeBefore
		} else {
			types[i] = TypeAfter
		}
	}
	return types
}
