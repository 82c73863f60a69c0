package dedupe

import (
	"fmt"
	"io"
	"sort"
	"time"
)

// Group is a set of activities sharing one key.
type Group struct {
	Key    string
	Keep   Activity
	Remove []Activity
}

// Size is the number of copies in the group.
func (g Group) Size() int { return 1 + len(g.Remove) }

// Plan is the outcome of classifying an inventory.
type Plan struct {
	Groups []Group
	Remove []Activity
}

// RecordsInGroups counts every activity that belongs to a duplicate group.
func (p *Plan) RecordsInGroups() int {
	n := 0
	for _, g := range p.Groups {
		n += g.Size()
	}
	return n
}

// Classify keeps the earliest-created activity of every key with more than
// one record and marks the rest for removal. Equal creation times keep the
// record fetched first.
func Classify(inv *Inventory) *Plan {
	plan := &Plan{}
	for _, key := range inv.Keys() {
		bucket := inv.Bucket(key)
		if len(bucket) < 2 {
			continue
		}
		sorted := make([]Activity, len(bucket))
		copy(sorted, bucket)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].CreatedTime.Before(sorted[j].CreatedTime)
		})

		g := Group{Key: key, Keep: sorted[0], Remove: sorted[1:]}
		plan.Groups = append(plan.Groups, g)
		plan.Remove = append(plan.Remove, g.Remove...)
	}
	duplicateGroups.Set(float64(len(plan.Groups)))
	return plan
}

// WriteReport prints every group and a summary.
func (p *Plan) WriteReport(w io.Writer) {
	for i, g := range p.Groups {
		fmt.Fprintf(w, "\nDuplicate group %d:\n", i+1)
		fmt.Fprintf(w, "  Key: %s\n", g.Key)
		fmt.Fprintf(w, "  Found %d copies\n", g.Size())
		fmt.Fprintf(w, "  Keeping: %s (created: %s)\n", g.Keep.ID, formatTime(g.Keep.CreatedTime))
		for _, dup := range g.Remove {
			fmt.Fprintf(w, "  Will remove: %s (created: %s)\n", dup.ID, formatTime(dup.CreatedTime))
		}
	}

	fmt.Fprintln(w, "\nSummary:")
	fmt.Fprintf(w, "  Total duplicate groups: %d\n", len(p.Groups))
	fmt.Fprintf(w, "  Total activities in duplicate groups: %d\n", p.RecordsInGroups())
	fmt.Fprintf(w, "  Activities to be removed: %d\n", len(p.Remove))
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.UTC().Format(time.RFC3339)
}
