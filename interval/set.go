package interval

import (
	"fmt"
	"sort"
)

// Entry represents a single interval [Start0, End), with 0-based coordinates.
type Entry struct {
	Start0 int
	End    int
}

// Len returns the number of positions in the interval.
func (e Entry) Len() int { return e.End - e.Start0 }

// Overlap returns the number of positions shared by e and o.
func (e Entry) Overlap(o Entry) int {
	start, end := e.Start0, e.End
	if o.Start0 > start {
		start = o.Start0
	}
	if o.End < end {
		end = o.End
	}
	if end <= start {
		return 0
	}
	return end - start
}

// Set is an interval union, represented as a length-2N sequence where the
// start of interval #k is in element [2k] and its end in element [2k+1], with
// the intervals disjoint, non-touching and in increasing order.  A position p
// is in the set iff the number of endpoints <= p is odd.
type Set struct {
	endpoints []int
}

// searchPos returns the index of the first endpoint > x.
func searchPos(a []int, x int) int {
	return sort.Search(len(a), func(i int) bool { return a[i] > x })
}

// NewSet builds the union of the given intervals.  The entries need not be
// sorted; empty entries are dropped.
func NewSet(entries []Entry) (Set, error) {
	sorted := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Start0 < 0 {
			return Set{}, fmt.Errorf("interval.NewSet: negative start coordinate in [%d, %d)", e.Start0, e.End)
		}
		if e.End < e.Start0 {
			return Set{}, fmt.Errorf("interval.NewSet: invalid coordinate pair [%d, %d)", e.Start0, e.End)
		}
		if e.End == e.Start0 {
			continue
		}
		sorted = append(sorted, e)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start0 < sorted[j].Start0 })

	var s Set
	prevStart, prevEnd := -1, -1
	for _, e := range sorted {
		if e.Start0 > prevEnd {
			// New interval doesn't touch the previous one, so we can save the
			// previous one.
			if prevEnd != -1 {
				s.endpoints = append(s.endpoints, prevStart, prevEnd)
			}
			prevStart, prevEnd = e.Start0, e.End
			continue
		}
		// Intervals overlap, merge them.
		if e.End > prevEnd {
			prevEnd = e.End
		}
	}
	if prevEnd != -1 {
		s.endpoints = append(s.endpoints, prevStart, prevEnd)
	}
	return s, nil
}

// Entries returns the disjoint intervals of the set in increasing order.
func (s Set) Entries() []Entry {
	entries := make([]Entry, len(s.endpoints)/2)
	for i := range entries {
		entries[i] = Entry{s.endpoints[2*i], s.endpoints[2*i+1]}
	}
	return entries
}

// Contains checks whether position pos is in the set.
func (s Set) Contains(pos int) bool {
	return searchPos(s.endpoints, pos)&1 == 1
}

// Invert returns the complement of the set within [0, limit).
func (s Set) Invert(limit int) Set {
	var inv Set
	prev := 0
	for i := 0; i < len(s.endpoints); i += 2 {
		start, end := s.endpoints[i], s.endpoints[i+1]
		if start >= limit {
			break
		}
		if start > prev {
			inv.endpoints = append(inv.endpoints, prev, start)
		}
		prev = end
	}
	if prev < limit {
		inv.endpoints = append(inv.endpoints, prev, limit)
	}
	return inv
}

// ZeroRuns returns the maximal runs of zeros in counts, in increasing order.
func ZeroRuns(counts []int) []Entry {
	var runs []Entry
	start := -1
	for i, c := range counts {
		if c == 0 {
			if start == -1 {
				start = i
			}
			continue
		}
		if start != -1 {
			runs = append(runs, Entry{start, i})
			start = -1
		}
	}
	if start != -1 {
		runs = append(runs, Entry{start, len(counts)})
	}
	return runs
}

// LongestZeroRun returns the longest run of zeros in counts.  When several runs
// share the maximum length the one with the lowest start wins.  ok is false if
// counts has no zero.
func LongestZeroRun(counts []int) (run Entry, ok bool) {
	for _, r := range ZeroRuns(counts) {
		if !ok || r.Len() > run.Len() {
			run, ok = r, true
		}
	}
	return run, ok
}
