package marker

import (
	"github.com/grailbio/base/log"
	"github.com/grailbio/shortbred/blast"
	"github.com/grailbio/shortbred/interval"
	"github.com/grailbio/shortbred/overlap"
)

// CheckForMarkers moves every Unclassified family to HasTrueMarker if its
// combined coverage has a zero run of at least minLen residues, and to
// NeedsQuasi otherwise.  The longest run, lowest start on ties, is recorded in
// TrueRun, and the covered residues of true-marker families are marked.  It
// returns the number of families with true markers.
func CheckForMarkers(states []*FamilyState, minLen int) int {
	n := 0
	for _, st := range states {
		if st.State != Unclassified {
			continue
		}
		run, ok := interval.LongestZeroRun(st.Combined)
		if !ok || run.Len() < minLen {
			st.State = NeedsQuasi
			continue
		}
		st.State = HasTrueMarker
		st.TrueRun = run
		st.markCovered()
		n++
		log.Debug.Printf("%s: longest uncovered run [%d,%d)", st.Family.ID, run.Start0, run.End)
	}
	return n
}

func isAmbiguous(c byte) bool { return c == 'X' || c == 'x' }

// hitRanges returns the query ranges of all hits of st, clamped to the
// consensus.
func hitRanges(st *FamilyState) []interval.Entry {
	n := st.Family.Len()
	ranges := make([]interval.Entry, 0, len(st.GOIHits)+len(st.RefHits))
	for _, hits := range [][]blast.Hit{st.GOIHits, st.RefHits} {
		for i := range hits {
			start, end := hits[i].QueryRange()
			if start < 0 {
				start = 0
			}
			if end > n {
				end = n
			}
			if start < end {
				ranges = append(ranges, interval.Entry{Start0: start, End: end})
			}
		}
	}
	return ranges
}

// junctionWindow finds the best junction window of st.  A window of
// opts.WindowLen() residues is valid if it holds at most opts.XLimit ambiguous
// residues, hits cover its first and its last residue, and no single hit
// covers more than WindowLen-ShortRegionLen of it.  Together these place the
// window across the boundary of two hits, with at least ShortRegionLen
// residues outside each hit.  The valid window with the smallest coverage sum
// wins.
func junctionWindow(st *FamilyState, opts Opts) (Window, bool) {
	wlen := opts.WindowLen()
	seq := st.Family.Consensus
	n := len(seq)
	if n < wlen || wlen <= 0 {
		return Window{}, false
	}
	maxCover := wlen - opts.ShortRegionLen()
	if maxCover >= wlen {
		return Window{}, false
	}
	ranges := hitRanges(st)
	hits, err := interval.NewSet(ranges)
	if err != nil {
		log.Panicf("%s: %v", st.Family.ID, err)
	}
	var nX, sum int
	for i := 0; i < wlen; i++ {
		if isAmbiguous(seq[i]) {
			nX++
		}
		sum += st.Combined[i]
	}
	best := Window{Start: -1}
	for start := 0; ; start++ {
		end := start + wlen
		if nX <= opts.XLimit && hits.Contains(start) && hits.Contains(end-1) &&
			!coveredByOneHit(ranges, interval.Entry{Start0: start, End: end}, maxCover) {
			score := sum - nX*overlap.AmbiguousCount
			if best.Start < 0 || score < best.Score {
				best = Window{Start: start, End: end, Kind: JM, Score: score}
			}
		}
		if end == n {
			break
		}
		if isAmbiguous(seq[start]) {
			nX--
		}
		if isAmbiguous(seq[end]) {
			nX++
		}
		sum += st.Combined[end] - st.Combined[start]
	}
	return best, best.Start >= 0
}

// coveredByOneHit reports whether one of ranges overlaps w by more than
// maxCover residues.
func coveredByOneHit(ranges []interval.Entry, w interval.Entry, maxCover int) bool {
	for _, r := range ranges {
		if r.Overlap(w) > maxCover {
			return true
		}
	}
	return false
}

// FindJunctionMarkers moves NeedsQuasi families that have a valid junction
// window to Junction.  Other families stay NeedsQuasi.  It returns the number
// of junction families.
func FindJunctionMarkers(states []*FamilyState, opts Opts) int {
	n := 0
	for _, st := range states {
		if st.State != NeedsQuasi {
			continue
		}
		w, ok := junctionWindow(st, opts)
		if !ok {
			continue
		}
		st.State = Junction
		st.Quasi = w
		n++
		log.Debug.Printf("%s: junction window [%d,%d) score %d", st.Family.ID, w.Start, w.End, w.Score)
	}
	return n
}

// quasiWindow returns the window of opts.WindowLen() residues with the
// smallest coverage sum, lowest start on ties.
func quasiWindow(st *FamilyState, opts Opts) (Window, bool) {
	wlen := opts.WindowLen()
	n := len(st.Combined)
	if n < wlen || wlen <= 0 {
		return Window{}, false
	}
	sum := 0
	for _, c := range st.Combined[:wlen] {
		sum += c
	}
	bestStart, bestSum := 0, sum
	for start := 1; start+wlen <= n; start++ {
		sum += st.Combined[start+wlen-1] - st.Combined[start-1]
		if sum < bestSum {
			bestStart, bestSum = start, sum
		}
	}
	return Window{Start: bestStart, End: bestStart + wlen, Kind: QM, Score: bestSum}, true
}

// CheckForQuasiMarkers resolves the remaining NeedsQuasi families: a family
// whose least covered window has a coverage sum of at most opts.QThresh
// becomes QuasiMinimal, any other family, including one shorter than the
// window, becomes NoMarker.  It returns the number of quasi-minimal families.
func CheckForQuasiMarkers(states []*FamilyState, opts Opts) int {
	n := 0
	for _, st := range states {
		if st.State != NeedsQuasi {
			continue
		}
		w, ok := quasiWindow(st, opts)
		if !ok || w.Score > opts.QThresh {
			st.State = NoMarker
			log.Debug.Printf("%s: no marker", st.Family.ID)
			continue
		}
		st.State = QuasiMinimal
		st.Quasi = w
		n++
		log.Debug.Printf("%s: quasi window [%d,%d) score %d", st.Family.ID, w.Start, w.End, w.Score)
	}
	return n
}

// Classify runs the three classification stages over states.
func Classify(states []*FamilyState, opts Opts) Stats {
	s := Stats{Families: len(states)}
	s.TrueMarkerFamilies = CheckForMarkers(states, opts.MarkerLength)
	log.Printf("found true markers for %d of %d families", s.TrueMarkerFamilies, s.Families)
	s.JunctionFamilies = FindJunctionMarkers(states, opts)
	s.QuasiFamilies = CheckForQuasiMarkers(states, opts)
	for _, st := range states {
		if !st.HasMarker() {
			s.NoMarkerFamilies++
		}
	}
	log.Printf("found %d junction and %d quasi-minimal families, %d without markers",
		s.JunctionFamilies, s.QuasiFamilies, s.NoMarkerFamilies)
	return s
}
