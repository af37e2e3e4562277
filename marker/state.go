// Package marker selects marker regions for protein families from their
// per-residue coverage, and turns the selected regions into named marker
// sequences.
//
// Classification runs in three stages over a slice of FamilyState:
//
//	CheckForMarkers      Unclassified -> HasTrueMarker | NeedsQuasi
//	FindJunctionMarkers  NeedsQuasi   -> Junction (or stays NeedsQuasi)
//	CheckForQuasiMarkers NeedsQuasi   -> QuasiMinimal | NoMarker
//
// Each stage only touches families in the state it consumes, so the stages
// can also be run and tested in isolation.
package marker

import (
	"fmt"

	"github.com/grailbio/base/log"
	"github.com/grailbio/shortbred/blast"
	"github.com/grailbio/shortbred/family"
	"github.com/grailbio/shortbred/interval"
	"github.com/grailbio/shortbred/overlap"
)

// State is the classification state of a family.
type State uint8

const (
	Unclassified State = iota
	HasTrueMarker
	NeedsQuasi
	Junction
	QuasiMinimal
	NoMarker
)

var stateNames = [...]string{"unclassified", "true-marker", "needs-quasi", "junction", "quasi-minimal", "no-marker"}

func (s State) String() string {
	if int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", s)
	}
	return stateNames[s]
}

// Window is a region of a family's consensus chosen as a quasi marker.
type Window struct {
	Start, End int
	Kind       Kind
	// Score is the coverage sum over the window, not counting the penalty of
	// ambiguous residues.
	Score int
}

// Len returns the window length.
func (w Window) Len() int { return w.End - w.Start }

// FamilyState carries one family through classification and emission.
type FamilyState struct {
	Family family.Family
	// GOI is the coverage by hits against the other families, with
	// overlap.AmbiguousCount added at every 'X' residue.
	GOI []int
	// Ref is the coverage by hits against the reference database.
	Ref []int
	// Combined is GOI+Ref.
	Combined []int
	// GOIHits and RefHits are the hits that produced GOI and Ref.
	GOIHits, RefHits []blast.Hit

	State State
	// TrueRun is the longest uncovered run, valid if State is HasTrueMarker.
	TrueRun interval.Entry
	// Quasi is the selected window, valid if State is Junction or QuasiMinimal.
	Quasi Window

	// covered holds the covered residues of the consensus.  It is filled for
	// families with true markers.
	covered    interval.Set
	hasCovered bool
}

// NewFamilyState creates the state of f from its raw coverage arrays, which
// may be nil or of the wrong length.  The arguments are not modified.
func NewFamilyState(f family.Family, goi, ref []int, goiHits, refHits []blast.Hit) *FamilyState {
	n := f.Len()
	if (goi != nil && len(goi) != n) || (ref != nil && len(ref) != n) {
		log.Debug.Printf("%s: coverage of %d/%d residues resized to %d", f.ID, len(goi), len(ref), n)
	}
	st := &FamilyState{
		Family:  f,
		GOI:     overlap.Resize(goi, n),
		Ref:     overlap.Resize(ref, n),
		GOIHits: goiHits,
		RefHits: refHits,
	}
	overlap.MarkAmbiguous(st.GOI, f.Consensus)
	st.Combined = overlap.Combine(st.GOI, st.Ref)
	return st
}

// NewStates creates one FamilyState per registry family, in registry order.
// Families absent from the count maps get all-zero coverage.  The hit maps
// may be nil.
func NewStates(reg *family.Registry, goi, ref overlap.Counts, goiHits, refHits overlap.HitInfo) []*FamilyState {
	fams := reg.Families()
	states := make([]*FamilyState, len(fams))
	for i, f := range fams {
		states[i] = NewFamilyState(f, goi[f.ID], ref[f.ID], goiHits[f.ID], refHits[f.ID])
	}
	return states
}

// markCovered fills the covered set from the combined coverage.
func (st *FamilyState) markCovered() {
	zeros, err := interval.NewSet(interval.ZeroRuns(st.Combined))
	if err != nil {
		log.Panicf("%s: %v", st.Family.ID, err)
	}
	st.covered = zeros.Invert(len(st.Combined))
	st.hasCovered = true
}

// Uncovered returns the maximal runs of residues not marked as covered, in
// order.  It returns nil unless the family has a true marker.
func (st *FamilyState) Uncovered() []interval.Entry {
	if !st.hasCovered {
		return nil
	}
	return st.covered.Invert(st.Family.Len()).Entries()
}

// HasMarker reports whether classification found a marker for the family.
func (st *FamilyState) HasMarker() bool {
	switch st.State {
	case HasTrueMarker, Junction, QuasiMinimal:
		return true
	}
	return false
}
