package marker

import (
	"github.com/grailbio/base/log"
	"github.com/grailbio/shortbred/encoding/fasta"
	"github.com/grailbio/shortbred/family"
)

// Marker is one emitted marker sequence.
type Marker struct {
	ID  ID
	Seq string
}

// Record converts m to a FASTA record.
func (m Marker) Record() fasta.Record {
	return fasta.Record{Name: m.ID.String(), Seq: m.Seq}
}

// trueMarkers splits the uncovered residues of a true-marker family into
// markers.  Spans shorter than opts.MarkerLength are dropped.  Spans are taken
// left to right while the family budget of opts.TotalLength lasts; a span
// longer than the remaining budget is cut to fit, unless the remainder is
// below opts.MarkerLength.
func trueMarkers(st *FamilyState, opts Opts) []Marker {
	var markers []Marker
	budget := opts.TotalLength
	for _, span := range st.Uncovered() {
		if budget < opts.MarkerLength {
			break
		}
		n := span.Len()
		if n < opts.MarkerLength {
			continue
		}
		if n > budget {
			n = budget
		}
		markers = append(markers, Marker{
			ID:  ID{Family: st.Family.ID, Kind: TM, Ordinal: len(markers) + 1},
			Seq: st.Family.Consensus[span.Start0 : span.Start0+n],
		})
		budget -= n
	}
	return markers
}

// Emit returns the markers of all classified families, in family order and
// then left to right within a family.
func Emit(states []*FamilyState, opts Opts) []Marker {
	var markers []Marker
	for _, st := range states {
		switch st.State {
		case HasTrueMarker:
			tms := trueMarkers(st, opts)
			if len(tms) == 0 {
				log.Error.Printf("%s: true marker family produced no markers", st.Family.ID)
			}
			markers = append(markers, tms...)
		case Junction, QuasiMinimal:
			w := st.Quasi
			markers = append(markers, Marker{
				ID:  ID{Family: st.Family.ID, Kind: w.Kind, Score: w.Score, Ordinal: 1},
				Seq: st.Family.Consensus[w.Start:w.End],
			})
		}
	}
	return markers
}

// QuasiOnly returns the junction and quasi-minimal markers of markers.
func QuasiOnly(markers []Marker) []Marker {
	var out []Marker
	for _, m := range markers {
		if m.ID.Kind.Quasi() {
			out = append(out, m)
		}
	}
	return out
}

// KeepRepresentatives drops the quasi markers whose family was clustered
// into another family.  True markers are always kept.
func KeepRepresentatives(markers []Marker, c family.ClusterMap) []Marker {
	var out []Marker
	for _, m := range markers {
		if m.ID.Kind.Quasi() && !c.IsRepresentative(m.ID.Family) {
			log.Debug.Printf("%s: dropped, clustered into %s", m.ID, c.Resolve(m.ID.Family))
			continue
		}
		out = append(out, m)
	}
	return out
}
