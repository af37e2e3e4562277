package marker

import (
	"fmt"
	"io"
	"sort"

	"github.com/grailbio/base/tsv"
	"gonum.org/v1/gonum/stat"
)

// Stats summarizes one identification run.
type Stats struct {
	// Families is the number of families with a consensus sequence.
	Families int
	// OrphanFamilies is the number of families named by the family map that
	// have no consensus.  They never get markers.
	OrphanFamilies int

	TrueMarkerFamilies int
	JunctionFamilies   int
	QuasiFamilies      int
	NoMarkerFamilies   int

	// QuasiBeforeClustering and QuasiAfterClustering count the families with
	// quasi markers before and after clustering.
	QuasiBeforeClustering int
	QuasiAfterClustering  int

	TrueMarkers     int
	JunctionMarkers int
	QuasiMarkers    int

	FamiliesWithMarkers    int
	FamiliesWithoutMarkers int

	MarkerLengthMean   float64
	MarkerLengthMedian float64
}

// AddMarkers fills the marker counters of s from the final marker set.
// families lists every family that owns proteins after clustering; those
// without a marker are counted in FamiliesWithoutMarkers.
func (s *Stats) AddMarkers(markers []Marker, families []string) {
	s.TrueMarkers, s.JunctionMarkers, s.QuasiMarkers = 0, 0, 0
	fams := map[string]struct{}{}
	lengths := make([]float64, 0, len(markers))
	for _, m := range markers {
		switch m.ID.Kind {
		case TM:
			s.TrueMarkers++
		case JM:
			s.JunctionMarkers++
		case QM:
			s.QuasiMarkers++
		}
		fams[m.ID.Family] = struct{}{}
		lengths = append(lengths, float64(len(m.Seq)))
	}
	s.FamiliesWithMarkers = len(fams)
	s.FamiliesWithoutMarkers = 0
	for _, fam := range families {
		if _, ok := fams[fam]; !ok {
			s.FamiliesWithoutMarkers++
		}
	}
	s.MarkerLengthMean, s.MarkerLengthMedian = 0, 0
	if len(lengths) > 0 {
		sort.Float64s(lengths)
		s.MarkerLengthMean = stat.Mean(lengths, nil)
		s.MarkerLengthMedian = stat.Quantile(0.5, stat.Empirical, lengths, nil)
	}
}

// TotalMarkers returns the number of markers of all kinds.
func (s Stats) TotalMarkers() int {
	return s.TrueMarkers + s.JunctionMarkers + s.QuasiMarkers
}

// Write writes s as name<TAB>value lines.
func (s Stats) Write(w io.Writer) error {
	tw := tsv.NewWriter(w)
	for _, e := range []struct {
		name  string
		value interface{}
	}{
		{"Initial Families", s.Families},
		{"Families without consensus", s.OrphanFamilies},
		{"Families with True Markers", s.TrueMarkerFamilies},
		{"Families with Junction Markers", s.JunctionFamilies},
		{"Families with QM-Minimals", s.QuasiFamilies},
		{"QM Families, before clustering", s.QuasiBeforeClustering},
		{"QM Families, after clustering", s.QuasiAfterClustering},
		{"Total Markers", s.TotalMarkers()},
		{"True Markers", s.TrueMarkers},
		{"QM-Junctions", s.JunctionMarkers},
		{"QM-Minimals", s.QuasiMarkers},
		{"Families with Markers", s.FamiliesWithMarkers},
		{"Families without Markers", s.FamiliesWithoutMarkers},
		{"Marker length, mean", fmt.Sprintf("%.2f", s.MarkerLengthMean)},
		{"Marker length, median", fmt.Sprintf("%.2f", s.MarkerLengthMedian)},
	} {
		tw.WriteString(e.name + ":")
		tw.WriteString(fmt.Sprint(e.value))
		if err := tw.EndLine(); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// familyRow is one line of the per-family statistics table.
type familyRow struct {
	Family         string `tsv:"family"`
	State          string `tsv:"state"`
	Length         int64  `tsv:"length"`
	GOICovered     int64  `tsv:"goi_covered"`
	RefCovered     int64  `tsv:"ref_covered"`
	GOIHits        int64  `tsv:"goi_hits"`
	RefHits        int64  `tsv:"ref_hits"`
	Markers        int64  `tsv:"markers"`
	MarkerResidues int64  `tsv:"marker_residues"`
}

func countPositive(counts []int) int64 {
	var n int64
	for _, c := range counts {
		if c > 0 {
			n++
		}
	}
	return n
}

// WriteFamilyStats writes one row per family, sorted by family id, with its
// classification and the markers of it that appear in markers.
func WriteFamilyStats(w io.Writer, states []*FamilyState, markers []Marker) error {
	type markerCount struct{ n, residues int64 }
	perFamily := map[string]markerCount{}
	for _, m := range markers {
		c := perFamily[m.ID.Family]
		c.n++
		c.residues += int64(len(m.Seq))
		perFamily[m.ID.Family] = c
	}
	sorted := append([]*FamilyState(nil), states...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Family.ID < sorted[j].Family.ID
	})
	rw := tsv.NewRowWriter(w)
	for _, st := range sorted {
		c := perFamily[st.Family.ID]
		row := familyRow{
			Family:         st.Family.ID,
			State:          st.State.String(),
			Length:         int64(st.Family.Len()),
			GOICovered:     countPositive(st.GOI),
			RefCovered:     countPositive(st.Ref),
			GOIHits:        int64(len(st.GOIHits)),
			RefHits:        int64(len(st.RefHits)),
			Markers:        c.n,
			MarkerResidues: c.residues,
		}
		if err := rw.Write(&row); err != nil {
			return err
		}
	}
	return rw.Flush()
}
