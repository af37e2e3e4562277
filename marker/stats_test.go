package marker

import (
	"bytes"
	"strings"
	"testing"

	"github.com/grailbio/shortbred/blast"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/grailbio/testutil/h"
)

func TestStats(t *testing.T) {
	s := Stats{Families: 3, OrphanFamilies: 1}
	s.AddMarkers([]Marker{
		{ID: ID{Family: "a", Kind: TM, Ordinal: 1}, Seq: strings.Repeat("A", 10)},
		{ID: ID{Family: "a", Kind: TM, Ordinal: 2}, Seq: strings.Repeat("A", 20)},
		{ID: ID{Family: "b", Kind: QM, Ordinal: 1}, Seq: strings.Repeat("A", 33)},
		{ID: ID{Family: "a", Kind: TM, Ordinal: 3}, Seq: strings.Repeat("A", 8)},
	}, []string{"a", "b", "c", "orphan"})
	expect.EQ(t, s.TrueMarkers, 3)
	expect.EQ(t, s.QuasiMarkers, 1)
	expect.EQ(t, s.TotalMarkers(), 4)
	expect.EQ(t, s.FamiliesWithMarkers, 2)
	expect.EQ(t, s.FamiliesWithoutMarkers, 2)
	expect.EQ(t, s.MarkerLengthMean, 17.75)
	expect.EQ(t, s.MarkerLengthMedian, 10.0)

	var buf bytes.Buffer
	assert.NoError(t, s.Write(&buf))
	for _, line := range []string{"Total Markers:\t4\n", "Families without Markers:\t2\n", "Marker length, mean:\t17.75\n"} {
		expect.True(t, strings.Contains(buf.String(), line), "missing %q in %s", line, buf.String())
	}

	var empty Stats
	empty.AddMarkers(nil, []string{"a"})
	expect.EQ(t, empty.MarkerLengthMean, 0.0)
	expect.EQ(t, empty.FamiliesWithoutMarkers, 1)

	// A family clustered away owns no proteins, so it is not counted.
	clustered := Stats{Families: 2}
	clustered.AddMarkers([]Marker{{ID: ID{Family: "a", Kind: QM, Score: 33, Ordinal: 1}, Seq: "MKV"}}, []string{"a"})
	expect.EQ(t, clustered.FamiliesWithMarkers, 1)
	expect.EQ(t, clustered.FamiliesWithoutMarkers, 0)
}

func TestFamilyStatsSorted(t *testing.T) {
	b := NewFamilyState(fam("b", protein(12)), []int{0, 1}, []int{0, 0, 1}, nil, nil)
	a := NewFamilyState(fam("a", protein(9)), nil, nil, nil, nil)
	states := []*FamilyState{b, a}
	Classify(states, DefaultOpts)
	markers := Emit(states, DefaultOpts)

	var buf bytes.Buffer
	assert.NoError(t, WriteFamilyStats(&buf, states, markers))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	expect.EQ(t, lines, []string{
		"family\tstate\tlength\tgoi_covered\tref_covered\tgoi_hits\tref_hits\tmarkers\tmarker_residues",
		"a\ttrue-marker\t9\t0\t0\t0\t0\t1\t9",
		"b\ttrue-marker\t12\t1\t1\t0\t0\t1\t9",
	})
}

func TestFindDuplicates(t *testing.T) {
	markers := []Marker{
		{ID: ID{Family: "a", Kind: TM, Ordinal: 1}, Seq: "MKVLAEGHIK"},
		{ID: ID{Family: "a", Kind: TM, Ordinal: 2}, Seq: "MKVLAEGHIK"},
		{ID: ID{Family: "b", Kind: TM, Ordinal: 1}, Seq: "PQRSTVWYAC"},
		{ID: ID{Family: "c", Kind: QM, Score: 1, Ordinal: 1}, Seq: "PQRSTVWYAC"},
	}
	dups := FindDuplicates(markers)
	expect.EQ(t, len(dups), 1)
	expect.EQ(t, dups[0].Seq, "PQRSTVWYAC")
	expect.That(t, dups[0].IDs, h.ElementsAre(markers[2].ID, markers[3].ID))
	expect.EQ(t, len(FindDuplicates(markers[:2])), 0)
}

func TestQuasiReport(t *testing.T) {
	const n = 60
	goiHits := []blast.Hit{spanHit("jm", "T1", 0, 30)}
	refHits := []blast.Hit{spanHit("jm", "R1", 25, 60), spanHit("jm", "R2", 50, 60)}
	all := append(append([]blast.Hit(nil), goiHits...), refHits...)
	st := NewFamilyState(fam("jm", protein(n)), coverage(n, goiHits...), coverage(n, refHits...), goiHits, refHits)
	tm := NewFamilyState(fam("tm", protein(20)), nil, nil, nil, nil)
	states := []*FamilyState{tm, st}
	Classify(states, DefaultOpts)
	expect.EQ(t, st.State, Junction)
	expect.EQ(t, coverage(n, all...), st.Combined)

	var buf bytes.Buffer
	assert.NoError(t, WriteQuasiReport(&buf, states, Emit(states, DefaultOpts)))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	// The window [10,43) misses R2.
	expect.EQ(t, lines, []string{
		"marker\tstart\tend\tscore\tsource\ttarget\tidentity\taln_len\tqstart\tqend",
		"jm_JM38_#01\t11\t43\t38\tgoi\tT1\t100\t30\t1\t30",
		"jm_JM38_#01\t11\t43\t38\tref\tR1\t100\t35\t26\t60",
	})
}
