package marker

import (
	"io"
	"strconv"

	"github.com/grailbio/base/tsv"
	"github.com/grailbio/shortbred/blast"
	"github.com/grailbio/shortbred/interval"
)

// WriteQuasiReport writes, for every junction and quasi-minimal family, its
// window and the hits that overlap it.  Only families with a marker in
// markers are reported.  Each row is
//
//	marker  start  end  score  source  target  identity  aln_len  qstart  qend
//
// with 1-based inclusive window coordinates and source "goi" or "ref".  A
// window that no hit overlaps gets a single row with empty hit columns.
func WriteQuasiReport(w io.Writer, states []*FamilyState, markers []Marker) error {
	ids := map[string]ID{}
	for _, m := range markers {
		if m.ID.Kind.Quasi() {
			ids[m.ID.Family] = m.ID
		}
	}
	tw := tsv.NewWriter(w)
	tw.WriteString("marker\tstart\tend\tscore\tsource\ttarget\tidentity\taln_len\tqstart\tqend")
	if err := tw.EndLine(); err != nil {
		return err
	}
	for _, st := range states {
		id, ok := ids[st.Family.ID]
		if !ok || (st.State != Junction && st.State != QuasiMinimal) {
			continue
		}
		win := interval.Entry{Start0: st.Quasi.Start, End: st.Quasi.End}
		prefix := func() {
			tw.WriteString(id.String())
			tw.WriteInt64(int64(win.Start0 + 1))
			tw.WriteInt64(int64(win.End))
			tw.WriteInt64(int64(st.Quasi.Score))
		}
		n := 0
		for _, src := range []struct {
			name string
			hits []blast.Hit
		}{{"goi", st.GOIHits}, {"ref", st.RefHits}} {
			for i := range src.hits {
				h := &src.hits[i]
				start, end := h.QueryRange()
				if win.Overlap(interval.Entry{Start0: start, End: end}) == 0 {
					continue
				}
				prefix()
				tw.WriteString(src.name)
				tw.WriteString(h.Target)
				tw.WriteString(strconv.FormatFloat(h.Identity, 'g', 6, 64))
				tw.WriteInt64(int64(h.AlnLen))
				tw.WriteInt64(int64(h.QStart))
				tw.WriteInt64(int64(h.QEnd))
				if err := tw.EndLine(); err != nil {
					return err
				}
				n++
			}
		}
		if n == 0 {
			prefix()
			for i := 0; i < 6; i++ {
				tw.WriteString("")
			}
			if err := tw.EndLine(); err != nil {
				return err
			}
		}
	}
	return tw.Flush()
}
