package family

import (
	"context"
	"io"
	"sort"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Map assigns each protein id to a family id.
type Map map[string]string

// mapRow is one line of a family map file.
type mapRow struct {
	Family  string
	Protein string
}

// ReadMapFrom parses a tab-separated family<TAB>protein table.  A protein
// listed twice takes its last family.
func ReadMapFrom(r io.Reader) (Map, error) {
	tr := tsv.NewReader(r)
	tr.Comment = '#'
	m := Map{}
	for {
		var row mapRow
		if err := tr.Read(&row); err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.E(err, "read family map")
		}
		if prev, ok := m[row.Protein]; ok && prev != row.Family {
			log.Error.Printf("protein %s assigned to both %s and %s", row.Protein, prev, row.Family)
		}
		m[row.Protein] = row.Family
	}
	return m, nil
}

// ReadMap reads a family map file.
func ReadMap(ctx context.Context, path string) (m Map, err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.E(err, "open family map", path)
	}
	defer func() {
		if cerr := in.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if m, err = ReadMapFrom(in.Reader(ctx)); err != nil {
		return nil, errors.E(err, path)
	}
	return m, nil
}

// Families returns the sorted, distinct family ids of m.
func (m Map) Families() []string {
	set := make(map[string]struct{}, len(m))
	for _, fam := range m {
		set[fam] = struct{}{}
	}
	fams := maps.Keys(set)
	slices.Sort(fams)
	return fams
}

// Remap returns a new Map in which every protein of a clustered family is
// assigned to the family's cluster representative.  Remap(c).Remap(c) equals
// Remap(c).
func (m Map) Remap(c ClusterMap) Map {
	out := make(Map, len(m))
	for prot, fam := range m {
		out[prot] = c.Resolve(fam)
	}
	return out
}

// Write writes m as family<TAB>protein lines sorted by family, then protein.
func (m Map) Write(w io.Writer) error {
	rows := make([]mapRow, 0, len(m))
	for prot, fam := range m {
		rows = append(rows, mapRow{Family: fam, Protein: prot})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Family != rows[j].Family {
			return rows[i].Family < rows[j].Family
		}
		return rows[i].Protein < rows[j].Protein
	})
	tw := tsv.NewWriter(w)
	for _, row := range rows {
		tw.WriteString(row.Family)
		tw.WriteString(row.Protein)
		if err := tw.EndLine(); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// ClusterMap maps a clustered family to the family that represents its
// cluster.  Families absent from the map represent themselves.
type ClusterMap map[string]string

// Resolve follows fam through the map to a family that represents itself.
// If the chain loops, the smallest family id on the loop is returned.
func (c ClusterMap) Resolve(fam string) string {
	var seen map[string]bool
	cur := fam
	for {
		next, ok := c[cur]
		if !ok || next == cur {
			return cur
		}
		if seen == nil {
			seen = map[string]bool{}
		}
		if seen[cur] {
			// Loop: pick a stable member.
			min := cur
			for f := c[cur]; f != cur; f = c[f] {
				if f < min {
					min = f
				}
			}
			return min
		}
		seen[cur] = true
		cur = next
	}
}

// Representatives returns the sorted set of families that represent at least
// one member of c, after resolving chains.
func (c ClusterMap) Representatives() []string {
	set := map[string]struct{}{}
	for fam := range c {
		set[c.Resolve(fam)] = struct{}{}
	}
	reps := maps.Keys(set)
	slices.Sort(reps)
	return reps
}

// IsRepresentative reports whether fam is kept after clustering: either it
// is unclustered or it resolves to itself.
func (c ClusterMap) IsRepresentative(fam string) bool {
	return c.Resolve(fam) == fam
}
