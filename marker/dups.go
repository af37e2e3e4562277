package marker

import (
	farm "github.com/dgryski/go-farm"
	"github.com/grailbio/base/log"
)

// Duplicate is a marker sequence emitted for more than one family.
type Duplicate struct {
	Seq string
	// IDs lists the markers sharing Seq, in emission order.
	IDs []ID
}

// FindDuplicates reports identical marker sequences that belong to different
// families.  Such markers can't tell their families apart.  Each duplicate is
// logged as an error; the result is ordered by first appearance.
func FindDuplicates(markers []Marker) []Duplicate {
	// Sequences that collide on the fingerprint are kept in separate groups.
	byHash := map[uint64][]*Duplicate{}
	var groups []*Duplicate
	for _, m := range markers {
		h := farm.Hash64([]byte(m.Seq))
		var g *Duplicate
		for _, c := range byHash[h] {
			if c.Seq == m.Seq {
				g = c
				break
			}
		}
		if g == nil {
			g = &Duplicate{Seq: m.Seq}
			byHash[h] = append(byHash[h], g)
			groups = append(groups, g)
		}
		g.IDs = append(g.IDs, m.ID)
	}
	var dups []Duplicate
	for _, g := range groups {
		if multiFamily(g.IDs) {
			dups = append(dups, *g)
		}
	}
	for _, d := range dups {
		log.Error.Printf("marker sequence %s is shared by %d markers, first %s", d.Seq, len(d.IDs), d.IDs[0])
	}
	return dups
}

func multiFamily(ids []ID) bool {
	for _, id := range ids[1:] {
		if id.Family != ids[0].Family {
			return true
		}
	}
	return false
}
