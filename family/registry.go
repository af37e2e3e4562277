// Package family holds the protein families marker identification works on:
// the consensus sequence of every family, the protein to family assignment,
// and the remapping produced by clustering quasi markers.
package family

import (
	"context"
	"io"
	"sort"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/shortbred/encoding/fasta"
)

// Family is one protein family and its consensus sequence.
type Family struct {
	ID        string
	Consensus string
}

// Len returns the consensus length.
func (f Family) Len() int { return len(f.Consensus) }

// Registry is the read-only set of families, in consensus file order.
type Registry struct {
	fams  []Family
	index map[string]int
}

// NewRegistry creates a registry with one family per sequence of fa.
func NewRegistry(fa *fasta.Fasta) *Registry {
	names := fa.SeqNames()
	r := &Registry{
		fams:  make([]Family, 0, len(names)),
		index: make(map[string]int, len(names)),
	}
	for _, name := range names {
		seq, err := fa.Get(name)
		if err != nil {
			// SeqNames and Get come from the same map.
			panic(err)
		}
		r.index[name] = len(r.fams)
		r.fams = append(r.fams, Family{ID: name, Consensus: seq})
	}
	return r
}

// ReadRegistry reads a consensus FASTA file, optionally compressed.
func ReadRegistry(ctx context.Context, path string) (reg *Registry, err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.E(err, "open consensus file", path)
	}
	defer func() {
		if cerr := in.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	var r io.Reader = in.Reader(ctx)
	if u, _ := compress.NewReaderPath(r, in.Name()); u != nil {
		r = u
	}
	fa, err := fasta.New(r)
	if err != nil {
		return nil, errors.E(err, "read consensus file", path)
	}
	return NewRegistry(fa), nil
}

// Families returns all families in registry order.  The caller must not
// modify the result.
func (r *Registry) Families() []Family { return r.fams }

// Len returns the number of families.
func (r *Registry) Len() int { return len(r.fams) }

// Get looks up a family by id.
func (r *Registry) Get(id string) (Family, bool) {
	i, ok := r.index[id]
	if !ok {
		return Family{}, false
	}
	return r.fams[i], true
}

// Lengths returns the consensus length of every family, keyed by id.
func (r *Registry) Lengths() map[string]int {
	m := make(map[string]int, len(r.fams))
	for _, f := range r.fams {
		m[f.ID] = len(f.Consensus)
	}
	return m
}

// Orphans returns, sorted, the families that m assigns proteins to but that
// have no consensus sequence.
func (r *Registry) Orphans(m Map) []string {
	seen := map[string]bool{}
	var orphans []string
	for _, fam := range m {
		if _, ok := r.index[fam]; ok || seen[fam] {
			continue
		}
		seen[fam] = true
		orphans = append(orphans, fam)
	}
	sort.Strings(orphans)
	return orphans
}
