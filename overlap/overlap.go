// Package overlap converts alignment hit tables into per-residue coverage
// counts: for every query sequence, the number of qualifying hits that cover
// each of its residues.
package overlap

import (
	"math"

	"github.com/grailbio/base/log"
	"github.com/grailbio/shortbred/blast"
)

// AmbiguousCount is added to the coverage of every 'X' residue of a consensus
// sequence by MarkAmbiguous.
const AmbiguousCount = 1 << 20

// Filter selects the hits that contribute to coverage.
type Filter struct {
	// MinIdentity is the minimum identity of a hit, as a fraction in [0, 1].
	MinIdentity float64
	// MaxLenFraction is the maximum alignment length of a hit, as a fraction of
	// the query length.  1.0 keeps hits of any length.
	MaxLenFraction float64
	// MinAlnLen is the minimum alignment length of a hit, in residues.
	MinAlnLen int
}

// Keep reports whether h passes the filter.  qlen is the query length to use
// when the hit doesn't carry one.  Self-hits never pass.
func (f Filter) Keep(h *blast.Hit, qlen int) bool {
	if h.Self() {
		return false
	}
	if h.QLen > 0 {
		qlen = h.QLen
	}
	return h.Identity/100 >= f.MinIdentity &&
		float64(h.AlnLen) <= f.MaxLenFraction*float64(qlen) &&
		h.AlnLen >= f.MinAlnLen
}

// DefaultMinAlnLen returns the minimum alignment length used when none is
// configured: 80% of the minimum marker length, rounded up.
func DefaultMinAlnLen(markerLength int) int {
	return int(math.Ceil(float64(markerLength) * 0.8))
}

// Counts maps a query id to its coverage array.
type Counts map[string][]int

// HitInfo maps a query id to the hits retained for it, in table order.
type HitInfo map[string][]blast.Hit

// Counter accumulates coverage counts one hit at a time.
type Counter struct {
	filter   Filter
	keepInfo bool
	// lengths supplies query lengths for tables without a qlen column.
	lengths map[string]int
	counts  Counts
	info    HitInfo
	nKept   int
	nSelf   int
	nNoLen  int
}

// NewCounter creates an empty Counter.  Lengths may be nil; it is consulted
// only for hits that don't carry the query length.
func NewCounter(filter Filter, keepInfo bool, lengths map[string]int) *Counter {
	c := &Counter{
		filter:   filter,
		keepInfo: keepInfo,
		lengths:  lengths,
		counts:   Counts{},
	}
	if keepInfo {
		c.info = HitInfo{}
	}
	return c
}

// Add processes one hit.  It returns true if the hit passed the filter.
func (c *Counter) Add(h *blast.Hit) bool {
	if h.Self() {
		c.nSelf++
		return false
	}
	qlen := h.QLen
	if qlen <= 0 {
		qlen = c.lengths[h.Query]
	}
	if qlen <= 0 {
		c.nNoLen++
		log.Debug.Printf("overlap: no length for query %s, hit to %s ignored", h.Query, h.Target)
		return false
	}
	if !c.filter.Keep(h, qlen) {
		return false
	}
	counts, ok := c.counts[h.Query]
	if !ok {
		counts = make([]int, qlen)
		c.counts[h.Query] = counts
	}
	start, end := h.QueryRange()
	if start < 0 {
		start = 0
	}
	if end > len(counts) {
		end = len(counts)
	}
	for i := start; i < end; i++ {
		counts[i]++
	}
	if c.keepInfo {
		c.info[h.Query] = append(c.info[h.Query], *h)
	}
	c.nKept++
	return true
}

// Result returns the coverage arrays, and the retained hits if the Counter
// was created with keepInfo.  The Counter must not be used afterwards.
func (c *Counter) Result() (Counts, HitInfo) {
	log.Printf("overlap: %d hits kept, %d self-hits skipped, %d without query length",
		c.nKept, c.nSelf, c.nNoLen)
	return c.counts, c.info
}

// Count computes coverage arrays for hits.  Hits must carry query lengths; use
// a Counter for tables without them.  If keepInfo is false the returned
// HitInfo is nil.  An empty hits yields empty maps.
func Count(hits []blast.Hit, filter Filter, keepInfo bool) (Counts, HitInfo) {
	c := NewCounter(filter, keepInfo, nil)
	for i := range hits {
		c.Add(&hits[i])
	}
	return c.Result()
}

// Resize returns a copy of counts adjusted to length n: padded with zeros or
// truncated.  A nil counts yields an all-zero array.
func Resize(counts []int, n int) []int {
	out := make([]int, n)
	copy(out, counts)
	return out
}

// Combine returns the element-wise sum of a and b, which must have the same
// length.
func Combine(a, b []int) []int {
	if len(a) != len(b) {
		log.Panicf("overlap.Combine: length mismatch %d != %d", len(a), len(b))
	}
	sum := make([]int, len(a))
	for i := range a {
		sum[i] = a[i] + b[i]
	}
	return sum
}

// MarkAmbiguous adds AmbiguousCount to counts at every 'X' residue of seq, so
// that ambiguous consensus positions never join a unique region.  Counts must
// have len(seq) entries.
func MarkAmbiguous(counts []int, seq string) {
	for i := 0; i < len(seq) && i < len(counts); i++ {
		if seq[i] == 'X' || seq[i] == 'x' {
			counts[i] += AmbiguousCount
		}
	}
}
