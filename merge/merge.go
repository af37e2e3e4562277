// Package merge combines per-sample abundance tables into feature by sample
// matrices, one with a row per protein and one with a row per cluster of
// proteins.
package merge

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/base/tsv"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// NA is the cluster of a protein missing from the cluster table.
const NA = "#N/A"

// sep joins the cluster and protein of a protein row name.
const sep = "|"

// Sample is the abundance table of one sample.
type Sample struct {
	Name string
	// Abundance maps a protein accession to its abundance.
	Abundance map[string]float64
}

// SampleName returns the sample name of an abundance file: its base name up
// to the first dot.
func SampleName(path string) string {
	base := filepath.Base(path)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	return base
}

var dbPrefixRE = regexp.MustCompile(`^(>)?[a-z]{2}\|`)

// CleanAccession strips database prefixes such as "sp|P12345|NAME_HUMAN"
// down to the accession.
func CleanAccession(acc string) string {
	if dbPrefixRE.MatchString(acc) {
		acc = strings.Split(acc, sep)[1]
	}
	return acc
}

// abundanceRow is the leading part of a quantification table row.  Other
// columns are ignored.
type abundanceRow struct {
	Family string
	Count  float64
}

// ReadSampleFrom parses an abundance table with a header row.  Accessions are
// cleaned; when two rows clean to the same accession the later one wins.
func ReadSampleFrom(r io.Reader, name string) (Sample, error) {
	s := Sample{Name: name, Abundance: map[string]float64{}}
	tr := tsv.NewReader(r)
	tr.HasHeaderRow = true
	for {
		var row abundanceRow
		if err := tr.Read(&row); err != nil {
			if err == io.EOF {
				break
			}
			return Sample{}, errors.E(err, "read abundance table", name)
		}
		s.Abundance[CleanAccession(row.Family)] = row.Count
	}
	return s, nil
}

// ReadSample reads the abundance file at path.
func ReadSample(ctx context.Context, path string) (s Sample, err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return Sample{}, errors.E(err, "open abundance table", path)
	}
	defer func() {
		if cerr := in.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return ReadSampleFrom(in.Reader(ctx), SampleName(path))
}

// ReadSamples reads abundance files in parallel.  The result is in path
// order.
func ReadSamples(ctx context.Context, paths []string) ([]Sample, error) {
	samples := make([]Sample, len(paths))
	err := traverse.Each(len(paths), func(i int) error {
		var err error
		samples[i], err = ReadSample(ctx, paths[i])
		return err
	})
	if err != nil {
		return nil, err
	}
	return samples, nil
}

// clusterRow is one line of a cluster table.
type clusterRow struct {
	Cluster string
	Protein string
}

// ReadClustersFrom parses a cluster<TAB>protein table into a protein to
// cluster map.
func ReadClustersFrom(r io.Reader) (map[string]string, error) {
	tr := tsv.NewReader(r)
	m := map[string]string{}
	for {
		var row clusterRow
		if err := tr.Read(&row); err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.E(err, "read cluster table")
		}
		m[row.Protein] = row.Cluster
	}
	return m, nil
}

// ReadClusters reads the cluster table at path.
func ReadClusters(ctx context.Context, path string) (m map[string]string, err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.E(err, "open cluster table", path)
	}
	defer func() {
		if cerr := in.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if m, err = ReadClustersFrom(in.Reader(ctx)); err != nil {
		return nil, errors.E(err, path)
	}
	return m, nil
}

// Matrix is a feature by sample table of abundances.  Missing entries are
// zero.
type Matrix struct {
	values map[string]map[string]float64 // sample -> feature -> abundance
}

func newMatrix() *Matrix {
	return &Matrix{values: map[string]map[string]float64{}}
}

func (m *Matrix) column(sample string) map[string]float64 {
	col, ok := m.values[sample]
	if !ok {
		col = map[string]float64{}
		m.values[sample] = col
	}
	return col
}

// Samples returns the sorted sample names.
func (m *Matrix) Samples() []string {
	names := maps.Keys(m.values)
	slices.Sort(names)
	return names
}

// Features returns the row names in output order.
func (m *Matrix) Features() []string {
	set := map[string]struct{}{}
	for _, col := range m.values {
		for f := range col {
			set[f] = struct{}{}
		}
	}
	features := maps.Keys(set)
	sort.Slice(features, func(i, j int) bool {
		return featureLess(features[i], features[j])
	})
	return features
}

// Get returns the abundance of feature in sample.
func (m *Matrix) Get(feature, sample string) float64 {
	return m.values[sample][feature]
}

// featureKey orders the cluster part of a feature name: #N/A counts as
// cluster 0, numeric clusters sort numerically and precede the others.
type featureKey struct {
	numeric bool
	num     int
	cluster string
	rest    string
}

func makeFeatureKey(feature string) featureKey {
	k := featureKey{cluster: feature}
	if i := strings.Index(feature, sep); i >= 0 {
		k.cluster, k.rest = feature[:i], feature[i+1:]
	}
	if k.cluster == NA {
		k.numeric = true
	} else if n, err := strconv.Atoi(k.cluster); err == nil {
		k.numeric, k.num = true, n
	}
	return k
}

func featureLess(a, b string) bool {
	ka, kb := makeFeatureKey(a), makeFeatureKey(b)
	if ka.numeric != kb.numeric {
		return ka.numeric
	}
	if ka.numeric && ka.num != kb.num {
		return ka.num < kb.num
	}
	if ka.cluster != kb.cluster {
		return ka.cluster < kb.cluster
	}
	return ka.rest < kb.rest
}

// Write writes m with a header row "Feature \ Sample" followed by the sample
// names, and values printed with six significant digits.
func (m *Matrix) Write(w io.Writer) error {
	samples := m.Samples()
	tw := tsv.NewWriter(w)
	tw.WriteString(`Feature \ Sample`)
	for _, s := range samples {
		tw.WriteString(s)
	}
	if err := tw.EndLine(); err != nil {
		return err
	}
	for _, f := range m.Features() {
		tw.WriteString(f)
		for _, s := range samples {
			tw.WriteString(fmt.Sprintf("%.6g", m.Get(f, s)))
		}
		if err := tw.EndLine(); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// Merge builds the protein matrix, with rows named cluster|protein, and the
// cluster matrix, whose rows sum the proteins of each cluster.  Proteins
// missing from clusters fall in cluster NA.  A sample name that appears twice
// keeps the later sample.
func Merge(samples []Sample, clusters map[string]string) (proteins, clustered *Matrix) {
	proteins, clustered = newMatrix(), newMatrix()
	seen := map[string]bool{}
	for _, s := range samples {
		if seen[s.Name] {
			log.Error.Printf("sample %s given twice, using the last one", s.Name)
			delete(proteins.values, s.Name)
			delete(clustered.values, s.Name)
		}
		seen[s.Name] = true
		pcol, ccol := proteins.column(s.Name), clustered.column(s.Name)
		prots := maps.Keys(s.Abundance)
		slices.Sort(prots) // fixed summation order
		for _, prot := range prots {
			v := s.Abundance[prot]
			cluster, ok := clusters[prot]
			if !ok {
				cluster = NA
			}
			pcol[cluster+sep+prot] = v
			ccol[cluster] += v
		}
	}
	return proteins, clustered
}
