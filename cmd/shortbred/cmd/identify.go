package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/shortbred/blast"
	"github.com/grailbio/shortbred/cdhit"
	"github.com/grailbio/shortbred/encoding/fasta"
	"github.com/grailbio/shortbred/family"
	"github.com/grailbio/shortbred/marker"
	"github.com/grailbio/shortbred/overlap"
)

// identifyFlags holds the inputs, outputs and thresholds of the identify
// command.
type identifyFlags struct {
	consensus string
	famMap    string
	goiHits   string
	refHits   string

	markers     string
	finalMap    string
	logPath     string
	quasiOutput string
	clusters    string
	familyStats string
	qmReport    string

	identity      float64
	lenFraction   float64
	minAln        int
	qClustID      float64
	searchProgram string

	opts marker.Opts
}

// writeMarkers writes markers as FASTA.
func writeMarkers(markers []marker.Marker) func(io.Writer) error {
	return func(w io.Writer) error {
		fw := fasta.NewWriter(w)
		for _, m := range markers {
			if err := fw.Write(m.Record()); err != nil {
				return err
			}
		}
		return fw.Flush()
	}
}

// readCounts reads a hit table and computes its coverage arrays.
func readCounts(ctx context.Context, path string, backend blast.Backend, filter overlap.Filter, lengths map[string]int) (overlap.Counts, overlap.HitInfo, error) {
	hits, err := blast.ReadFile(ctx, path, backend)
	if err != nil {
		return nil, nil, err
	}
	c := overlap.NewCounter(filter, true, lengths)
	for i := range hits {
		c.Add(&hits[i])
	}
	counts, info := c.Result()
	return counts, info, nil
}

func (f *identifyFlags) writeParams(w io.Writer, minAln int) error {
	_, err := fmt.Fprintf(w, `Search program:	%s
Identity threshold:	%g
Maximum alignment length fraction:	%g
Minimum alignment length:	%d
Minimum marker length:	%d
Total marker length:	%d
QM length:	%d
QM threshold:	%d
Junction short region:	%d
X limit:	%d
QM cluster identity:	%g
`, f.searchProgram, f.identity, f.lenFraction, minAln, f.opts.MarkerLength, f.opts.TotalLength,
		f.opts.QMLength, f.opts.QThresh, f.opts.ShortRegionLen(), f.opts.XLimit, f.qClustID)
	return err
}

func identify(ctx context.Context, f *identifyFlags) error {
	if f.consensus == "" || f.famMap == "" || f.goiHits == "" || f.refHits == "" {
		return errors.E(errors.Invalid, "-consensus, -map, -goi-hits and -ref-hits are required")
	}
	if err := f.opts.Validate(); err != nil {
		return err
	}
	backend, err := blast.ParseBackend(f.searchProgram)
	if err != nil {
		return err
	}
	minAln := f.minAln
	if minAln <= 0 {
		minAln = overlap.DefaultMinAlnLen(f.opts.MarkerLength)
	}

	reg, err := family.ReadRegistry(ctx, f.consensus)
	if err != nil {
		return err
	}
	fams, err := family.ReadMap(ctx, f.famMap)
	if err != nil {
		return err
	}
	log.Printf("read %d families, %d proteins", reg.Len(), len(fams))

	// Hits against other families count at any length, reference hits only
	// when they are short.
	lengths := reg.Lengths()
	goi, goiHits, err := readCounts(ctx, f.goiHits, backend,
		overlap.Filter{MinIdentity: f.identity, MaxLenFraction: 1.0, MinAlnLen: minAln}, lengths)
	if err != nil {
		return err
	}
	ref, refHits, err := readCounts(ctx, f.refHits, backend,
		overlap.Filter{MinIdentity: f.identity, MaxLenFraction: f.lenFraction, MinAlnLen: minAln}, lengths)
	if err != nil {
		return err
	}

	states := marker.NewStates(reg, goi, ref, goiHits, refHits)
	stats := marker.Classify(states, f.opts)
	orphans := reg.Orphans(fams)
	for _, fam := range orphans {
		log.Error.Printf("family %s has proteins but no consensus sequence; it gets no markers", fam)
	}
	stats.OrphanFamilies = len(orphans)

	markers := marker.Emit(states, f.opts)
	quasi := marker.QuasiOnly(markers)
	if f.quasiOutput != "" {
		if err := writeOutput(ctx, f.quasiOutput, writeMarkers(quasi)); err != nil {
			return err
		}
	}
	var clusters family.ClusterMap
	if f.clusters != "" {
		if clusters, err = cdhit.ReadFile(ctx, f.clusters); err != nil {
			return err
		}
		for _, rep := range clusters.Representatives() {
			if _, ok := reg.Get(rep); !ok {
				return errors.E(errors.Invalid, f.clusters, "cluster representative", rep, "has no consensus sequence")
			}
		}
	}
	stats.QuasiBeforeClustering = len(quasi)
	markers = marker.KeepRepresentatives(markers, clusters)
	stats.QuasiAfterClustering = len(marker.QuasiOnly(markers))
	fams = fams.Remap(clusters)
	stats.AddMarkers(markers, fams.Families())
	marker.FindDuplicates(markers)

	if err := writeOutput(ctx, f.markers, writeMarkers(markers)); err != nil {
		return err
	}
	if err := writeOutput(ctx, f.finalMap, fams.Write); err != nil {
		return err
	}
	if f.logPath != "" {
		err := writeOutput(ctx, f.logPath, func(w io.Writer) error {
			if err := f.writeParams(w, minAln); err != nil {
				return err
			}
			return stats.Write(w)
		})
		if err != nil {
			return err
		}
	}
	if f.familyStats != "" {
		err := writeOutput(ctx, f.familyStats, func(w io.Writer) error {
			return marker.WriteFamilyStats(w, states, markers)
		})
		if err != nil {
			return err
		}
	}
	if f.qmReport != "" {
		err := writeOutput(ctx, f.qmReport, func(w io.Writer) error {
			return marker.WriteQuasiReport(w, states, markers)
		})
		if err != nil {
			return err
		}
	}
	log.Printf("wrote %d markers for %d families to %s", stats.TotalMarkers(), stats.FamiliesWithMarkers, f.markers)
	return nil
}
