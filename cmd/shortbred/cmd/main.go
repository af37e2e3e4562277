package cmd

import (
	"fmt"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/shortbred/marker"
	"v.io/x/lib/cmdline"
)

func newCmdIdentify() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "identify",
		Short: "Find marker sequences for protein families",
		Long: `
identify reads the consensus sequences of protein families, the family of every
protein, and two hit tables of the consensus sequences: one against the
consensus sequences themselves and one against a reference database.  It
writes true markers (regions no hit covers), and junction and quasi-minimal
markers for families without true markers.

Quasi markers are written with -quasi-output so that they can be clustered,
for example with "cd-hit -c <qclustid> -d 0 -b 8 -g 1 -aL 1.0".  Running
identify again with -quasi-clusters set to the resulting .clstr file keeps
one quasi marker per cluster and remaps the family table accordingly.`,
	}
	f := identifyFlags{opts: marker.DefaultOpts}
	cmd.Flags.StringVar(&f.consensus, "consensus", "", "FASTA file of family consensus sequences")
	cmd.Flags.StringVar(&f.famMap, "map", "", "Tab-separated family<TAB>protein table")
	cmd.Flags.StringVar(&f.goiHits, "goi-hits", "", "Hit table of the consensus sequences against themselves")
	cmd.Flags.StringVar(&f.refHits, "ref-hits", "", "Hit table of the consensus sequences against the reference database")
	cmd.Flags.StringVar(&f.markers, "markers", "markers.faa", "Output marker FASTA file")
	cmd.Flags.StringVar(&f.finalMap, "final-map", "final.map", "Output family<TAB>protein table after clustering")
	cmd.Flags.StringVar(&f.logPath, "log", "identify_log.txt", "Output parameters and statistics; empty to skip")
	cmd.Flags.StringVar(&f.quasiOutput, "quasi-output", "", "If set, write junction and quasi-minimal markers to this FASTA file")
	cmd.Flags.StringVar(&f.clusters, "quasi-clusters", "", "CD-HIT .clstr file of the quasi markers")
	cmd.Flags.StringVar(&f.familyStats, "family-stats", "", "If set, write per-family statistics to this TSV file")
	cmd.Flags.StringVar(&f.qmReport, "qm-report", "", "If set, write the hits overlapping every quasi marker to this TSV file")
	cmd.Flags.StringVar(&f.searchProgram, "search-program", "diamond", "Format of the hit tables: blast, diamond, usearch or rapsearch2")
	cmd.Flags.Float64Var(&f.identity, "id", 0.90, "Minimum identity of a hit, as a fraction")
	cmd.Flags.Float64Var(&f.lenFraction, "len", 0.15, "Maximum alignment length of a reference hit, as a fraction of the query length")
	cmd.Flags.IntVar(&f.minAln, "min-aln", 0, "Minimum alignment length of a hit; 0 means 80% of -marker-length")
	cmd.Flags.IntVar(&f.opts.MarkerLength, "marker-length", marker.DefaultOpts.MarkerLength, "Minimum true marker length")
	cmd.Flags.IntVar(&f.opts.TotalLength, "total-length", marker.DefaultOpts.TotalLength, "Maximum total marker length per family")
	cmd.Flags.IntVar(&f.opts.QMLength, "qm-length", marker.DefaultOpts.QMLength, "Length of junction and quasi-minimal markers")
	cmd.Flags.IntVar(&f.opts.QThresh, "qthresh", marker.DefaultOpts.QThresh, "Maximum quasi score")
	cmd.Flags.IntVar(&f.opts.ShortRegion, "short-region", marker.DefaultOpts.ShortRegion, "Residues of a junction marker every hit must leave uncovered; 0 means 40% of -qm-length")
	cmd.Flags.IntVar(&f.opts.XLimit, "xlimit", marker.DefaultOpts.XLimit, "Maximum number of X residues in a junction marker")
	cmd.Flags.Float64Var(&f.qClustID, "qclustid", 0.90, "Identity used to cluster quasi markers; recorded in the log")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 0 {
			return fmt.Errorf("identify takes no positional arguments, but got %v", argv)
		}
		return identify(vcontext.Background(), &f)
	})
	return cmd
}

func newCmdMerge() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "merge",
		Short:    "Merge per-sample abundance tables into protein and cluster matrices",
		ArgsName: "abundance...",
	}
	f := mergeFlags{}
	cmd.Flags.StringVar(&f.clusters, "clusters", "", "Tab-separated cluster<TAB>protein table")
	cmd.Flags.StringVar(&f.proteinOutput, "protein-output", "protein-abundance.txt", "Output matrix of protein abundance")
	cmd.Flags.StringVar(&f.clusterOutput, "cluster-output", "cluster-abundance.txt", "Output matrix of cluster abundance")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		return mergeAbundance(vcontext.Background(), f, argv)
	})
	return cmd
}

// Run runs the shortbred command line.  It does not return.
func Run() {
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(
		&cmdline.Command{
			Name:     "shortbred",
			Short:    "Find and use protein family marker sequences",
			LookPath: false,
			Children: []*cmdline.Command{
				newCmdIdentify(),
				newCmdMerge(),
			},
		})
}
