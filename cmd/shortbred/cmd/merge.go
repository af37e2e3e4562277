package cmd

import (
	"context"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/shortbred/merge"
)

type mergeFlags struct {
	clusters      string
	proteinOutput string
	clusterOutput string
}

func mergeAbundance(ctx context.Context, f mergeFlags, paths []string) error {
	if f.clusters == "" {
		return errors.E(errors.Invalid, "-clusters is required")
	}
	if len(paths) == 0 {
		return errors.E(errors.Invalid, "merge takes one or more abundance files")
	}
	clusters, err := merge.ReadClusters(ctx, f.clusters)
	if err != nil {
		return err
	}
	samples, err := merge.ReadSamples(ctx, paths)
	if err != nil {
		return err
	}
	proteins, clustered := merge.Merge(samples, clusters)
	if err := writeOutput(ctx, f.proteinOutput, proteins.Write); err != nil {
		return err
	}
	if err := writeOutput(ctx, f.clusterOutput, clustered.Write); err != nil {
		return err
	}
	log.Printf("merged %d samples: %d proteins, %d clusters",
		len(samples), len(proteins.Features()), len(clustered.Features()))
	return nil
}
