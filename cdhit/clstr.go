// Package cdhit reads the cluster files written by CD-HIT when it clusters
// quasi markers, and turns them into a family.ClusterMap.
//
// A .clstr file lists clusters as
//
//	>Cluster 0
//	0	33aa, >famA_QM1_#01... *
//	1	33aa, >famB_JM40_#01... at 95.00%
//
// where the member marked '*' represents the cluster.
package cdhit

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/shortbred/family"
	"github.com/grailbio/shortbred/marker"
)

// Cluster is one cluster of markers.
type Cluster struct {
	Representative marker.ID
	Members        []marker.ID
}

// memberName extracts the sequence name of a member line and reports whether
// it is the representative.
func memberName(line string) (name string, rep bool, err error) {
	start := strings.IndexByte(line, '>')
	if start < 0 {
		return "", false, fmt.Errorf("no sequence name in %q", line)
	}
	rest := line[start+1:]
	end := strings.Index(rest, "...")
	if end < 0 {
		return "", false, fmt.Errorf("unterminated sequence name in %q", line)
	}
	return rest[:end], strings.HasSuffix(strings.TrimSpace(rest[end+3:]), "*"), nil
}

// Parse reads all clusters from r.  Marker names that ParseID rejects, and
// clusters without exactly one representative, are errors.
func Parse(r io.Reader) ([]Cluster, error) {
	var (
		clusters []Cluster
		cur      *Cluster
		nRep     int
		lineNum  int
	)
	finish := func() error {
		if cur == nil {
			return nil
		}
		if nRep != 1 {
			return errors.E(errors.Invalid, fmt.Sprintf("cluster ending at line %d has %d representatives", lineNum, nRep))
		}
		clusters = append(clusters, *cur)
		return nil
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(nil, 1<<20)
	for sc.Scan() {
		lineNum++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ">Cluster") {
			if err := finish(); err != nil {
				return nil, err
			}
			cur, nRep = &Cluster{}, 0
			continue
		}
		if cur == nil {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("line %d: member before the first cluster", lineNum))
		}
		name, rep, err := memberName(line)
		if err != nil {
			return nil, errors.E(errors.Invalid, err, fmt.Sprintf("line %d", lineNum))
		}
		id, err := marker.ParseID(name)
		if err != nil {
			return nil, errors.E(err, fmt.Sprintf("line %d", lineNum))
		}
		cur.Members = append(cur.Members, id)
		if rep {
			cur.Representative = id
			nRep++
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.E(err, "read clusters")
	}
	if err := finish(); err != nil {
		return nil, err
	}
	return clusters, nil
}

// ClusterMap maps the family of every clustered quasi marker to the family of
// its cluster's representative.  Representatives map to themselves.  Only
// junction and quasi-minimal markers are clustered: true markers are logged
// and ignored, and so is a cluster whose representative is a true marker.
func ClusterMap(clusters []Cluster) family.ClusterMap {
	m := family.ClusterMap{}
	for _, c := range clusters {
		if !c.Representative.Kind.Quasi() {
			log.Error.Printf("cluster of %s: representative is not a quasi marker, cluster ignored", c.Representative)
			continue
		}
		for _, id := range c.Members {
			if !id.Kind.Quasi() {
				log.Error.Printf("cluster of %s: %s is not a quasi marker, ignored", c.Representative, id)
				continue
			}
			if prev, ok := m[id.Family]; ok && prev != c.Representative.Family {
				log.Error.Printf("family %s is in the clusters of both %s and %s", id.Family, prev, c.Representative.Family)
				continue
			}
			m[id.Family] = c.Representative.Family
		}
	}
	return m
}

// ReadFile reads a .clstr file and returns its cluster map.
func ReadFile(ctx context.Context, path string) (m family.ClusterMap, err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.E(err, "open cluster file", path)
	}
	defer func() {
		if cerr := in.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	clusters, err := Parse(in.Reader(ctx))
	if err != nil {
		return nil, errors.E(err, path)
	}
	m = ClusterMap(clusters)
	log.Printf("%s: %d clusters over %d families", path, len(clusters), len(m))
	return m, nil
}
