package merge

import (
	"bytes"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func TestSampleNameAndAccession(t *testing.T) {
	expect.EQ(t, SampleName("/data/run1/SRS011061.quantify.txt"), "SRS011061")
	expect.EQ(t, SampleName("plain"), "plain")
	expect.EQ(t, CleanAccession("sp|P12345|NAME_HUMAN"), "P12345")
	expect.EQ(t, CleanAccession(">tr|Q99999|X"), "Q99999")
	expect.EQ(t, CleanAccession("UniRef90_P12345"), "UniRef90_P12345")
	expect.EQ(t, CleanAccession("ABC|P12345"), "ABC|P12345")
}

const quantify = "Family\tCount\tHits\tTotMarkerLength\n" +
	"sp|P1|A\t1.5\t10\t100\n" +
	"P2\t2\t3\t33\n" +
	"P3\t0.25\t1\t40\n"

func TestReadSample(t *testing.T) {
	s, err := ReadSampleFrom(strings.NewReader(quantify), "s1")
	assert.NoError(t, err)
	expect.EQ(t, s.Abundance, map[string]float64{"P1": 1.5, "P2": 2, "P3": 0.25})
}

func TestMerge(t *testing.T) {
	clusters, err := ReadClustersFrom(strings.NewReader("10\tP1\n2\tP2\nS1\tP4\n"))
	assert.NoError(t, err)
	expect.EQ(t, clusters, map[string]string{"P1": "10", "P2": "2", "P4": "S1"})

	samples := []Sample{
		{Name: "s2", Abundance: map[string]float64{"P1": 1, "P4": 1.0 / 3}},
		{Name: "s1", Abundance: map[string]float64{"P1": 1.5, "P2": 2, "P3": 0.25, "P5": 1}},
	}
	proteins, clustered := Merge(samples, clusters)
	expect.EQ(t, proteins.Samples(), []string{"s1", "s2"})
	expect.EQ(t, proteins.Features(), []string{"#N/A|P3", "#N/A|P5", "2|P2", "10|P1", "S1|P4"})

	var buf bytes.Buffer
	assert.NoError(t, proteins.Write(&buf))
	expect.EQ(t, buf.String(), "Feature \\ Sample\ts1\ts2\n"+
		"#N/A|P3\t0.25\t0\n"+
		"#N/A|P5\t1\t0\n"+
		"2|P2\t2\t0\n"+
		"10|P1\t1.5\t1\n"+
		"S1|P4\t0\t0.333333\n")

	buf.Reset()
	assert.NoError(t, clustered.Write(&buf))
	expect.EQ(t, buf.String(), "Feature \\ Sample\ts1\ts2\n"+
		"#N/A\t1.25\t0\n"+
		"2\t2\t0\n"+
		"10\t1.5\t1\n"+
		"S1\t0\t0.333333\n")
}

func TestMergeDuplicateSample(t *testing.T) {
	samples := []Sample{
		{Name: "s", Abundance: map[string]float64{"P1": 1}},
		{Name: "s", Abundance: map[string]float64{"P2": 2}},
	}
	proteins, _ := Merge(samples, nil)
	expect.EQ(t, proteins.Features(), []string{"#N/A|P2"})
	expect.EQ(t, proteins.Get("#N/A|P2", "s"), 2.0)
}

func TestReadSamples(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	var paths []string
	for _, name := range []string{"b.txt", "a.quant.txt"} {
		path := filepath.Join(tempDir, name)
		assert.NoError(t, ioutil.WriteFile(path, []byte(quantify), 0644))
		paths = append(paths, path)
	}
	clusterPath := filepath.Join(tempDir, "clusters.txt")
	assert.NoError(t, ioutil.WriteFile(clusterPath, []byte("1\tP1\n"), 0644))

	ctx := vcontext.Background()
	samples, err := ReadSamples(ctx, paths)
	assert.NoError(t, err)
	expect.EQ(t, samples[0].Name, "b")
	expect.EQ(t, samples[1].Name, "a")
	clusters, err := ReadClusters(ctx, clusterPath)
	assert.NoError(t, err)
	_, clustered := Merge(samples, clusters)
	expect.EQ(t, clustered.Get("1", "a"), 1.5)
	expect.EQ(t, clustered.Get(NA, "b"), 2.25)

	_, err = ReadSamples(ctx, []string{filepath.Join(tempDir, "missing.txt")})
	expect.True(t, err != nil)
}
