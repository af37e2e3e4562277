package cdhit

import (
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/shortbred/family"
	"github.com/grailbio/shortbred/marker"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

const clstr = `>Cluster 0
0	33aa, >famA_QM1_#01... *
1	33aa, >famB_JM40_#01... at 95.00%
2	33aa, >famC_QM0_#01... at 91.20%
>Cluster 1
0	33aa, >famD_JM2_#01... *
`

func TestParse(t *testing.T) {
	clusters, err := Parse(strings.NewReader(clstr))
	assert.NoError(t, err)
	expect.EQ(t, len(clusters), 2)
	expect.EQ(t, clusters[0].Representative, marker.ID{Family: "famA", Kind: marker.QM, Score: 1, Ordinal: 1})
	expect.EQ(t, len(clusters[0].Members), 3)
	expect.EQ(t, clusters[1].Members, []marker.ID{{Family: "famD", Kind: marker.JM, Score: 2, Ordinal: 1}})

	m := ClusterMap(clusters)
	expect.EQ(t, m, family.ClusterMap{"famA": "famA", "famB": "famA", "famC": "famA", "famD": "famD"})
	expect.EQ(t, m.Representatives(), []string{"famA", "famD"})
}

func TestClusterMapSkipsTrueMarkers(t *testing.T) {
	clusters, err := Parse(strings.NewReader(`>Cluster 0
0	33aa, >famA_QM1_#01... *
1	10aa, >famB_TM_#01... at 95.00%
2	33aa, >famC_JM4_#01... at 92.00%
>Cluster 1
0	10aa, >famD_TM_#01... *
1	33aa, >famE_QM0_#01... at 91.00%
`))
	assert.NoError(t, err)
	m := ClusterMap(clusters)
	expect.EQ(t, m, family.ClusterMap{"famA": "famA", "famC": "famA"})
	expect.True(t, m.IsRepresentative("famB"))
	expect.True(t, m.IsRepresentative("famE"))
}

func TestParseErrors(t *testing.T) {
	for _, data := range []string{
		"0\t33aa, >famA_QM1_#01... *\n",
		">Cluster 0\n0\t33aa, >famA_QM1_#01... at 90%\n",
		">Cluster 0\n0\t33aa, >famA_QM1_#01... *\n1\t33aa, >famB_QM1_#01... *\n",
		">Cluster 0\n0\t33aa, >notamarker... *\n",
		">Cluster 0\n0\t33aa, famA_QM1_#01 *\n",
	} {
		_, err := Parse(strings.NewReader(data))
		expect.True(t, err != nil, "data: %q", data)
	}
	clusters, err := Parse(strings.NewReader(""))
	assert.NoError(t, err)
	expect.EQ(t, len(clusters), 0)
}

func TestReadFile(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	path := filepath.Join(tempDir, "quasi.faa.clstr")
	assert.NoError(t, ioutil.WriteFile(path, []byte(clstr), 0644))
	m, err := ReadFile(vcontext.Background(), path)
	assert.NoError(t, err)
	expect.EQ(t, m.Resolve("famC"), "famA")

	fams := family.Map{"p1": "famB", "p2": "famA", "p3": "famE"}
	expect.EQ(t, fams.Remap(m), family.Map{"p1": "famA", "p2": "famA", "p3": "famE"})
}
