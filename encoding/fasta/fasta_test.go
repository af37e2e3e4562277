package fasta_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/grailbio/shortbred/encoding/fasta"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

var fastaData = ">seq1\n" + "MTKLE\nTSVNE\nWC\n" + ">seq2 A viral protein\n" + "MSDL\r\n" + "LEYK\n"

func TestGet(t *testing.T) {
	f, err := fasta.New(strings.NewReader(fastaData))
	assert.NoError(t, err)
	tests := []struct {
		seq  string
		want string
		err  bool
	}{
		{"seq1", "MTKLETSVNEWC", false},
		{"seq2", "MSDLLEYK", false},
		{"seq0", "", true},
	}
	for _, tt := range tests {
		got, err := f.Get(tt.seq)
		expect.EQ(t, err != nil, tt.err, "seq %s", tt.seq)
		expect.EQ(t, got, tt.want)
	}
	expect.EQ(t, f.SeqNames(), []string{"seq1", "seq2"})
}

func TestMalformed(t *testing.T) {
	for _, data := range []string{
		"MTKLE\n>seq1\nMT\n",
		">seq1\nMT\n>seq1\nMT\n",
		">\nMT\n",
	} {
		_, err := fasta.New(strings.NewReader(data))
		expect.True(t, err != nil, "data: %q", data)
	}
	f, err := fasta.New(strings.NewReader(""))
	assert.NoError(t, err)
	expect.EQ(t, len(f.SeqNames()), 0)
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w := fasta.NewWriter(&buf)
	long := strings.Repeat("A", fasta.LineWidth) + "CC"
	assert.NoError(t, w.Write(fasta.Record{Name: "famA_TM_#01", Seq: long}))
	assert.NoError(t, w.Write(fasta.Record{Name: "famB_QM2_#01", Seq: "MKV"}))
	assert.NoError(t, w.Flush())
	expect.EQ(t, buf.String(),
		">famA_TM_#01\n"+strings.Repeat("A", fasta.LineWidth)+"\nCC\n"+
			">famB_QM2_#01\nMKV\n")

	f, err := fasta.New(&buf)
	assert.NoError(t, err)
	got, err := f.Get("famA_TM_#01")
	assert.NoError(t, err)
	expect.EQ(t, got, long)
}
