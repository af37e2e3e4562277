// Package fasta contains code for reading and writing FASTA files of protein
// sequences.  FASTA files consist of a number of named sequences that may be
// interrupted by newlines.  For example:
//
// >AAA26613
// MTKLETSVNEW
// CLINETEKF
// >AAB01234
// MSDLLEY
//
// Note: Sequence names are defined to be the stretch of characters excluding
// spaces immediately after '>'.  Any text appear after a space are ignored.
// For example, '>AAA26613 beta-lactamase' becomes 'AAA26613'.
package fasta

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"
)

const (
	bufferInitSize = 1024 * 1024 * 300 // 300 MB

	// LineWidth is the number of residues per line written by Writer.
	LineWidth = 80
)

// Record is one named sequence.
type Record struct {
	Name string
	Seq  string
}

// Fasta holds FASTA-formatted data in memory, consisting of a set of named
// sequences.
type Fasta struct {
	seqs     map[string]string
	seqNames []string
}

// New reads all the FASTA data from the given reader.  Duplicate sequence
// names are an error.
func New(r io.Reader) (*Fasta, error) {
	f := &Fasta{seqs: make(map[string]string)}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, bufferInitSize)
	var (
		seqName string
		seq     strings.Builder
		started bool
	)
	flush := func() error {
		if !started {
			return nil
		}
		if seqName == "" {
			return errors.Errorf("malformed FASTA file: empty sequence name")
		}
		if _, ok := f.seqs[seqName]; ok {
			return errors.Errorf("malformed FASTA file: duplicate sequence %s", seqName)
		}
		f.seqs[seqName] = seq.String()
		f.seqNames = append(f.seqNames, seqName)
		seq.Reset()
		return nil
	}
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' { // Start a new sequence.
			if err := flush(); err != nil {
				return nil, err
			}
			started = true
			seqName = strings.Split(line[1:], " ")[0]
			continue
		}
		if !started {
			return nil, errors.Errorf("malformed FASTA file: sequence data before the first name")
		}
		seq.WriteString(strings.TrimSpace(line))
	}
	if scanner.Err() != nil {
		return nil, errors.Wrap(scanner.Err(), "couldn't read FASTA data")
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return f, nil
}

// Get returns the full sequence with the given name.
func (f *Fasta) Get(seqName string) (string, error) {
	s, ok := f.seqs[seqName]
	if !ok {
		return "", errors.Errorf("sequence not found: %s", seqName)
	}
	return s, nil
}

// SeqNames returns the names of all sequences, in the order of appearance in
// the FASTA file.
func (f *Fasta) SeqNames() []string {
	return f.seqNames
}

// Writer writes FASTA records, wrapping sequences at LineWidth residues.
type Writer struct {
	w   *bufio.Writer
	err error
}

// NewWriter creates a Writer.  Flush must be called after the last record.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write appends one record.
func (w *Writer) Write(r Record) error {
	w.writeString(">")
	w.writeString(r.Name)
	w.writeString("\n")
	seq := r.Seq
	for len(seq) > LineWidth {
		w.writeString(seq[:LineWidth])
		w.writeString("\n")
		seq = seq[LineWidth:]
	}
	w.writeString(seq)
	w.writeString("\n")
	return w.err
}

func (w *Writer) writeString(s string) {
	if w.err != nil {
		return
	}
	_, w.err = w.w.WriteString(s)
}

// Flush writes buffered data to the underlying writer.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	return w.w.Flush()
}
