package blast

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	gunsafe "github.com/grailbio/base/unsafe"
)

// maxColumns is the widest table any backend writes.
const maxColumns = 13

// getTokens splits curLine on tabs into up to len(tokens) tokens and returns
// the number of tokens found.  Spaces around a token are trimmed, but spaces
// inside one are kept, since some tools copy full sequence labels into the id
// columns.  A blank line has no tokens.  If the line has more tokens than
// len(tokens), len(tokens)+1 is returned.
func getTokens(tokens [][]byte, curLine []byte) int {
	if len(bytes.TrimSpace(curLine)) == 0 {
		return 0
	}
	for tokenIdx := 0; ; tokenIdx++ {
		if tokenIdx == len(tokens) {
			return tokenIdx + 1
		}
		end := bytes.IndexByte(curLine, '\t')
		if end < 0 {
			tokens[tokenIdx] = bytes.TrimSpace(curLine)
			return tokenIdx + 1
		}
		tokens[tokenIdx] = bytes.TrimSpace(curLine[:end])
		curLine = curLine[end+1:]
	}
}

// Scanner reads Hits from an alignment table.  Malformed rows (wrong number of
// columns, non-numeric fields) are skipped with a warning; they never stop the
// scan.  Scanners are not threadsafe.
type Scanner struct {
	b       *bufio.Scanner
	backend Backend
	name    string
	tokens  [maxColumns][]byte
	lineIdx int
	skipped int
	err     error
}

// NewScanner creates a Scanner that reads a table written by the given backend.
// Name is used only in log messages.
func NewScanner(r io.Reader, backend Backend, name string) *Scanner {
	b := bufio.NewScanner(r)
	b.Buffer(nil, 1<<20)
	return &Scanner{b: b, backend: backend, name: name}
}

// Scan reads the next well-formed row into hit.  It returns false at the end of
// the stream or on an I/O error; check Err afterwards.
func (s *Scanner) Scan(hit *Hit) bool {
	if s.err != nil {
		return false
	}
	nCol := s.backend.NumColumns()
	for s.b.Scan() {
		s.lineIdx++
		line := s.b.Bytes()
		if len(line) > 0 && line[0] == '#' {
			continue
		}
		n := getTokens(s.tokens[:nCol], line)
		if n == 0 {
			continue
		}
		if n != nCol {
			s.skip("expected %d columns, found %d", nCol, n)
			continue
		}
		if err := s.parse(hit); err != nil {
			s.skip("%v", err)
			continue
		}
		return true
	}
	s.err = s.b.Err()
	return false
}

func (s *Scanner) skip(format string, args ...interface{}) {
	s.skipped++
	args = append([]interface{}{s.name, s.lineIdx}, args...)
	log.Error.Printf("%s:%d: skipping malformed hit: "+format, args...)
}

func (s *Scanner) parse(hit *Hit) (err error) {
	t := &s.tokens
	atoi := func(b []byte) int {
		if err != nil {
			return 0
		}
		var v int
		v, err = strconv.Atoi(gunsafe.BytesToString(b))
		return v
	}
	atof := func(b []byte) float64 {
		if err != nil {
			return 0
		}
		var v float64
		v, err = strconv.ParseFloat(gunsafe.BytesToString(b), 64)
		return v
	}
	hit.Query = string(t[0])
	hit.Target = string(t[1])
	hit.Identity = atof(t[2])
	hit.AlnLen = atoi(t[3])
	hit.Mismatch = atoi(t[4])
	hit.GapOpen = atoi(t[5])
	hit.QStart = atoi(t[6])
	hit.QEnd = atoi(t[7])
	hit.SStart = atoi(t[8])
	hit.SEnd = atoi(t[9])
	hit.EValue = atof(t[10])
	hit.BitScore = atof(t[11])
	hit.QLen = 0
	if s.backend.HasQueryLen() {
		hit.QLen = atoi(t[12])
	}
	if err != nil {
		return err
	}
	if s.backend == RAPSearch2 {
		hit.EValue = math.Pow(10, hit.EValue)
	}
	if hit.QStart <= 0 || hit.QEnd <= 0 || hit.AlnLen < 0 {
		return errors.E(fmt.Sprintf("invalid query coordinates %d-%d", hit.QStart, hit.QEnd))
	}
	return nil
}

// Skipped returns the number of malformed rows skipped so far.
func (s *Scanner) Skipped() int { return s.skipped }

// Err returns the I/O error that stopped the scan, if any.
func (s *Scanner) Err() error { return s.err }

// ReadFile reads every well-formed hit in the table at path.  Gzip and bzip2
// tables are decompressed transparently.  An empty table yields no hits.
func ReadFile(ctx context.Context, path string, backend Backend) (hits []Hit, err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.E(err, "open hit table", path)
	}
	defer func() {
		if cerr := in.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	var r io.Reader = in.Reader(ctx)
	if u, _ := compress.NewReaderPath(r, in.Name()); u != nil {
		r = u
	}
	sc := NewScanner(r, backend, path)
	var hit Hit
	for sc.Scan(&hit) {
		hits = append(hits, hit)
	}
	if err = sc.Err(); err != nil {
		return nil, errors.E(err, "read hit table", path)
	}
	log.Printf("%s: read %d hits, skipped %d malformed rows", path, len(hits), sc.Skipped())
	return hits, nil
}
