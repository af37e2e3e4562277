package cmd

import (
	"context"
	"io"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/klauspost/compress/gzip"
)

// output is a file being written.  Paths ending in .gz are gzip-compressed.
type output struct {
	f  file.File
	gz *gzip.Writer
	w  io.Writer
}

func createOutput(ctx context.Context, path string) (*output, error) {
	f, err := file.Create(ctx, path)
	if err != nil {
		return nil, errors.E(err, "create", path)
	}
	o := &output{f: f, w: f.Writer(ctx)}
	if strings.HasSuffix(path, ".gz") {
		o.gz = gzip.NewWriter(o.w)
		o.w = o.gz
	}
	return o, nil
}

// Writer returns the destination of the file contents.
func (o *output) Writer() io.Writer { return o.w }

// Close finishes the file.  On error the file may be incomplete.
func (o *output) Close(ctx context.Context) error {
	e := errors.Once{}
	if o.gz != nil {
		e.Set(o.gz.Close())
	}
	e.Set(o.f.Close(ctx))
	return e.Err()
}

// writeOutput creates path and fills it with write.
func writeOutput(ctx context.Context, path string, write func(w io.Writer) error) error {
	o, err := createOutput(ctx, path)
	if err != nil {
		return err
	}
	e := errors.Once{}
	e.Set(write(o.Writer()))
	e.Set(o.Close(ctx))
	if err := e.Err(); err != nil {
		return errors.E(err, "write", path)
	}
	return nil
}
