// Package dsv reads and writes delimiter-separated rows. Fields containing
// the delimiter, a double quote or a newline are quoted, with embedded
// quotes doubled. Output rows end in \n; input rows may end in \n, \r or
// \r\n.
package dsv

import (
	"bufio"
	"encoding/csv"
	"io"

	"github.com/pkg/errors"
)

// crReader rewrites bare carriage returns to newlines so that classic
// Mac-style row terminators parse like Unix ones. \r\n survives because the
// doubled newline it produces is a blank row, which the reader skips.
type crReader struct {
	r io.Reader
}

func (cr crReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	for i := 0; i < n; i++ {
		if p[i] == '\r' {
			p[i] = '\n'
		}
	}
	return n, err
}

// Reader reads delimiter-separated rows from an input stream.
type Reader struct {
	cr *csv.Reader
}

// NewReader returns a Reader splitting on the given delimiter.
func NewReader(r io.Reader, delimiter rune) *Reader {
	cr := csv.NewReader(bufio.NewReader(crReader{r: r}))
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1
	return &Reader{cr: cr}
}

// ReadRow returns the next row, or io.EOF after the last one.
func (r *Reader) ReadRow() ([]string, error) {
	row, err := r.cr.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading dsv row")
	}
	return row, nil
}

// ReadAll consumes the remaining rows.
func (r *Reader) ReadAll() ([][]string, error) {
	var rows [][]string
	for {
		row, err := r.ReadRow()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		rows = append(rows, row)
	}
}

// Writer writes delimiter-separated rows to an output stream.
type Writer struct {
	cw *csv.Writer
}

// NewWriter returns a Writer joining fields with the given delimiter.
func NewWriter(w io.Writer, delimiter rune) *Writer {
	cw := csv.NewWriter(w)
	cw.Comma = delimiter
	return &Writer{cw: cw}
}

// WriteRow appends one row.
func (w *Writer) WriteRow(fields []string) error {
	if err := w.cw.Write(fields); err != nil {
		return errors.Wrap(err, "writing dsv row")
	}
	return nil
}

// Flush pushes buffered rows to the underlying writer and reports any write
// error.
func (w *Writer) Flush() error {
	w.cw.Flush()
	return errors.Wrap(w.cw.Error(), "flushing dsv writer")
}
