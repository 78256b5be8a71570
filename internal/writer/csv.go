// internal/writer/csv.go
package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tamzrod/lvdc4816-monitor/internal/telemetry"
)

// CSVWriter appends one row per record to a log file.
// The file is opened and closed on every write.
type CSVWriter struct {
	path          string
	headerWritten bool
}

func NewCSVWriter(path string) *CSVWriter {
	return &CSVWriter{path: path}
}

// Path returns the log file location.
func (w *CSVWriter) Path() string { return w.path }

// Write appends rec. The header is written once, by the first write
// that gets it into the file.
func (w *CSVWriter) Write(rec telemetry.Record) (err error) {
	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("csv writer: open %s: %w", w.path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("csv writer: close %s: %w", w.path, cerr)
		}
	}()

	return w.writeTo(f, rec)
}

func (w *CSVWriter) writeTo(out io.Writer, rec telemetry.Record) error {
	cw := csv.NewWriter(out)

	if !w.headerWritten {
		if err := cw.Write(strings.Split(telemetry.CSVHeader, ",")); err != nil {
			return fmt.Errorf("csv writer: header: %w", err)
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return fmt.Errorf("csv writer: flush header %s: %w", w.path, err)
		}
		w.headerWritten = true
	}

	if err := cw.Write(rec.CSVFields()); err != nil {
		return fmt.Errorf("csv writer: row: %w", err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("csv writer: flush %s: %w", w.path, err)
	}
	return nil
}
