// internal/writer/writer.go
package writer

import (
	"errors"
	"strings"

	"github.com/tamzrod/lvdc4816-monitor/internal/telemetry"
)

// Multi delivers every record to each writer in order.
// A failing writer does not stop the others.
type Multi []Writer

func (m Multi) Write(rec telemetry.Record) error {
	var errs []string

	for _, w := range m {
		if w == nil {
			continue
		}
		if err := w.Write(rec); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, " | "))
	}
	return nil
}
