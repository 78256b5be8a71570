// internal/writer/writer_test.go
package writer

import (
	"errors"
	"testing"

	"github.com/tamzrod/lvdc4816-monitor/internal/telemetry"
)

// ---- fake writer ----

type fakeWriter struct {
	err  error
	recs []telemetry.Record
}

func (f *fakeWriter) Write(rec telemetry.Record) error {
	f.recs = append(f.recs, rec)
	return f.err
}

// ---- tests ----

func TestMulti_DeliversToAll(t *testing.T) {
	a := &fakeWriter{err: errors.New("disk full")}
	b := &fakeWriter{}

	err := Multi{a, nil, b}.Write(benchRecord())
	if err == nil {
		t.Fatalf("expected joined error, got nil")
	}
	if len(a.recs) != 1 || len(b.recs) != 1 {
		t.Fatalf("record not delivered to every writer: a=%d b=%d", len(a.recs), len(b.recs))
	}
}

func TestMulti_NoError(t *testing.T) {
	if err := (Multi{&fakeWriter{}}).Write(benchRecord()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
