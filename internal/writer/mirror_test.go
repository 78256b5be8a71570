// internal/writer/mirror_test.go
package writer

import (
	"errors"
	"testing"
	"time"

	"github.com/tamzrod/lvdc4816-monitor/internal/status"
	"github.com/tamzrod/lvdc4816-monitor/internal/telemetry"
)

// ---- fake register client ----

type writeCall struct {
	unitID uint8
	addr   uint16
	regs   []uint16
}

type fakeRegisterClient struct {
	writes []writeCall
	failAt map[uint16]bool
}

func (f *fakeRegisterClient) WriteRegisters(unitID uint8, addr uint16, regs []uint16) error {
	f.writes = append(f.writes, writeCall{unitID: unitID, addr: addr, regs: append([]uint16(nil), regs...)})
	if f.failAt[addr] {
		return errors.New("exception 2")
	}
	return nil
}

// ---- tests ----

func TestMirror_FullThenIncremental(t *testing.T) {
	cli := &fakeRegisterClient{}
	m := NewMirror(MirrorPlan{UnitID: 3, BaseAddress: 100, DeviceName: DeviceName}, cli)
	m.SetIdentity(telemetry.Valid(0x0102), telemetry.Valid(0x4B00))

	t0 := time.Unix(1700000000, 0)
	rec := benchRecord()
	rec.At = t0

	if err := m.Write(rec); err != nil {
		t.Fatalf("first write: %v", err)
	}

	if len(cli.writes) != 2 {
		t.Fatalf("expected data + full status, got %d writes", len(cli.writes))
	}
	data := cli.writes[0]
	if data.unitID != 3 || data.addr != 100 || len(data.regs) != DataWords {
		t.Fatalf("data write = %+v", data)
	}
	if data.regs[2] != 0x1400 || data.regs[6] != 7 {
		t.Fatalf("data words out of order: %v", data.regs)
	}
	full := cli.writes[1]
	if full.addr != 100+DataWords || len(full.regs) != status.SlotsPerDevice {
		t.Fatalf("full status write = addr %d len %d", full.addr, len(full.regs))
	}
	if full.regs[status.SlotHealthCode] != status.HealthOK || full.regs[status.SlotFirmwareVersion] != 0x0102 {
		t.Fatalf("status block = %v", full.regs)
	}

	// ---- second write: degraded, incremental only ----
	rec2 := benchRecord()
	rec2.At = t0.Add(500 * time.Millisecond)
	rec2.LV = telemetry.Failed()

	cli.writes = nil
	if err := m.Write(rec2); err != nil {
		t.Fatalf("second write: %v", err)
	}

	// data + health + failed_reads + failed_mask (seconds stays 0 on entry)
	if len(cli.writes) != 4 {
		t.Fatalf("expected 4 writes, got %d: %+v", len(cli.writes), cli.writes)
	}
	if cli.writes[0].regs[3] != 0 {
		t.Fatalf("failed read must be mirrored as 0, got %d", cli.writes[0].regs[3])
	}
	for _, w := range cli.writes[1:] {
		if len(w.regs) != 1 {
			t.Fatalf("incremental write must be a single register: %+v", w)
		}
	}
	if cli.writes[1].addr != 100+DataWords+status.SlotHealthCode || cli.writes[1].regs[0] != status.HealthDegraded {
		t.Fatalf("health write = %+v", cli.writes[1])
	}
	if m.Snapshot().FailedMask != 1<<3 {
		t.Fatalf("failed mask = 0b%b, want LV bit", m.Snapshot().FailedMask)
	}
}

func TestMirror_StatusFailureForcesFullReassert(t *testing.T) {
	cli := &fakeRegisterClient{}
	m := NewMirror(MirrorPlan{BaseAddress: 0}, cli)

	if err := m.Write(benchRecord()); err != nil {
		t.Fatalf("first write: %v", err)
	}

	cli.failAt = map[uint16]bool{DataWords + status.SlotHealthCode: true}
	bad := benchRecord()
	bad.HV = telemetry.Failed()
	if err := m.Write(bad); err == nil {
		t.Fatalf("expected incremental failure")
	}

	cli.failAt = nil
	cli.writes = nil
	if err := m.Write(benchRecord()); err != nil {
		t.Fatalf("recovery write: %v", err)
	}
	if len(cli.writes) != 2 || len(cli.writes[1].regs) != status.SlotsPerDevice {
		t.Fatalf("expected full block re-assert, got %+v", cli.writes)
	}
}

func TestMirror_DataFailure(t *testing.T) {
	cli := &fakeRegisterClient{failAt: map[uint16]bool{0: true}}
	m := NewMirror(MirrorPlan{}, cli)

	if err := m.Write(benchRecord()); err == nil {
		t.Fatalf("expected data write error")
	}
	if len(cli.writes) != 1 {
		t.Fatalf("status must not be written after a data failure, got %d writes", len(cli.writes))
	}
}
