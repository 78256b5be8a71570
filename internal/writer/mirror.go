// internal/writer/mirror.go
package writer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tamzrod/lvdc4816-monitor/internal/status"
	"github.com/tamzrod/lvdc4816-monitor/internal/telemetry"
)

// DataWords is the number of telemetry registers at the start of the mirror block.
const DataWords = 8

// MirrorPlan locates the mirror block on the remote endpoint.
type MirrorPlan struct {
	UnitID      uint8
	BaseAddress uint16
	DeviceName  string
}

// Mirror copies raw telemetry words and the device status block into
// remote holding registers.
//
// Layout from BaseAddress:
//
//	0..7    raw words in read order (failed reads are written as 0)
//	8..27   status block (see package status)
type Mirror struct {
	plan MirrorPlan
	cli  registerClient

	needFull bool
	snap     status.Snapshot
	lastAt   time.Time
}

func NewMirror(plan MirrorPlan, cli registerClient) *Mirror {
	return &Mirror{
		plan:     plan,
		cli:      cli,
		needFull: true, // full re-assert on first successful write
		snap:     status.Snapshot{Health: status.HealthUnknown},
	}
}

// SetIdentity records the startup readings carried in the status block.
// The next write re-asserts the full block.
func (m *Mirror) SetIdentity(firmware, ocp telemetry.Sample) {
	m.snap.FirmwareVersion = firmware.Raw
	m.snap.OCPSetpoint = ocp.Raw
	m.needFull = true
}

// Snapshot returns the status last derived by Write.
func (m *Mirror) Snapshot() status.Snapshot { return m.snap }

// Write delivers one record.
// On any status write failure, the next call re-asserts the full block.
func (m *Mirror) Write(rec telemetry.Record) error {
	if m == nil || m.cli == nil {
		return errors.New("mirror: disabled")
	}

	var elapsed time.Duration
	if !m.lastAt.IsZero() && rec.At.After(m.lastAt) {
		elapsed = rec.At.Sub(m.lastAt)
	}
	next := status.Next(m.snap, rec, elapsed)
	m.lastAt = rec.At

	// ------------------------------------------------------------
	// Data words (every record)
	// ------------------------------------------------------------
	data := make([]uint16, 0, DataWords)
	for _, s := range rec.Samples() {
		data = append(data, s.Raw)
	}

	if err := m.cli.WriteRegisters(m.plan.UnitID, m.plan.BaseAddress, data); err != nil {
		m.snap = next
		m.needFull = true
		return fmt.Errorf("mirror: data write failed: %w", err)
	}

	statusAddr := m.plan.BaseAddress + DataWords

	// ------------------------------------------------------------
	// Full status block (identity re-assert)
	// ------------------------------------------------------------
	if m.needFull {
		regs := status.Encode(next, m.plan.DeviceName)
		m.snap = next

		if err := m.cli.WriteRegisters(m.plan.UnitID, statusAddr, regs); err != nil {
			return fmt.Errorf("mirror: full status write failed: %w", err)
		}
		m.needFull = false
		return nil
	}

	// ------------------------------------------------------------
	// Incremental status (changed slots only)
	// ------------------------------------------------------------
	prev := m.snap
	m.snap = next

	slots := []struct {
		name      string
		slot      uint16
		prev, cur uint16
	}{
		{"health", status.SlotHealthCode, prev.Health, next.Health},
		{"failed_reads", status.SlotFailedReads, prev.FailedReads, next.FailedReads},
		{"seconds_in_error", status.SlotSecondsInError, prev.SecondsInError, next.SecondsInError},
		{"failed_mask", status.SlotFailedMask, prev.FailedMask, next.FailedMask},
	}

	var errs []string
	for _, s := range slots {
		if s.prev == s.cur {
			continue
		}
		if err := m.cli.WriteRegisters(m.plan.UnitID, statusAddr+s.slot, []uint16{s.cur}); err != nil {
			errs = append(errs, fmt.Sprintf("slot%d %s write failed: %v", s.slot, s.name, err))
		}
	}

	if len(errs) > 0 {
		// Any partial failure introduces doubt: re-assert on next success.
		m.needFull = true
		return errors.New("mirror: " + strings.Join(errs, " | "))
	}

	return nil
}
