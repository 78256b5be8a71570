// internal/status/snapshot.go
package status

import (
	"time"

	"github.com/tamzrod/lvdc4816-monitor/internal/telemetry"
)

// Snapshot is the device health derived from the latest record.
// It carries no memory of the past beyond the seconds-in-error counter.
type Snapshot struct {
	Health         uint16
	FailedReads    uint16
	FailedMask     uint16
	SecondsInError uint16

	// Identity, fixed after startup.
	FirmwareVersion uint16
	OCPSetpoint     uint16

	// inError accumulates sub-second cycles between records.
	inError time.Duration
}

// Next derives the snapshot that follows prev once rec is known.
// elapsed is the time since prev was taken; it only accrues while not OK.
func Next(prev Snapshot, rec telemetry.Record, elapsed time.Duration) Snapshot {
	next := prev

	failed := rec.Failures()
	next.FailedReads = uint16(failed)
	next.FailedMask = 0
	for i, s := range rec.Samples() {
		if !s.OK {
			next.FailedMask |= 1 << uint(i)
		}
	}

	switch {
	case failed == 0:
		next.Health = HealthOK
	case failed == len(rec.Samples()):
		next.Health = HealthError
	default:
		next.Health = HealthDegraded
	}

	if next.Health == HealthOK {
		next.SecondsInError = 0
		next.inError = 0
		return next
	}

	if prev.Health == HealthOK || prev.Health == HealthUnknown {
		next.inError = 0
	} else {
		base := prev.inError
		if whole := time.Duration(prev.SecondsInError) * time.Second; base < whole {
			base = whole
		}
		next.inError = base + elapsed
	}

	// HARD INVARIANT: seconds_in_error MUST NOT wrap
	secs := next.inError / time.Second
	if secs > 65535 {
		secs = 65535
	}
	next.SecondsInError = uint16(secs)

	return next
}
