// internal/poller/types.go
package poller

import (
	"time"

	"github.com/tamzrod/lvdc4816-monitor/internal/lvdc4816"
	"github.com/tamzrod/lvdc4816-monitor/internal/telemetry"
)

// Device abstracts the converter operations needed by the poller.
// *lvdc4816.LVDC4816 satisfies it.
type Device interface {
	ReadWord(reg lvdc4816.Register) (uint16, error)
	FirmwareVersion() (uint16, error)
	OCP() (uint16, error)
	SetOCP(amps float64) error
	DisableWriteProtect() error
}

// Retry bounds re-reads of a single register within one cycle.
// Attempts=0 means one read, no retry.
type Retry struct {
	Attempts int
	Min      time.Duration
	Max      time.Duration
}

// Config is the minimal runtime config the poller needs.
type Config struct {
	Interval time.Duration
	Retry    Retry

	// MaxCycles stops Run after that many records. 0 = unlimited.
	MaxCycles int

	// OCPSetpoint is written during Startup. nil skips the write.
	OCPSetpoint *float64
	// DisableWriteProtect clears WRITE_PROTECT during Startup.
	DisableWriteProtect bool
}

// StartupReport is what Startup observed.
// Every step is best effort; Errs collects failures in order.
type StartupReport struct {
	Version   telemetry.Sample
	OCPBefore telemetry.Sample
	OCPAfter  telemetry.Sample
	Errs      []error
}

// readPlan is the fixed order of one polling cycle.
var readPlan = []lvdc4816.Register{
	lvdc4816.RegTemp1,
	lvdc4816.RegTemp2,
	lvdc4816.RegHV,
	lvdc4816.RegLV,
	lvdc4816.RegI2,
	lvdc4816.RegI1,
	lvdc4816.RegI1Count,
	lvdc4816.RegStatus,
}
