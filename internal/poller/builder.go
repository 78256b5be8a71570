// internal/poller/builder.go
package poller

import (
	"time"

	"periph.io/x/conn/v3/i2c"

	cfg "github.com/tamzrod/lvdc4816-monitor/internal/config"
	"github.com/tamzrod/lvdc4816-monitor/internal/lvdc4816"
)

// Build constructs a Poller for the converter on bus.
// The bus lifecycle stays with the caller.
func Build(c *cfg.Config, bus i2c.Bus, maxCycles int) (*Poller, error) {
	pc := Config{
		Interval: time.Duration(c.Poll.IntervalMs) * time.Millisecond,
		Retry: Retry{
			Attempts: c.Poll.ReadRetries,
			Min:      time.Duration(c.Poll.RetryMinMs) * time.Millisecond,
			Max:      time.Duration(c.Poll.RetryMaxMs) * time.Millisecond,
		},
		MaxCycles:   maxCycles,
		OCPSetpoint: c.Device.OCPSetpointA,
	}
	if c.Device.DisableWriteProtect != nil {
		pc.DisableWriteProtect = *c.Device.DisableWriteProtect
	}

	return New(pc, lvdc4816.New(bus, c.Device.Address))
}
