// internal/poller/startup.go
package poller

import (
	"context"

	"github.com/tamzrod/lvdc4816-monitor/internal/logger"
	"github.com/tamzrod/lvdc4816-monitor/internal/telemetry"
)

// Startup runs the one-time sequence before polling:
// firmware version, OCP read, write-protect disable, OCP write, OCP re-read.
// No step is fatal.
func (p *Poller) Startup(ctx context.Context) StartupReport {
	var rep StartupReport

	step := func(s *telemetry.Sample, fn func() (uint16, error)) {
		if ctx.Err() != nil {
			return
		}
		v, err := fn()
		if err != nil {
			logger.Error("%v", err)
			rep.Errs = append(rep.Errs, err)
			return
		}
		*s = telemetry.Valid(v)
	}

	// ---- identity ----
	step(&rep.Version, p.dev.FirmwareVersion)
	if rep.Version.OK {
		logger.Info("MFRversion=0x%x", rep.Version.Raw)
	}

	step(&rep.OCPBefore, p.dev.OCP)
	if rep.OCPBefore.OK {
		logger.Info("HWOCP=%2.2f", telemetry.Scaled(rep.OCPBefore.Raw))
	}

	// ---- configuration ----
	if p.cfg.DisableWriteProtect && ctx.Err() == nil {
		if err := p.dev.DisableWriteProtect(); err != nil {
			logger.Error("%v", err)
			rep.Errs = append(rep.Errs, err)
		}
	}

	if sp := p.cfg.OCPSetpoint; sp != nil && ctx.Err() == nil {
		lo, hi := telemetry.EncodeOCP(*sp)
		logger.Info("Setting HWOCP to %d", lo)
		logger.Info("Setting HWOCP to %d", hi)

		if err := p.dev.SetOCP(*sp); err != nil {
			logger.Error("%v", err)
			rep.Errs = append(rep.Errs, err)
		}
	}

	// ---- read back (informational only) ----
	step(&rep.OCPAfter, p.dev.OCP)
	if rep.OCPAfter.OK {
		logger.Info("HWOCP=%2.2f", telemetry.Scaled(rep.OCPAfter.Raw))
	}

	return rep
}
