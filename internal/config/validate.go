// internal/config/validate.go
package config

import (
	"errors"
	"fmt"
	"math"
)

// maxOCPSetpoint is 0xFFFF ticks at 1/32 A.
const maxOCPSetpoint = 2047.96875

// mirrorBlockLen is 8 telemetry words followed by a 20-slot status block.
const mirrorBlockLen = 8 + 20

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
// It expects a normalized configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil")
	}

	// ------------------------------------------------------------
	// BUS
	// ------------------------------------------------------------

	switch cfg.Bus.Driver {
	case DriverCP2112, DriverI2CDev:
	default:
		return fmt.Errorf("bus.driver %q: must be %q or %q", cfg.Bus.Driver, DriverCP2112, DriverI2CDev)
	}

	if cfg.Bus.ClockHz <= 0 {
		return fmt.Errorf("bus.clock_hz %d: must be > 0", cfg.Bus.ClockHz)
	}

	for name, ms := range map[string]int{
		"bus.write_timeout_ms": cfg.Bus.WriteTimeoutMs,
		"bus.read_timeout_ms":  cfg.Bus.ReadTimeoutMs,
	} {
		if ms < 0 || ms > 1000 {
			return fmt.Errorf("%s %d: must be within 0..1000", name, ms)
		}
	}

	if cfg.Bus.Retries > 1000 {
		return fmt.Errorf("bus.retries %d: must be within 0..1000", cfg.Bus.Retries)
	}

	if cfg.Bus.ResponseTimeoutMs <= 0 {
		return fmt.Errorf("bus.response_timeout_ms %d: must be > 0", cfg.Bus.ResponseTimeoutMs)
	}

	// ------------------------------------------------------------
	// DEVICE
	// ------------------------------------------------------------

	if cfg.Device.Address == 0 || cfg.Device.Address > 0x7F {
		return fmt.Errorf(
			"device.address 0x%X: must be a 7-bit address (write address 0x%X => 0x%X)",
			cfg.Device.Address,
			cfg.Device.Address,
			cfg.Device.Address>>1,
		)
	}

	if sp := cfg.Device.OCPSetpointA; sp != nil {
		if math.IsNaN(*sp) || math.IsInf(*sp, 0) || *sp < 0 || *sp > maxOCPSetpoint {
			return fmt.Errorf("device.ocp_setpoint_a %.3f: must be within 0..%.5f", *sp, maxOCPSetpoint)
		}
	}

	// ------------------------------------------------------------
	// POLL
	// ------------------------------------------------------------

	if cfg.Poll.IntervalMs <= 0 {
		return fmt.Errorf("poll.interval_ms %d: must be > 0", cfg.Poll.IntervalMs)
	}
	if cfg.Poll.ReadRetries < 0 {
		return fmt.Errorf("poll.read_retries %d: must be >= 0", cfg.Poll.ReadRetries)
	}
	if cfg.Poll.RetryMinMs < 0 || cfg.Poll.RetryMaxMs < cfg.Poll.RetryMinMs {
		return fmt.Errorf(
			"poll retry backoff %d..%d ms: min must be >= 0 and <= max",
			cfg.Poll.RetryMinMs,
			cfg.Poll.RetryMaxMs,
		)
	}

	// ------------------------------------------------------------
	// MIRROR (OPT-IN)
	// ------------------------------------------------------------

	if m := cfg.Mirror; m != nil {
		if m.Endpoint == "" {
			return errors.New("mirror.endpoint: required when mirror is set")
		}
		if int(m.BaseAddress)+mirrorBlockLen > 0x10000 {
			return fmt.Errorf(
				"mirror.base_address %d: block of %d registers exceeds address space",
				m.BaseAddress,
				mirrorBlockLen,
			)
		}
		if m.TimeoutMs < 0 {
			return fmt.Errorf("mirror.timeout_ms %d: must be >= 0", m.TimeoutMs)
		}
	}

	return nil
}
