// internal/config/normalize.go
package config

// Normalize fills zero values from Default.
// It is allowed to mutate configuration.
// Explicit zero is only distinguishable for pointer fields.
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}
	d := Default()

	// ---- bus ----
	b := &cfg.Bus
	if b.Driver == "" {
		b.Driver = d.Bus.Driver
	}
	if b.ClockHz == 0 {
		b.ClockHz = d.Bus.ClockHz
	}
	if b.AckAddress == 0 {
		b.AckAddress = d.Bus.AckAddress
	}
	if b.WriteTimeoutMs == 0 {
		b.WriteTimeoutMs = d.Bus.WriteTimeoutMs
	}
	if b.ReadTimeoutMs == 0 {
		b.ReadTimeoutMs = d.Bus.ReadTimeoutMs
	}
	if b.SCLLowTimeout == nil {
		b.SCLLowTimeout = d.Bus.SCLLowTimeout
	}
	if b.ResponseTimeoutMs == 0 {
		b.ResponseTimeoutMs = d.Bus.ResponseTimeoutMs
	}

	// ---- device ----
	if cfg.Device.Address == 0 {
		cfg.Device.Address = d.Device.Address
	}
	if cfg.Device.OCPSetpointA == nil {
		cfg.Device.OCPSetpointA = d.Device.OCPSetpointA
	}
	if cfg.Device.DisableWriteProtect == nil {
		cfg.Device.DisableWriteProtect = d.Device.DisableWriteProtect
	}

	// ---- poll ----
	if cfg.Poll.IntervalMs == 0 {
		cfg.Poll.IntervalMs = d.Poll.IntervalMs
	}
	if cfg.Poll.RetryMinMs == 0 {
		cfg.Poll.RetryMinMs = d.Poll.RetryMinMs
	}
	if cfg.Poll.RetryMaxMs == 0 {
		cfg.Poll.RetryMaxMs = d.Poll.RetryMaxMs
	}

	// ---- log ----
	if cfg.Log.CSVPath == "" {
		cfg.Log.CSVPath = d.Log.CSVPath
	}

	// ---- mirror ----
	if cfg.Mirror != nil && cfg.Mirror.TimeoutMs == 0 {
		cfg.Mirror.TimeoutMs = 1000
	}
}
