// internal/writer/builder.go
package writer

import (
	"time"

	cfg "github.com/tamzrod/lvdc4816-monitor/internal/config"
	wmodbus "github.com/tamzrod/lvdc4816-monitor/internal/writer/modbus"
)

// DeviceName is stamped into the mirror status block.
const DeviceName = "LVDC4816"

// Build creates the CSV writer and, if configured, the Modbus mirror.
// The returned Mirror is nil when mirroring is disabled.
func Build(c *cfg.Config) (Writer, *Mirror, func() error, error) {
	out := Multi{NewCSVWriter(c.Log.CSVPath)}

	if c.Mirror == nil {
		return out, nil, func() error { return nil }, nil
	}

	cli, err := wmodbus.NewEndpointClient(wmodbus.Config{
		Endpoint: c.Mirror.Endpoint,
		Timeout:  time.Duration(c.Mirror.TimeoutMs) * time.Millisecond,
	})
	if err != nil {
		return nil, nil, nil, err
	}

	m := NewMirror(MirrorPlan{
		UnitID:      c.Mirror.UnitID,
		BaseAddress: c.Mirror.BaseAddress,
		DeviceName:  DeviceName,
	}, cli)

	return append(out, m), m, cli.Close, nil
}
