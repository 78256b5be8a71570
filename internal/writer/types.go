// internal/writer/types.go
package writer

import "github.com/tamzrod/lvdc4816-monitor/internal/telemetry"

// Writer persists one telemetry record.
type Writer interface {
	Write(rec telemetry.Record) error
}

// registerClient is the exact contract the mirror uses.
// *modbus.EndpointClient satisfies it.
type registerClient interface {
	WriteRegisters(unitID uint8, addr uint16, regs []uint16) error
}
