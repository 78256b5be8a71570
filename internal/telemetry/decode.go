// internal/telemetry/decode.go
package telemetry

// TicksPerUnit is the LSB weight of every scaled register: 1/32 V, 1/32 A, 1/32 °C.
const TicksPerUnit = 32.0

// TemperatureOffset is the sensor's native zero (raw 0 => -40 °C).
const TemperatureOffset = -40.0

// MaxOCP is the largest setpoint representable in one 16-bit register.
const MaxOCP = float64(0xFFFF) / TicksPerUnit

// Word assembles a register value transferred low byte first.
func Word(lo, hi byte) uint16 {
	return uint16(hi)<<8 | uint16(lo)
}

// WordFromBytes assembles the first two bytes of b.
// A short buffer yields ok=false.
func WordFromBytes(b []byte) (uint16, bool) {
	if len(b) < 2 {
		return 0, false
	}
	return Word(b[0], b[1]), true
}

// Scaled decodes voltage, current and OCP registers.
func Scaled(raw uint16) float64 {
	return float64(raw) / TicksPerUnit
}

// Temperature decodes temperature registers to °C.
func Temperature(raw uint16) float64 {
	return float64(raw)/TicksPerUnit + TemperatureOffset
}

// EncodeOCP is the inverse of Scaled for the over-current setpoint.
// The scaled value is truncated, then split little-endian.
// Out of range input is clamped to the register limits; NaN encodes as 0.
func EncodeOCP(amps float64) (lo, hi byte) {
	ticks := amps * TicksPerUnit

	var raw uint16
	switch {
	case !(ticks > 0):
		raw = 0
	case ticks >= 0xFFFF:
		raw = 0xFFFF
	default:
		raw = uint16(ticks)
	}

	return byte(raw), byte(raw >> 8)
}
