// internal/status/constants.go
package status

// Device Status Block layout constants.
// These values define the mirror layout and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerDevice is the fixed number of registers in the status block.
const SlotsPerDevice = 20

// ---- SLOT INDICES ----

// SlotHealthCode holds the device health state.
const SlotHealthCode = 0

// SlotFailedReads holds the number of failed register reads in the last cycle.
const SlotFailedReads = 1

// SlotSecondsInError holds the duration (in seconds) the device has been degraded or in error.
const SlotSecondsInError = 2

// SlotFirmwareVersion holds the raw MFR_VERSION read at startup.
const SlotFirmwareVersion = 3

// SlotOCPSetpoint holds the raw HW_OCP read back at startup.
const SlotOCPSetpoint = 4

// SlotFailedMask has bit i set when the i-th read of the last cycle failed.
// Bit order follows the read order.
const SlotFailedMask = 5

// ---- RESERVED RANGE ----

// Slots 6–10 are reserved for future use.
const SlotReservedStart = 6
const SlotReservedEnd = 10

// ---- DEVICE NAME ----

// SlotDeviceNameStart is the first slot used for the device name.
// Device name is always placed at the END of the status block.
const SlotDeviceNameStart = 11

// SlotDeviceNameSlots is the number of slots reserved for the device name.
const SlotDeviceNameSlots = 8

// SlotDeviceNameEnd is the last slot used for the device name (inclusive).
const SlotDeviceNameEnd = SlotDeviceNameStart + SlotDeviceNameSlots - 1

// ---- LIMITS ----

// DeviceNameMaxChars is the maximum number of ASCII characters stored for device name.
const DeviceNameMaxChars = 16

// ---- HEALTH CODES ----

// HealthUnknown represents the boot state, before the first cycle.
const HealthUnknown uint16 = 0

// HealthOK means every read of the last cycle succeeded.
const HealthOK uint16 = 1

// HealthDegraded means some reads of the last cycle failed.
const HealthDegraded uint16 = 2

// HealthError means every read of the last cycle failed.
const HealthError uint16 = 3
