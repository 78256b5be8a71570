// internal/lvdc4816/lvdc4816.go
package lvdc4816

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"

	"github.com/tamzrod/lvdc4816-monitor/internal/telemetry"
)

// Addr is the 7-bit slave address (0xC8 on the wire).
const Addr = 0x64

// WordLen is the transfer size of every register.
const WordLen = 2

// Register is one entry of the fixed register map.
type Register struct {
	Name string
	Addr byte
}

var (
	RegWriteProtect = Register{Name: "WriteProtect", Addr: 0x10}
	RegStatus       = Register{Name: "Status", Addr: 0x79}
	RegHV           = Register{Name: "HV", Addr: 0x88}
	RegLV           = Register{Name: "LV", Addr: 0x8B}
	RegI2           = Register{Name: "I2", Addr: 0x8C}
	RegTemp1        = Register{Name: "Temperature1", Addr: 0x8D}
	RegTemp2        = Register{Name: "Temperature2", Addr: 0x8E}
	RegI1           = Register{Name: "I1", Addr: 0x90}
	RegMFRVersion   = Register{Name: "MFRversion", Addr: 0x9B}
	RegI1Count      = Register{Name: "I1_CNT", Addr: 0xCD}
	RegHWOCP        = Register{Name: "HW_OCP", Addr: 0xEA}
)

// writeProtectOff clears every protection bit.
const writeProtectOff byte = 0x00

// LVDC4816 is a converter on an SMBus segment.
type LVDC4816 struct {
	dev *i2c.Dev
}

// New binds a converter at addr on bus. addr 0 selects Addr.
func New(bus i2c.Bus, addr uint16) *LVDC4816 {
	if addr == 0 {
		addr = Addr
	}
	return &LVDC4816{dev: &i2c.Dev{Addr: addr, Bus: bus}}
}

func (d *LVDC4816) String() string {
	return "lvdc4816@" + d.dev.String()
}

// ReadWord reads one register, low byte first.
func (d *LVDC4816) ReadWord(reg Register) (uint16, error) {
	buf := make([]byte, WordLen)
	if err := d.dev.Tx([]byte{reg.Addr}, buf); err != nil {
		return 0, fmt.Errorf("lvdc4816: read %s reg=0x%02X: %w", reg.Name, reg.Addr, err)
	}
	return telemetry.Word(buf[0], buf[1]), nil
}

// WriteWord writes one register, low byte first.
func (d *LVDC4816) WriteWord(reg Register, v uint16) error {
	return d.write(reg, byte(v), byte(v>>8))
}

// FirmwareVersion reads MFR_VERSION.
func (d *LVDC4816) FirmwareVersion() (uint16, error) {
	return d.ReadWord(RegMFRVersion)
}

// OCP reads the hardware over-current setpoint as its raw register value.
func (d *LVDC4816) OCP() (uint16, error) {
	return d.ReadWord(RegHWOCP)
}

// SetOCP writes the hardware over-current setpoint in amps.
func (d *LVDC4816) SetOCP(amps float64) error {
	lo, hi := telemetry.EncodeOCP(amps)
	return d.write(RegHWOCP, lo, hi)
}

// DisableWriteProtect unlocks the configuration registers.
// WRITE_PROTECT is a byte register: the payload is the command then 0x00.
func (d *LVDC4816) DisableWriteProtect() error {
	return d.write(RegWriteProtect, writeProtectOff)
}

func (d *LVDC4816) write(reg Register, data ...byte) error {
	w := append([]byte{reg.Addr}, data...)
	if err := d.dev.Tx(w, nil); err != nil {
		return fmt.Errorf("lvdc4816: write %s reg=0x%02X: %w", reg.Name, reg.Addr, err)
	}
	return nil
}
