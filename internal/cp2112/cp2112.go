// internal/cp2112/cp2112.go

// Package cp2112 drives a Silicon Labs CP2112 USB-HID to SMBus bridge
// and exposes it as a periph I²C bus.
package cp2112

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sstallion/go-hid"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// Factory USB identifiers.
const (
	VID uint16 = 0x10C4
	PID uint16 = 0xEA90
)

var (
	ErrTimeout   = errors.New("cp2112: response timeout")
	ErrShortRead = errors.New("cp2112: short read")
)

// HIDDev is the subset of a HIDAPI device the bridge needs.
// *hid.Device satisfies it. ReadWithTimeout reports an expired wait
// as (0, hid.ErrTimeout).
type HIDDev interface {
	Write(p []byte) (int, error)
	ReadWithTimeout(p []byte, timeout time.Duration) (int, error)
	SendFeatureReport(p []byte) (int, error)
	Close() error
}

// Config is the SMBus configuration pushed to the bridge,
// plus the host-side response timeout.
type Config struct {
	// Path selects a hidraw path; empty opens the first VID/PID match.
	Path string

	ClockSpeed    physic.Frequency
	AckAddress    byte
	AutoSendRead  bool
	WriteTimeout  time.Duration
	ReadTimeout   time.Duration
	SCLLowTimeout bool
	Retries       uint16

	// ResponseTimeout bounds one transfer, status polling included.
	ResponseTimeout time.Duration
}

// DefaultConfig matches the LVDC4816 bench setup.
func DefaultConfig() Config {
	return Config{
		ClockSpeed:      100 * physic.KiloHertz,
		AckAddress:      0x02,
		AutoSendRead:    false,
		WriteTimeout:    10 * time.Millisecond,
		ReadTimeout:     10 * time.Millisecond,
		SCLLowTimeout:   true,
		Retries:         0,
		ResponseTimeout: 100 * time.Millisecond,
	}
}

// Bus is a CP2112 bridge. It implements i2c.BusCloser.
// Transactions are serialized.
type Bus struct {
	mu   sync.Mutex
	dev  HIDDev
	cfg  Config
	exit func() error
}

// Open opens the bridge. It does not configure it.
func Open(cfg Config) (*Bus, error) {
	if err := hid.Init(); err != nil {
		return nil, fmt.Errorf("cp2112: hid init: %w", err)
	}

	var (
		dev *hid.Device
		err error
	)
	if cfg.Path != "" {
		dev, err = hid.OpenPath(cfg.Path)
	} else {
		dev, err = hid.OpenFirst(VID, PID)
	}
	if err != nil {
		_ = hid.Exit()
		return nil, fmt.Errorf("cp2112: open: %w", err)
	}

	b := New(dev, cfg)
	b.exit = hid.Exit
	return b, nil
}

// New wraps an already opened HID device.
func New(dev HIDDev, cfg Config) *Bus {
	return &Bus{dev: dev, cfg: cfg}
}

// Configure validates and pushes the SMBus configuration.
func (b *Bus) Configure() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.configureLocked()
}

func (b *Bus) configureLocked() error {
	if err := b.cfg.validate(); err != nil {
		return err
	}
	if _, err := b.dev.SendFeatureReport(encodeSMBusConfig(b.cfg)); err != nil {
		return fmt.Errorf("cp2112: set smbus config: %w", err)
	}
	return nil
}

// Close releases the HID device.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.dev == nil {
		return nil
	}
	err := b.dev.Close()
	b.dev = nil

	if b.exit != nil {
		if xerr := b.exit(); err == nil {
			err = xerr
		}
	}
	return err
}

func (b *Bus) String() string {
	if b.cfg.Path != "" {
		return "cp2112(" + b.cfg.Path + ")"
	}
	return fmt.Sprintf("cp2112(%04x:%04x)", VID, PID)
}

// SetSpeed implements i2c.Bus.
func (b *Bus) SetSpeed(f physic.Frequency) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	prev := b.cfg.ClockSpeed
	b.cfg.ClockSpeed = f
	if err := b.configureLocked(); err != nil {
		b.cfg.ClockSpeed = prev
		return err
	}
	return nil
}

func (c Config) validate() error {
	hz := c.ClockSpeed / physic.Hertz
	if hz <= 0 || hz > 0xFFFFFFFF {
		return fmt.Errorf("cp2112: clock speed %s out of range", c.ClockSpeed)
	}
	if c.WriteTimeout < 0 || c.WriteTimeout.Milliseconds() > maxTimeoutMs {
		return fmt.Errorf("cp2112: write timeout %s out of range", c.WriteTimeout)
	}
	if c.ReadTimeout < 0 || c.ReadTimeout.Milliseconds() > maxTimeoutMs {
		return fmt.Errorf("cp2112: read timeout %s out of range", c.ReadTimeout)
	}
	if c.Retries > maxTimeoutMs {
		return fmt.Errorf("cp2112: retries %d out of range", c.Retries)
	}
	if c.ResponseTimeout <= 0 {
		return errors.New("cp2112: response timeout must be > 0")
	}
	return nil
}

var _ i2c.BusCloser = &Bus{}
