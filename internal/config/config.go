// internal/config/config.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DriverCP2112 = "cp2112"
	DriverI2CDev = "i2cdev"
)

type Config struct {
	Bus    BusConfig     `yaml:"bus"`
	Device DeviceConfig  `yaml:"device"`
	Poll   PollConfig    `yaml:"poll"`
	Log    LogConfig     `yaml:"log"`
	Mirror *MirrorConfig `yaml:"mirror"`
}

// ---- BUS ----

type BusConfig struct {
	Driver string `yaml:"driver"`
	// Name is the i2cdev bus name, or a hidraw path for cp2112.
	Name string `yaml:"name"`

	ClockHz           int    `yaml:"clock_hz"`
	AckAddress        uint8  `yaml:"ack_address"`
	AutoSendRead      bool   `yaml:"auto_send_read"`
	WriteTimeoutMs    int    `yaml:"write_timeout_ms"`
	ReadTimeoutMs     int    `yaml:"read_timeout_ms"`
	SCLLowTimeout     *bool  `yaml:"scl_low_timeout"`
	Retries           uint16 `yaml:"retries"`
	ResponseTimeoutMs int    `yaml:"response_timeout_ms"`
}

// ---- DEVICE ----

type DeviceConfig struct {
	Address             uint16   `yaml:"address"` // 7-bit
	OCPSetpointA        *float64 `yaml:"ocp_setpoint_a"`
	DisableWriteProtect *bool    `yaml:"disable_write_protect"`
}

// ---- POLL ----

type PollConfig struct {
	IntervalMs  int `yaml:"interval_ms"`
	ReadRetries int `yaml:"read_retries"`
	RetryMinMs  int `yaml:"retry_min_ms"`
	RetryMaxMs  int `yaml:"retry_max_ms"`
}

// ---- LOG ----

type LogConfig struct {
	CSVPath string `yaml:"csv_path"`
	Quiet   bool   `yaml:"quiet"`
}

// ---- MIRROR (optional) ----

type MirrorConfig struct {
	Endpoint    string `yaml:"endpoint"`
	UnitID      uint8  `yaml:"unit_id"`
	BaseAddress uint16 `yaml:"base_address"`
	TimeoutMs   int    `yaml:"timeout_ms"`
}

// Default returns the bench configuration.
func Default() *Config {
	scl := true
	ocp := 600.0
	wp := true

	return &Config{
		Bus: BusConfig{
			Driver:            DriverCP2112,
			ClockHz:           100000,
			AckAddress:        0x02,
			AutoSendRead:      false,
			WriteTimeoutMs:    10,
			ReadTimeoutMs:     10,
			SCLLowTimeout:     &scl,
			Retries:           0,
			ResponseTimeoutMs: 100,
		},
		Device: DeviceConfig{
			Address:             0x64,
			OCPSetpointA:        &ocp,
			DisableWriteProtect: &wp,
		},
		Poll: PollConfig{
			IntervalMs:  500,
			ReadRetries: 0,
			RetryMinMs:  10,
			RetryMaxMs:  100,
		},
		Log: LogConfig{
			CSVPath: "outputA.csv",
		},
	}
}

// Load reads a YAML file and fills unset values from Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML and fills unset values from Default.
func Parse(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	Normalize(&c)
	return &c, nil
}
