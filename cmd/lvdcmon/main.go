// cmd/lvdcmon/main.go
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/tamzrod/lvdc4816-monitor/internal/config"
	"github.com/tamzrod/lvdc4816-monitor/internal/cp2112"
	"github.com/tamzrod/lvdc4816-monitor/internal/logger"
	"github.com/tamzrod/lvdc4816-monitor/internal/poller"
	"github.com/tamzrod/lvdc4816-monitor/internal/writer"
)

// exitDeviceFailure is the status used when the bridge cannot be opened or configured.
const exitDeviceFailure = 255

const defaultConfigPath = "lvdcmon.yml"

func main() {
	cfgPath := flag.String("config", defaultConfigPath, "YAML configuration file (may be absent unless set)")
	csvPath := flag.String("csv", "", "CSV log path (overrides log.csv_path)")
	cycles := flag.Int("cycles", 0, "stop after N polling cycles (0 = run until interrupted)")
	quiet := flag.Bool("quiet", false, "suppress informational output")
	flag.Parse()

	explicit := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			explicit = true
		}
	})

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := loadConfig(*cfgPath, explicit)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if *csvPath != "" {
		cfg.Log.CSVPath = *csvPath
	}
	if *quiet {
		cfg.Log.Quiet = true
	}
	if *cycles < 0 {
		log.Fatalf("config validation failed: -cycles %d: must be >= 0", *cycles)
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}
	logger.Quiet = cfg.Log.Quiet

	// --------------------
	// Transport
	// --------------------

	bus, msg, err := openBus(cfg.Bus)
	if err != nil {
		deviceFailure(msg, err)
	}
	defer bus.Close()

	// --------------------
	// Sinks + poller
	// --------------------

	out, mirror, closeWriters, err := writer.Build(cfg)
	if err != nil {
		log.Fatalf("writer build failed: %v", err)
	}
	defer closeWriters()

	p, err := poller.Build(cfg, bus, *cycles)
	if err != nil {
		log.Fatalf("poller build failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rep := p.Startup(ctx)
	if mirror != nil {
		mirror.SetIdentity(rep.Version, rep.OCPAfter)
	}

	if err := p.Run(ctx, out); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("poller stopped: %v", err)
	}
}

// loadConfig reads path. A missing file yields Default unless the
// path was given explicitly.
func loadConfig(path string, explicit bool) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		cfg = config.Default()
		config.Normalize(cfg)
		return cfg, nil
	}
	return nil, err
}

// ---- transport ----

const (
	msgOpenFailed      = "Could not open device."
	msgConfigureFailed = "Could not configure device."
)

// openBus opens and configures the SMBus transport.
// On failure it returns the operator message for the failed step.
func openBus(b config.BusConfig) (i2c.BusCloser, string, error) {
	if b.Driver == config.DriverI2CDev {
		return openI2CDev(b)
	}

	bus, err := cp2112.Open(bridgeConfig(b))
	if err != nil {
		return nil, msgOpenFailed, err
	}
	logger.Info("Device successfully opened.")

	return configureBridge(bus)
}

// configureBridge pushes the SMBus configuration and closes the bridge on failure.
func configureBridge(bus *cp2112.Bus) (i2c.BusCloser, string, error) {
	if err := bus.Configure(); err != nil {
		bus.Close()
		return nil, msgConfigureFailed, err
	}
	logger.Info("Device successfully configured.")
	return bus, "", nil
}

// openI2CDev opens a kernel i2c-dev bus. The kernel owns the bus clock:
// a refused SetSpeed is logged, not fatal.
func openI2CDev(b config.BusConfig) (i2c.BusCloser, string, error) {
	if _, err := host.Init(); err != nil {
		return nil, msgOpenFailed, err
	}
	bus, err := i2creg.Open(b.Name)
	if err != nil {
		return nil, msgOpenFailed, err
	}
	logger.Info("Device successfully opened.")

	requestClock(bus, b.ClockHz)
	logger.Info("Device successfully configured.")
	return bus, "", nil
}

// requestClock asks bus for hz and reports whether it was applied.
func requestClock(bus i2c.Bus, hz int) bool {
	if err := bus.SetSpeed(physic.Frequency(hz) * physic.Hertz); err != nil {
		logger.Info("bus clock left at kernel setting (%s: %v)", bus, err)
		return false
	}
	return true
}

func bridgeConfig(b config.BusConfig) cp2112.Config {
	c := cp2112.Config{
		Path:            b.Name,
		ClockSpeed:      physic.Frequency(b.ClockHz) * physic.Hertz,
		AckAddress:      b.AckAddress,
		AutoSendRead:    b.AutoSendRead,
		WriteTimeout:    time.Duration(b.WriteTimeoutMs) * time.Millisecond,
		ReadTimeout:     time.Duration(b.ReadTimeoutMs) * time.Millisecond,
		Retries:         b.Retries,
		ResponseTimeout: time.Duration(b.ResponseTimeoutMs) * time.Millisecond,
	}
	if b.SCLLowTimeout != nil {
		c.SCLLowTimeout = *b.SCLLowTimeout
	}
	return c
}

// ---- fatal exit ----

// deviceFailure reports a transport failure and exits with exitDeviceFailure.
func deviceFailure(msg string, err error) {
	logger.Error("%s (%v)", msg, err)

	fd := os.Stdin.Fd()
	waitForEnter(isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd), os.Stdin, os.Stderr)
	os.Exit(exitDeviceFailure)
}

// waitForEnter keeps the message visible on a terminal until Enter is pressed.
// Unattended runs return immediately.
func waitForEnter(interactive bool, in io.Reader, out io.Writer) {
	if !interactive {
		return
	}
	fmt.Fprint(out, "Enter to exit...")
	_, _ = bufio.NewReader(in).ReadString('\n')
}
