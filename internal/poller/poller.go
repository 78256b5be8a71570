// internal/poller/poller.go
package poller

import (
	"context"
	"errors"
	"time"

	"github.com/jpillora/backoff"

	"github.com/tamzrod/lvdc4816-monitor/internal/logger"
	"github.com/tamzrod/lvdc4816-monitor/internal/lvdc4816"
	"github.com/tamzrod/lvdc4816-monitor/internal/telemetry"
)

// Poller is a clock-driven reader of one converter.
type Poller struct {
	cfg Config
	dev Device
	now func() time.Time
}

// New creates a poller with immutable config.
func New(cfg Config, dev Device) (*Poller, error) {
	if dev == nil {
		return nil, errors.New("poller: device required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if cfg.MaxCycles < 0 {
		return nil, errors.New("poller: max cycles must be >= 0")
	}
	if cfg.Retry.Attempts < 0 {
		return nil, errors.New("poller: retry attempts must be >= 0")
	}
	if cfg.Retry.Max < cfg.Retry.Min {
		return nil, errors.New("poller: retry max must be >= min")
	}
	return &Poller{cfg: cfg, dev: dev, now: time.Now}, nil
}

// PollOnce performs exactly one poll cycle.
// A failed read is logged and recorded as a failed sample; the cycle continues.
func (p *Poller) PollOnce(ctx context.Context) telemetry.Record {
	out := make([]telemetry.Sample, len(readPlan))
	for i, reg := range readPlan {
		out[i] = p.read(ctx, reg)
	}

	return telemetry.Record{
		At:      p.now(),
		Temp1:   out[0],
		Temp2:   out[1],
		HV:      out[2],
		LV:      out[3],
		I2:      out[4],
		I1:      out[5],
		I1Count: out[6],
		Status:  out[7],
	}
}

// read performs one register read plus up to Retry.Attempts retries.
func (p *Poller) read(ctx context.Context, reg lvdc4816.Register) telemetry.Sample {
	b := &backoff.Backoff{
		Min:    p.cfg.Retry.Min,
		Max:    p.cfg.Retry.Max,
		Factor: 2,
		Jitter: false,
	}

	for attempt := 0; ; attempt++ {
		v, err := p.dev.ReadWord(reg)
		if err == nil {
			return telemetry.Valid(v)
		}
		logger.Error("%v", err)

		if attempt >= p.cfg.Retry.Attempts {
			return telemetry.Failed()
		}

		t := time.NewTimer(b.Duration())
		select {
		case <-ctx.Done():
			t.Stop()
			return telemetry.Failed()
		case <-t.C:
		}
	}
}
