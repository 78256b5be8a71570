// internal/poller/runner.go
package poller

import (
	"context"
	"time"

	"github.com/tamzrod/lvdc4816-monitor/internal/logger"
	"github.com/tamzrod/lvdc4816-monitor/internal/writer"
)

// Run polls until ctx is cancelled or MaxCycles records were delivered.
// Writer errors are logged, never fatal. No overlap between cycles.
func (p *Poller) Run(ctx context.Context, w writer.Writer) error {
	for cycle := 1; ; cycle++ {
		rec := p.PollOnce(ctx)
		logger.Info("%s", rec)

		if err := w.Write(rec); err != nil {
			logger.Error("write failed: %v", err)
		}

		if p.cfg.MaxCycles > 0 && cycle >= p.cfg.MaxCycles {
			return nil
		}

		timer := time.NewTimer(p.cfg.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
