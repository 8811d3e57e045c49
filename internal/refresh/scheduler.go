package refresh

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Parse validates a standard 5-field cron expression
// (minute hour day-of-month month day-of-week), e.g. "*/5 * * * *".
func Parse(expr string) (cron.Schedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(strings.TrimSpace(expr))
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", expr, err)
	}
	return sched, nil
}

// Start runs fn at every tick of expr until ctx is done. An empty expression
// disables the scheduler. The returned channel is closed when the loop exits.
func Start(ctx context.Context, expr string, loc *time.Location, logger *zap.Logger, fn func(ctx context.Context)) (<-chan struct{}, error) {
	done := make(chan struct{})
	if strings.TrimSpace(expr) == "" {
		logger.Info("admin refresh disabled (admin_refresh_schedule not set)")
		close(done)
		return done, nil
	}
	sched, err := Parse(expr)
	if err != nil {
		close(done)
		return done, err
	}
	if loc == nil {
		loc = time.Local
	}
	logger.Info("admin refresh scheduled", zap.String("cron", expr))

	go func() {
		defer close(done)
		for {
			now := time.Now().In(loc)
			next := sched.Next(now)
			wait := next.Sub(now)
			logger.Debug("next admin refresh", zap.Time("at", next), zap.Duration("in", wait.Round(time.Second)))

			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				logger.Info("admin refresh stopped")
				return
			case <-timer.C:
			}
			fn(ctx)
		}
	}()
	return done, nil
}
