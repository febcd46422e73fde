// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"github.com/dalemusser/studyhub/internal/app/lifecycle"
	"go.uber.org/zap"
)

// GroupSweeper removes expired groups and finishes interrupted deletions.
type GroupSweeper interface {
	Sweep(ctx context.Context) (lifecycle.SweepResult, error)
}

// ExpiredGroupSweepJob sweeps on a timer so expired groups disappear even
// when nobody opens the group list.
func ExpiredGroupSweepJob(sweeper GroupSweeper, logger *zap.Logger, interval time.Duration) Job {
	return Job{
		Name:     "expired-group-sweep",
		Interval: interval,
		Timeout:  2 * time.Minute,
		Run: func(ctx context.Context) error {
			res, err := sweeper.Sweep(ctx)
			if res.Groups > 0 {
				logger.Info("swept expired groups",
					zap.Int("groups", res.Groups),
					zap.Int("files", res.Files))
			}
			return err
		},
	}
}
