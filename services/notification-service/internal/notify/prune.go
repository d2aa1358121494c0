package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Pruner deletes notifications seen before a cutoff.
type Pruner interface {
	PruneSeen(ctx context.Context, cutoff time.Time) (int64, error)
}

// SchedulePrune registers a cron job removing notifications seen more than
// retention ago.
func SchedulePrune(c *cron.Cron, schedule string, repo Pruner, retention time.Duration, logger *slog.Logger) error {
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		n, err := repo.PruneSeen(ctx, time.Now().Add(-retention))
		if err != nil {
			logger.Error("notification prune failed", "err", err)
			return
		}
		if n > 0 {
			logger.Info("notifications pruned", "rows", n)
		}
	})
	return err
}
