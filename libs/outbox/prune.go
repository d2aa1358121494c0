package outbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// SchedulePrune registers a cron job deleting rows published more than
// retention ago.
func SchedulePrune(c *cron.Cron, schedule string, repo *Repository, retention time.Duration, logger *slog.Logger) error {
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		n, err := repo.PrunePublished(ctx, time.Now().Add(-retention))
		if err != nil {
			logger.Error("outbox prune failed", "err", err)
			return
		}
		if n > 0 {
			logger.Info("outbox pruned", "rows", n)
		}
	})
	return err
}
