package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ycwei/img2md/internal/repo"
)

// RunRetention starts a daily cron job that deletes histories older than
// retentionDays. It does nothing when retentionDays <= 0. The returned cron
// keeps running for the process lifetime; callers may Stop it on shutdown.
func RunRetention(histories *repo.HistoryRepo, retentionDays int) *cron.Cron {
	if retentionDays <= 0 {
		return nil
	}

	c := cron.New()

	sweep := func() {
		cutoff := time.Now().AddDate(0, 0, -retentionDays)
		n, err := histories.DeleteOlderThan(context.Background(), cutoff)
		if err != nil {
			slog.Error("retention: sweep failed", "error", err)
			return
		}
		if n > 0 {
			slog.Info("retention: deleted old histories", "count", n, "cutoff", cutoff)
		}
	}

	// 03:17 daily, off the hour to avoid aligning with other nightly jobs.
	if _, err := c.AddFunc("17 3 * * *", sweep); err != nil {
		slog.Error("retention: invalid cron spec", "error", err)
		return nil
	}

	c.Start()
	slog.Info("retention: sweep scheduled", "days", retentionDays)
	return c
}
