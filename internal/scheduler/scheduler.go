package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/bookshelf-app/bookshelf/internal/metrics"
	"github.com/bookshelf-app/bookshelf/internal/repo"
	"github.com/robfig/cron/v3"
)

// Run starts a background cron that re-derives every book's average_rating and
// total_reviews from the reviews table at the given cron expression. The
// per-request transactions keep those columns current; this job repairs any
// drift (e.g. after a partially failed write or manual data surgery).
// Returns the cron so the caller can Stop it on shutdown.
func Run(books *repo.BookRepo, cronExpr string) (*cron.Cron, error) {
	c := cron.New()

	refresh := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		start := time.Now()
		updated, err := books.RefreshRatings(ctx)
		if err != nil {
			slog.Error("rating refresh failed", "error", err)
			return
		}
		metrics.RatingRefreshBooks.Add(float64(updated))
		slog.Info("rating refresh complete",
			"books_updated", updated,
			"duration_ms", time.Since(start).Milliseconds())
	}

	if _, err := c.AddFunc(cronExpr, refresh); err != nil {
		return nil, err
	}

	c.Start()
	return c, nil
}
