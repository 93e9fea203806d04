// workers/week_reset_worker.go
package workers

import (
	"context"
	"log"
	"time"

	"skillpath-backend/models"
	"skillpath-backend/utils"

	"gorm.io/gorm"
)

// WeekResetWorker zeroes weekly counters for users whose stats week-start
// has fallen behind the current week. Normally the rollover happens inline
// when a time delta arrives, but inactive users never send one. Without
// this sweep their last week's time would leak into the new week's
// leaderboard generation.
type WeekResetWorker struct {
	db       *gorm.DB
	interval time.Duration
}

func NewWeekResetWorker(db *gorm.DB) *WeekResetWorker {
	return &WeekResetWorker{
		db:       db,
		interval: 15 * time.Minute,
	}
}

func (w *WeekResetWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Week Reset Worker (stale weekly counters → 0)…")
	go w.run(ctx)
}

func (w *WeekResetWorker) run(ctx context.Context) {
	if err := w.sweep(); err != nil {
		log.Printf("⚠️ Initial week reset sweep failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.sweep(); err != nil {
				log.Printf("❌ Week reset sweep failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Week Reset Worker stopped")
			return
		}
	}
}

// sweep resets users whose StatsWeekStart predates the current week. The
// counters go to zero, not to a carried-over value: a new week starts from
// nothing until a fresh delta arrives.
func (w *WeekResetWorker) sweep() error {
	weekStart := utils.WeekStart()

	result := w.db.Model(&models.User{}).
		Where("stats_week_start IS NOT NULL AND stats_week_start < ?", weekStart).
		Updates(map[string]interface{}{
			"weekly_time_spent":           0,
			"stats_week_start":            nil,
			"stats_time_spent":            0,
			"stats_videos_watched":        0,
			"stats_assessments_completed": 0,
			"stats_points_earned":         0,
			"hourly_usage":                "",
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		log.Printf("🧹 Week reset: cleared weekly counters for %d stale users", result.RowsAffected)
	}
	return nil
}
