// services/scheduler.go
package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartWeeklyScheduler pre-generates the leaderboard shortly after week
// rollover so the first Sunday-morning reader doesn't pay the generation
// cost. Hourly cadence keeps it cheap: EnsureCurrentWeek is a no-op once
// the week's snapshot exists.
func (s *LeaderboardService) StartWeeklyScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			if err := s.EnsureCurrentWeek(); err != nil {
				log.Printf("[Scheduler] Leaderboard pre-generation failed: %v", err)
			}
		}),
	)
}
