package services

import (
	"fmt"
	"time"

	"skillpath-backend/models"
	"skillpath-backend/utils"

	"gorm.io/gorm"
)

type ActivityService struct {
	DB *gorm.DB
}

func NewActivityService(db *gorm.DB) *ActivityService {
	return &ActivityService{DB: db}
}

// ApplyPointsDelta is the single write-gate for a user's point total.
// Leaderboard bonuses and video-completion awards both go through here so
// the mutation is one atomic UPDATE rather than read-modify-write.
func (s *ActivityService) ApplyPointsDelta(userID string, delta int64) error {
	result := s.DB.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("points", gorm.Expr("points + ?", delta))
	if result.Error != nil {
		return fmt.Errorf("failed to apply points delta for %s: %w", userID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("user %s not found", userID)
	}
	return nil
}

// TrackTimeResult is what the client timer gets back after posting a delta.
type TrackTimeResult struct {
	TotalTimeSpent  int64      `json:"total_time_spent"`
	WeeklyTimeSpent int64      `json:"weekly_time_spent"`
	WeekStart       *time.Time `json:"week_start,omitempty"`
	StatsTimeSpent  int64      `json:"stats_time_spent"`
	HourlyUsage     [24]int64  `json:"hourly_usage"`
}

// TrackTime accumulates a positive elapsed-seconds delta. Week rollover is
// detected by comparing the stored stats week-start against the current
// one; on rollover the weekly counters reset to just this delta, nothing
// carries over. The leaderboard relies on this: weeklyTimeSpent read at
// generation time is already scoped to the current week.
func (s *ActivityService) TrackTime(userID string, seconds int64, timestamp time.Time) (*TrackTimeResult, error) {
	if seconds <= 0 {
		return nil, fmt.Errorf("seconds must be positive")
	}
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	var res *TrackTimeResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			return err
		}

		weekStart := utils.WeekStartAt(timestamp)
		isNewWeek := user.StatsWeekStart == nil || !user.StatsWeekStart.Equal(weekStart)

		user.TotalTimeSpent += seconds
		user.LastActiveAt = time.Now()

		hour := timestamp.Hour()
		if isNewWeek {
			user.WeeklyTimeSpent = seconds
			user.StatsWeekStart = &weekStart
			user.StatsTimeSpent = seconds
			user.StatsVideosWatched = 0
			user.StatsAssessmentsCompleted = 0
			user.StatsPointsEarned = 0
			var buckets [24]int64
			buckets[hour] = seconds
			user.SetHourlyBuckets(buckets)
		} else {
			user.WeeklyTimeSpent += seconds
			user.StatsTimeSpent += seconds
			buckets := user.HourlyBuckets()
			buckets[hour] += seconds
			user.SetHourlyBuckets(buckets)
		}

		if err := tx.Save(&user).Error; err != nil {
			return err
		}

		res = &TrackTimeResult{
			TotalTimeSpent:  user.TotalTimeSpent,
			WeeklyTimeSpent: user.WeeklyTimeSpent,
			WeekStart:       user.StatsWeekStart,
			StatsTimeSpent:  user.StatsTimeSpent,
			HourlyUsage:     user.HourlyBuckets(),
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to track time for %s: %w", userID, err)
	}
	return res, nil
}

// TimeBreakdown splits seconds into hours/minutes for display.
type TimeBreakdown struct {
	Hours        int64 `json:"hours"`
	Minutes      int64 `json:"minutes"`
	TotalSeconds int64 `json:"total_seconds"`
}

func breakdown(seconds int64) TimeBreakdown {
	return TimeBreakdown{
		Hours:        seconds / 3600,
		Minutes:      (seconds % 3600) / 60,
		TotalSeconds: seconds,
	}
}

// ActivityStats is the profile/stats payload.
type ActivityStats struct {
	TotalTimeSpent       TimeBreakdown `json:"total_time_spent"`
	WeeklyTimeSpent      TimeBreakdown `json:"weekly_time_spent"`
	WeekStart            *time.Time    `json:"week_start,omitempty"`
	HourlyUsage          [24]int64     `json:"hourly_usage"`
	Points               int64         `json:"points"`
	PointsEarnedThisWeek int64         `json:"points_earned_this_week"`
	VideosCompleted      int64         `json:"videos_completed"`
	AssessmentsCompleted int64         `json:"assessments_completed"`
	LastActiveAt         time.Time     `json:"last_active_at"`
}

// Stats returns the user's activity summary.
func (s *ActivityService) Stats(userID string) (*ActivityStats, error) {
	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}

	var videosCompleted int64
	if err := s.DB.Model(&models.VideoProgress{}).
		Where("user_id = ? AND completed = ?", userID, true).
		Count(&videosCompleted).Error; err != nil {
		return nil, err
	}
	var assessmentsCompleted int64
	if err := s.DB.Model(&models.AssessmentResult{}).
		Where("user_id = ?", userID).
		Count(&assessmentsCompleted).Error; err != nil {
		return nil, err
	}

	return &ActivityStats{
		TotalTimeSpent:       breakdown(user.TotalTimeSpent),
		WeeklyTimeSpent:      breakdown(user.WeeklyTimeSpent),
		WeekStart:            user.StatsWeekStart,
		HourlyUsage:          user.HourlyBuckets(),
		Points:               user.Points,
		PointsEarnedThisWeek: user.StatsPointsEarned,
		VideosCompleted:      videosCompleted,
		AssessmentsCompleted: assessmentsCompleted,
		LastActiveAt:         user.LastActiveAt,
	}, nil
}
