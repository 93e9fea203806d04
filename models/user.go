package models

import (
	"encoding/json"
	"time"
)

// User is the account record plus the denormalized activity counters the
// leaderboard reads (points, time spent). Counters live directly on the row
// so a leaderboard generation is a single table scan.
type User struct {
	ID        string `json:"id" gorm:"primaryKey"`
	Name      string `json:"name" gorm:"not null"`
	Email     string `json:"email" gorm:"uniqueIndex;not null"`
	Password  string `json:"-" gorm:"not null"` // bcrypt hash, never serialized
	AvatarURL string `json:"avatar_url,omitempty"`

	// Activity counters
	Points          int64     `json:"points" gorm:"default:0"`
	TotalTimeSpent  int64     `json:"total_time_spent" gorm:"default:0"`  // seconds
	WeeklyTimeSpent int64     `json:"weekly_time_spent" gorm:"default:0"` // seconds, scoped to current week
	LastActiveAt    time.Time `json:"last_active_at"`

	// Weekly stats window. StatsWeekStart marks which week the weekly
	// counters belong to; a mismatch with the current week start means
	// the counters are stale and must be reset before accumulating.
	StatsWeekStart            *time.Time `json:"stats_week_start,omitempty"`
	StatsTimeSpent            int64      `json:"stats_time_spent" gorm:"default:0"`
	StatsVideosWatched        int64      `json:"stats_videos_watched" gorm:"default:0"`
	StatsAssessmentsCompleted int64      `json:"stats_assessments_completed" gorm:"default:0"`
	StatsPointsEarned         int64      `json:"stats_points_earned" gorm:"default:0"`
	HourlyUsage               string     `json:"-" gorm:"type:text"` // JSON-encoded [24]int64

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	VideoProgress     []VideoProgress    `json:"video_progress,omitempty" gorm:"foreignKey:UserID"`
	AssessmentResults []AssessmentResult `json:"assessment_results,omitempty" gorm:"foreignKey:UserID"`
}

// HourlyBuckets decodes the per-hour usage column. A missing or malformed
// column yields 24 zeroed buckets.
func (u *User) HourlyBuckets() [24]int64 {
	var buckets [24]int64
	if u.HourlyUsage == "" {
		return buckets
	}
	if err := json.Unmarshal([]byte(u.HourlyUsage), &buckets); err != nil {
		return [24]int64{}
	}
	return buckets
}

// SetHourlyBuckets encodes the per-hour usage back into the text column.
func (u *User) SetHourlyBuckets(buckets [24]int64) {
	raw, _ := json.Marshal(buckets)
	u.HourlyUsage = string(raw)
}
