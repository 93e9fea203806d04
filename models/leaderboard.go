package models

import (
	"time"
)

// LeaderboardEntry is the persisted weekly snapshot, one row per
// (week_start, user). Rank is frozen at generation time; the read path
// refreshes the stat fields in place but never rewrites Rank.
type LeaderboardEntry struct {
	ID                   string    `json:"id" gorm:"primaryKey"`
	UserID               string    `json:"user_id" gorm:"not null;uniqueIndex:idx_week_user"`
	UserName             string    `json:"user_name" gorm:"not null"`
	Points               int64     `json:"points" gorm:"default:0"`
	WeeklyTimeSpent      int64     `json:"weekly_time_spent" gorm:"default:0"` // seconds
	VideosWatched        int64     `json:"videos_watched" gorm:"default:0"`
	AssessmentsCompleted int64     `json:"assessments_completed" gorm:"default:0"`
	Rank                 int       `json:"rank" gorm:"not null"`
	WeekStart            time.Time `json:"week_start" gorm:"not null;uniqueIndex:idx_week_user;index:idx_week_rank,sort:desc"`
	WeekEnd              time.Time `json:"week_end" gorm:"not null"`
	CreatedAt            time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// LeaderboardView is a response-time row: the same snapshot fields but with
// the live rank computed from the current sort order. It is never persisted,
// which is what keeps the stored rank immutable post-generation.
type LeaderboardView struct {
	EntryID              string `json:"id"`
	UserID               string `json:"user_id"`
	UserName             string `json:"user_name"`
	Points               int64  `json:"points"`
	WeeklyTimeSpent      int64  `json:"weekly_time_spent"`
	VideosWatched        int64  `json:"videos_watched"`
	AssessmentsCompleted int64  `json:"assessments_completed"`
	Rank                 int    `json:"rank"`
}
