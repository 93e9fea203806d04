package models

import (
	"time"
)

// Video is an instructional video attached to a roadmap topic.
type Video struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	Title        string    `json:"title" gorm:"not null"`
	Description  string    `json:"description"`
	VideoURL     string    `json:"video_url" gorm:"not null"`
	ThumbnailURL string    `json:"thumbnail_url"`
	Duration     int64     `json:"duration" gorm:"not null"` // seconds
	TopicID      string    `json:"topic_id" gorm:"not null;index"`
	Subject      string    `json:"subject" gorm:"not null;index"`
	Difficulty   string    `json:"difficulty" gorm:"default:'Beginner'"`
	Provider     string    `json:"provider" gorm:"default:'YouTube'"`
	ProviderID   string    `json:"video_id" gorm:"not null"` // YouTube video ID or provider-specific ID
	Views        int64     `json:"views" gorm:"default:0"`
	RatingAvg    float64   `json:"rating_average" gorm:"default:0"`
	RatingCount  int64     `json:"rating_count" gorm:"default:0"`
	SortOrder    int       `json:"order" gorm:"column:sort_order;default:0"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// VideoProgress tracks per-user watch state. Completed flips at 90% watched
// and the leaderboard derives videosWatched by counting completed rows.
type VideoProgress struct {
	ID              string    `json:"id" gorm:"primaryKey"`
	UserID          string    `json:"user_id" gorm:"not null;uniqueIndex:idx_user_video"`
	VideoID         string    `json:"video_id" gorm:"not null;uniqueIndex:idx_user_video"`
	WatchedDuration int64     `json:"watched_duration" gorm:"default:0"` // seconds, monotonic max
	TotalDuration   int64     `json:"total_duration" gorm:"default:0"`
	Completed       bool      `json:"completed" gorm:"default:false"`
	LastWatchedAt   time.Time `json:"last_watched_at"`
}
