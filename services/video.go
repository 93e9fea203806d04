package services

import (
	"fmt"
	"time"

	"skillpath-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Points granted the first time a video crosses the completion threshold.
const videoCompletionPoints = 10

// completionThreshold: 90% watched counts as completed.
const completionThreshold = 0.9

type VideoService struct {
	DB *gorm.DB
}

func NewVideoService(db *gorm.DB) *VideoService {
	return &VideoService{DB: db}
}

// VideoFilter narrows the listing.
type VideoFilter struct {
	TopicID    string
	Subject    string
	Difficulty string
}

// List returns videos matching the filter, in display order.
func (s *VideoService) List(filter VideoFilter) ([]models.Video, error) {
	db := s.DB.Model(&models.Video{})
	if filter.TopicID != "" {
		db = db.Where("topic_id = ?", filter.TopicID)
	}
	if filter.Subject != "" {
		db = db.Where("subject = ?", filter.Subject)
	}
	if filter.Difficulty != "" {
		db = db.Where("difficulty = ?", filter.Difficulty)
	}

	var videos []models.Video
	err := db.Order("sort_order ASC, created_at DESC").Find(&videos).Error
	return videos, err
}

// Get returns one video and bumps its view counter.
func (s *VideoService) Get(id string) (*models.Video, error) {
	var video models.Video
	if err := s.DB.First(&video, "id = ?", id).Error; err != nil {
		return nil, err
	}

	if err := s.DB.Model(&video).
		UpdateColumn("views", gorm.Expr("views + 1")).Error; err != nil {
		return nil, err
	}
	video.Views++
	return &video, nil
}

// ByTopic returns the videos attached to a roadmap topic.
func (s *VideoService) ByTopic(topicID string) ([]models.Video, error) {
	var videos []models.Video
	err := s.DB.Where("topic_id = ?", topicID).
		Order("sort_order ASC, rating_avg DESC").
		Find(&videos).Error
	return videos, err
}

// ProgressResult is the response to a progress update.
type ProgressResult struct {
	WatchedDuration int64   `json:"watched_duration"`
	TotalDuration   int64   `json:"total_duration"`
	Completed       bool    `json:"completed"`
	Progress        float64 `json:"progress"` // percentage
}

// UpdateProgress records watch progress for (user, video). Watched duration
// is monotonic (rewinds never shrink it). Crossing the 90% threshold for
// the first time awards completion points through the points write-gate and
// bumps the weekly videos-watched stat.
func (s *VideoService) UpdateProgress(userID, videoID string, watchedDuration, totalDuration int64) (*ProgressResult, error) {
	if totalDuration <= 0 {
		return nil, fmt.Errorf("total duration must be positive")
	}

	var video models.Video
	if err := s.DB.First(&video, "id = ?", videoID).Error; err != nil {
		return nil, err
	}

	completed := float64(watchedDuration) >= float64(totalDuration)*completionThreshold
	firstCompletion := false

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var progress models.VideoProgress
		findErr := tx.Where("user_id = ? AND video_id = ?", userID, videoID).First(&progress).Error

		if findErr == gorm.ErrRecordNotFound {
			firstCompletion = completed
			progress = models.VideoProgress{
				ID:              uuid.NewString(),
				UserID:          userID,
				VideoID:         videoID,
				WatchedDuration: watchedDuration,
				TotalDuration:   totalDuration,
				Completed:       completed,
				LastWatchedAt:   time.Now(),
			}
			if err := tx.Create(&progress).Error; err != nil {
				return err
			}
		} else if findErr != nil {
			return findErr
		} else {
			firstCompletion = completed && !progress.Completed
			if watchedDuration > progress.WatchedDuration {
				progress.WatchedDuration = watchedDuration
			}
			progress.TotalDuration = totalDuration
			progress.Completed = progress.Completed || completed
			progress.LastWatchedAt = time.Now()
			if err := tx.Save(&progress).Error; err != nil {
				return err
			}
		}

		if firstCompletion {
			if err := tx.Model(&models.User{}).Where("id = ?", userID).
				UpdateColumn("stats_videos_watched", gorm.Expr("stats_videos_watched + 1")).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.User{}).Where("id = ?", userID).
				UpdateColumn("stats_points_earned", gorm.Expr("stats_points_earned + ?", videoCompletionPoints)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update video progress: %w", err)
	}

	if firstCompletion {
		if err := NewActivityService(s.DB).ApplyPointsDelta(userID, videoCompletionPoints); err != nil {
			return nil, err
		}
	}

	return &ProgressResult{
		WatchedDuration: watchedDuration,
		TotalDuration:   totalDuration,
		Completed:       completed,
		Progress:        float64(watchedDuration) / float64(totalDuration) * 100,
	}, nil
}
