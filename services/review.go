package services

import (
	"fmt"

	"skillpath-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReviewService struct {
	DB *gorm.DB
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{DB: db}
}

// List returns reviews, optionally filtered by type and target, newest first.
func (s *ReviewService) List(reviewType, targetID string) ([]models.Review, error) {
	db := s.DB.Model(&models.Review{})
	if reviewType != "" {
		db = db.Where("type = ?", reviewType)
	}
	if targetID != "" {
		db = db.Where("target_id = ?", targetID)
	}

	var reviews []models.Review
	err := db.Preload("User").Order("created_at DESC").Limit(50).Find(&reviews).Error
	return reviews, err
}

// Create stores a review and folds the rating into the target video's
// aggregate. One review per (user, type, target).
func (s *ReviewService) Create(userID, reviewType, targetID string, rating int, comment string) (*models.Review, error) {
	if reviewType != "video" && reviewType != "assessment" {
		return nil, fmt.Errorf("invalid review type %q", reviewType)
	}
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("rating must be between 1 and 5")
	}

	var existing models.Review
	err := s.DB.Where("user_id = ? AND type = ? AND target_id = ?", userID, reviewType, targetID).
		First(&existing).Error
	if err == nil {
		return nil, fmt.Errorf("you have already reviewed this item")
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	review := models.Review{
		ID:       uuid.NewString(),
		UserID:   userID,
		Type:     reviewType,
		TargetID: targetID,
		Rating:   rating,
		Comment:  comment,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&review).Error; err != nil {
			return err
		}
		if reviewType == "video" {
			return addVideoRating(tx, targetID, rating)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	if err := s.DB.Preload("User").First(&review, "id = ?", review.ID).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func addVideoRating(tx *gorm.DB, videoID string, rating int) error {
	var video models.Video
	if err := tx.First(&video, "id = ?", videoID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil // review on a deleted video is still allowed
		}
		return err
	}

	total := video.RatingAvg*float64(video.RatingCount) + float64(rating)
	video.RatingCount++
	video.RatingAvg = total / float64(video.RatingCount)
	return tx.Save(&video).Error
}

// Update edits the caller's own review. The video aggregate is recomputed
// with the rating delta.
func (s *ReviewService) Update(userID, reviewID string, rating int, comment *string) (*models.Review, error) {
	var review models.Review
	if err := s.DB.First(&review, "id = ?", reviewID).Error; err != nil {
		return nil, err
	}
	if review.UserID != userID {
		return nil, fmt.Errorf("not authorized")
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		oldRating := review.Rating
		if rating >= 1 && rating <= 5 {
			review.Rating = rating
		}
		if comment != nil {
			review.Comment = *comment
		}
		if err := tx.Save(&review).Error; err != nil {
			return err
		}

		if review.Type == "video" && review.Rating != oldRating {
			var video models.Video
			if err := tx.First(&video, "id = ?", review.TargetID).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					return nil
				}
				return err
			}
			if video.RatingCount > 0 {
				total := video.RatingAvg*float64(video.RatingCount) - float64(oldRating) + float64(review.Rating)
				video.RatingAvg = total / float64(video.RatingCount)
				return tx.Save(&video).Error
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	if err := s.DB.Preload("User").First(&review, "id = ?", review.ID).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

// MarkHelpful increments the helpful counter.
func (s *ReviewService) MarkHelpful(reviewID string) (*models.Review, error) {
	result := s.DB.Model(&models.Review{}).
		Where("id = ?", reviewID).
		UpdateColumn("helpful", gorm.Expr("helpful + 1"))
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	var review models.Review
	if err := s.DB.Preload("User").First(&review, "id = ?", reviewID).Error; err != nil {
		return nil, err
	}
	return &review, nil
}
