package models

import (
	"time"
)

// Review is user feedback on a video or assessment. One review per
// (user, type, target).
type Review struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"not null;uniqueIndex:idx_user_target"`
	Type      string    `json:"type" gorm:"not null;uniqueIndex:idx_user_target;index"` // video, assessment
	TargetID  string    `json:"target_id" gorm:"not null;uniqueIndex:idx_user_target;index"`
	Rating    int       `json:"rating"` // 1..5
	Comment   string    `json:"comment" gorm:"type:text"`
	Helpful   int64     `json:"helpful" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
