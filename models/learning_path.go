package models

import (
	"time"
)

// LearningPath is the per-user AI-generated roadmap. One path per user;
// regeneration replaces the topic set in place.
type LearningPath struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	UserID      string    `json:"user_id" gorm:"not null;uniqueIndex"`
	Title       string    `json:"title" gorm:"default:'My Learning Path'"`
	Description string    `json:"description"`
	GeneratedAt time.Time `json:"generated_at"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Progress counters, recomputed whenever topics change
	CompletedTopics int `json:"completed_topics" gorm:"default:0"`
	TotalTopics     int `json:"total_topics" gorm:"default:0"`
	Percentage      int `json:"percentage" gorm:"default:0"`

	Topics            []LearningTopic        `json:"topics,omitempty" gorm:"foreignKey:PathID"`
	AssessmentResults []PathAssessmentResult `json:"assessment_results,omitempty" gorm:"foreignKey:PathID"`
}

// LearningTopic is a single roadmap node. TopicID is the stable string ID
// used for prerequisite references (e.g. "javascript-fundamentals").
type LearningTopic struct {
	ID             string     `json:"-" gorm:"primaryKey"`
	PathID         string     `json:"-" gorm:"not null;index"`
	TopicID        string     `json:"id" gorm:"not null"`
	Title          string     `json:"title" gorm:"not null"`
	Description    string     `json:"description"`
	Difficulty     string     `json:"difficulty" gorm:"default:'Beginner'"`
	EstimatedHours int        `json:"estimated_hours" gorm:"default:0"`
	Prerequisites  string     `json:"prerequisites" gorm:"type:text"` // comma-separated topic IDs
	Completed      bool       `json:"completed" gorm:"default:false"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	SortOrder      int        `json:"order" gorm:"column:sort_order;default:0"`

	Resources []TopicResource `json:"resources,omitempty" gorm:"foreignKey:TopicID"`
}

// TopicResource is a learning resource attached to a topic.
type TopicResource struct {
	ID          string `json:"-" gorm:"primaryKey"`
	TopicID     string `json:"-" gorm:"not null;index"` // LearningTopic.ID (row key, not the string topic id)
	Type        string `json:"type"`                    // Article, Video, Course, Documentation, Practice
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// PathAssessmentResult freezes the per-subject level the path was generated
// from, so the roadmap can show why a topic was included.
type PathAssessmentResult struct {
	ID      string `json:"-" gorm:"primaryKey"`
	PathID  string `json:"-" gorm:"not null;index"`
	Subject string `json:"subject" gorm:"not null"`
	Score   int    `json:"score"`
	Level   string `json:"level"` // Beginner, Intermediate, Advanced
}
