package models

import (
	"encoding/json"
	"time"
)

// Assessment is a quiz in one subject. Questions are separate rows so the
// correct answers can be stripped before sending to the client.
type Assessment struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	Title        string    `json:"title" gorm:"not null"`
	Subject      string    `json:"subject" gorm:"not null;index"` // JavaScript, Databases, React, Node.js, Python, Data Structures, Algorithms
	Description  string    `json:"description"`
	Difficulty   string    `json:"difficulty" gorm:"default:'Beginner'"`
	Duration     int       `json:"duration" gorm:"default:30"` // minutes
	PassingScore int       `json:"passing_score" gorm:"default:60"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Questions []AssessmentQuestion `json:"questions,omitempty" gorm:"foreignKey:AssessmentID"`
}

// AssessmentQuestion stores its options as a JSON-encoded text column.
type AssessmentQuestion struct {
	ID            string `json:"id" gorm:"primaryKey"`
	AssessmentID  string `json:"assessment_id" gorm:"not null;index"`
	Question      string `json:"question" gorm:"not null"`
	Options       string `json:"-" gorm:"type:text"` // JSON-encoded []string
	CorrectAnswer string `json:"correct_answer,omitempty"`
	Explanation   string `json:"explanation"`
	Points        int    `json:"points" gorm:"default:1"`
	SortOrder     int    `json:"sort_order" gorm:"column:sort_order;default:0"`
}

// OptionList decodes the options column.
func (q *AssessmentQuestion) OptionList() []string {
	var opts []string
	if q.Options == "" {
		return opts
	}
	_ = json.Unmarshal([]byte(q.Options), &opts)
	return opts
}

// SetOptionList encodes options into the text column.
func (q *AssessmentQuestion) SetOptionList(opts []string) {
	raw, _ := json.Marshal(opts)
	q.Options = string(raw)
}

// AssessmentResult is one completed attempt by a user. The leaderboard
// derives assessmentsCompleted by counting these rows.
type AssessmentResult struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	UserID       string    `json:"user_id" gorm:"not null;index"`
	AssessmentID string    `json:"assessment_id" gorm:"not null;index"`
	Score        int       `json:"score"` // percentage 0..100
	CompletedAt  time.Time `json:"completed_at" gorm:"autoCreateTime"`

	Assessment Assessment         `json:"assessment,omitempty" gorm:"foreignKey:AssessmentID"`
	Answers    []AssessmentAnswer `json:"answers,omitempty" gorm:"foreignKey:ResultID"`
}

// AssessmentAnswer records a single answered question within a result.
type AssessmentAnswer struct {
	ID         string `json:"id" gorm:"primaryKey"`
	ResultID   string `json:"result_id" gorm:"not null;index"`
	QuestionID string `json:"question_id" gorm:"not null"`
	Answer     string `json:"answer"`
	IsCorrect  bool   `json:"is_correct"`
}
