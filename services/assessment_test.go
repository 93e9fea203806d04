package services

import (
	"testing"

	"skillpath-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestLevelForScore(t *testing.T) {
	assert.Equal(t, "Advanced", LevelForScore(100))
	assert.Equal(t, "Advanced", LevelForScore(80))
	assert.Equal(t, "Intermediate", LevelForScore(79))
	assert.Equal(t, "Intermediate", LevelForScore(60))
	assert.Equal(t, "Beginner", LevelForScore(59))
	assert.Equal(t, "Beginner", LevelForScore(0))
}

func TestSeedIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewAssessmentService(db)

	require.NoError(t, svc.Seed())
	require.NoError(t, svc.Seed())

	var count int64
	require.NoError(t, db.Model(&models.Assessment{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)

	var questions int64
	require.NoError(t, db.Model(&models.AssessmentQuestion{}).Count(&questions).Error)
	assert.Equal(t, int64(15), questions)
}

func TestListStripsCorrectAnswers(t *testing.T) {
	db := newTestDB(t)
	svc := NewAssessmentService(db)
	require.NoError(t, svc.Seed())

	list, err := svc.List()
	require.NoError(t, err)
	require.Len(t, list, 3)
	for _, a := range list {
		require.NotEmpty(t, a.Questions)
		for _, q := range a.Questions {
			assert.Empty(t, q.CorrectAnswer)
			assert.NotEmpty(t, q.OptionList())
		}
	}
}

func TestGetStripsCorrectAnswers(t *testing.T) {
	db := newTestDB(t)
	svc := NewAssessmentService(db)
	require.NoError(t, svc.Seed())

	var seeded models.Assessment
	require.NoError(t, db.First(&seeded, "subject = ?", "JavaScript").Error)

	got, err := svc.Get(seeded.ID)
	require.NoError(t, err)
	require.Len(t, got.Questions, 5)
	for _, q := range got.Questions {
		assert.Empty(t, q.CorrectAnswer)
	}

	// The stored rows still carry the answers for grading.
	var stored models.AssessmentQuestion
	require.NoError(t, db.First(&stored, "assessment_id = ?", seeded.ID).Error)
	assert.NotEmpty(t, stored.CorrectAnswer)
}

func loadQuestions(t *testing.T, db *gorm.DB, assessmentID string) []models.AssessmentQuestion {
	t.Helper()
	var questions []models.AssessmentQuestion
	require.NoError(t, db.Where("assessment_id = ?", assessmentID).
		Order("sort_order ASC").Find(&questions).Error)
	return questions
}

func TestSubmitAllCorrect(t *testing.T) {
	db := newTestDB(t)
	svc := NewAssessmentService(db)
	require.NoError(t, svc.Seed())

	u := createTestUser(t, db, "Alice", 0, 0)

	var assessment models.Assessment
	require.NoError(t, db.First(&assessment, "subject = ?", "JavaScript").Error)
	questions := loadQuestions(t, db, assessment.ID)

	answers := make([]SubmittedAnswer, 0, len(questions))
	for _, q := range questions {
		answers = append(answers, SubmittedAnswer{QuestionID: q.ID, Answer: q.CorrectAnswer})
	}

	outcome, err := svc.Submit(u.ID, assessment.ID, answers)
	require.NoError(t, err)
	assert.Equal(t, 100, outcome.Score)
	assert.Equal(t, "Advanced", outcome.Level)
	assert.Equal(t, 5, outcome.CorrectCount)
	assert.Equal(t, 5, outcome.TotalQuestions)

	// Result row persisted, weekly completion stat bumped
	var results int64
	require.NoError(t, db.Model(&models.AssessmentResult{}).
		Where("user_id = ?", u.ID).Count(&results).Error)
	assert.Equal(t, int64(1), results)

	var fresh models.User
	require.NoError(t, db.First(&fresh, "id = ?", u.ID).Error)
	assert.Equal(t, int64(1), fresh.StatsAssessmentsCompleted)
}

func TestSubmitPartialScoreIsPointWeighted(t *testing.T) {
	db := newTestDB(t)
	svc := NewAssessmentService(db)
	require.NoError(t, svc.Seed())

	u := createTestUser(t, db, "Alice", 0, 0)

	// The JavaScript seed has four 1-point questions and one 2-point
	// question (closures). Missing only the 2-pointer costs a third of the
	// score: 4/6 → 67%.
	var assessment models.Assessment
	require.NoError(t, db.First(&assessment, "subject = ?", "JavaScript").Error)
	questions := loadQuestions(t, db, assessment.ID)

	var answers []SubmittedAnswer
	for _, q := range questions {
		answer := q.CorrectAnswer
		if q.Points == 2 {
			answer = "wrong"
		}
		answers = append(answers, SubmittedAnswer{QuestionID: q.ID, Answer: answer})
	}

	outcome, err := svc.Submit(u.ID, assessment.ID, answers)
	require.NoError(t, err)
	assert.Equal(t, 67, outcome.Score)
	assert.Equal(t, "Intermediate", outcome.Level)
	assert.Equal(t, 4, outcome.CorrectCount)
}

func TestSubmitIgnoresUnknownQuestions(t *testing.T) {
	db := newTestDB(t)
	svc := NewAssessmentService(db)
	require.NoError(t, svc.Seed())

	u := createTestUser(t, db, "Alice", 0, 0)

	var assessment models.Assessment
	require.NoError(t, db.First(&assessment, "subject = ?", "React").Error)
	questions := loadQuestions(t, db, assessment.ID)

	answers := []SubmittedAnswer{
		{QuestionID: "bogus-id", Answer: "whatever"},
		{QuestionID: questions[0].ID, Answer: questions[0].CorrectAnswer},
	}

	outcome, err := svc.Submit(u.ID, assessment.ID, answers)
	require.NoError(t, err)
	assert.Equal(t, 100, outcome.Score) // graded over the one valid answer
	assert.Equal(t, 1, outcome.CorrectCount)
}

func TestSubmitNoValidAnswers(t *testing.T) {
	db := newTestDB(t)
	svc := NewAssessmentService(db)
	require.NoError(t, svc.Seed())

	u := createTestUser(t, db, "Alice", 0, 0)

	var assessment models.Assessment
	require.NoError(t, db.First(&assessment).Error)

	_, err := svc.Submit(u.ID, assessment.ID, []SubmittedAnswer{{QuestionID: "bogus", Answer: "x"}})
	require.Error(t, err)

	_, err = svc.Submit(u.ID, assessment.ID, nil)
	require.Error(t, err)
}

func TestResultsForUserNewestFirst(t *testing.T) {
	db := newTestDB(t)
	svc := NewAssessmentService(db)
	require.NoError(t, svc.Seed())

	u := createTestUser(t, db, "Alice", 0, 0)

	var assessment models.Assessment
	require.NoError(t, db.First(&assessment, "subject = ?", "Databases").Error)
	questions := loadQuestions(t, db, assessment.ID)

	first := []SubmittedAnswer{{QuestionID: questions[0].ID, Answer: "wrong"}}
	second := []SubmittedAnswer{{QuestionID: questions[0].ID, Answer: questions[0].CorrectAnswer}}

	_, err := svc.Submit(u.ID, assessment.ID, first)
	require.NoError(t, err)
	_, err = svc.Submit(u.ID, assessment.ID, second)
	require.NoError(t, err)

	results, err := svc.ResultsForUser(u.ID)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Databases", results[0].Assessment.Subject)
	assert.True(t, !results[0].CompletedAt.Before(results[1].CompletedAt))
}
