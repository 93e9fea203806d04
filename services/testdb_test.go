package services

import (
	"fmt"
	"testing"
	"time"

	"skillpath-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory database per test. cache=shared keeps
// the schema visible across the pool's connections.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Assessment{},
		&models.AssessmentQuestion{},
		&models.AssessmentResult{},
		&models.AssessmentAnswer{},
		&models.LearningPath{},
		&models.LearningTopic{},
		&models.TopicResource{},
		&models.PathAssessmentResult{},
		&models.Video{},
		&models.VideoProgress{},
		&models.Review{},
		&models.LeaderboardEntry{},
	))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, name string, points, weeklyTime int64) *models.User {
	t.Helper()

	user := models.User{
		ID:              uuid.NewString(),
		Name:            name,
		Email:           fmt.Sprintf("%s@test.local", uuid.NewString()),
		Password:        "x",
		Points:          points,
		WeeklyTimeSpent: weeklyTime,
		LastActiveAt:    time.Now(),
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}
