package services

import (
	"testing"

	"skillpath-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCreateReviewUpdatesVideoAggregate(t *testing.T) {
	db := newTestDB(t)
	svc := NewReviewService(db)

	a := createTestUser(t, db, "Alice", 0, 0)
	b := createTestUser(t, db, "Bob", 0, 0)
	v := createTestVideo(t, db, "t", "JavaScript")

	_, err := svc.Create(a.ID, "video", v.ID, 5, "great")
	require.NoError(t, err)
	_, err = svc.Create(b.ID, "video", v.ID, 2, "meh")
	require.NoError(t, err)

	var fresh models.Video
	require.NoError(t, db.First(&fresh, "id = ?", v.ID).Error)
	assert.Equal(t, int64(2), fresh.RatingCount)
	assert.InDelta(t, 3.5, fresh.RatingAvg, 0.001)
}

func TestCreateReviewValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewReviewService(db)

	u := createTestUser(t, db, "Alice", 0, 0)

	_, err := svc.Create(u.ID, "course", "x", 3, "")
	require.Error(t, err)

	_, err = svc.Create(u.ID, "video", "x", 0, "")
	require.Error(t, err)
	_, err = svc.Create(u.ID, "video", "x", 6, "")
	require.Error(t, err)
}

func TestCreateReviewDuplicateRejected(t *testing.T) {
	db := newTestDB(t)
	svc := NewReviewService(db)

	u := createTestUser(t, db, "Alice", 0, 0)
	v := createTestVideo(t, db, "t", "JavaScript")

	_, err := svc.Create(u.ID, "video", v.ID, 4, "")
	require.NoError(t, err)

	_, err = svc.Create(u.ID, "video", v.ID, 5, "second thoughts")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already reviewed")

	// Same target, different type is a distinct review
	_, err = svc.Create(u.ID, "assessment", v.ID, 5, "")
	require.NoError(t, err)
}

func TestUpdateReviewRecomputesAggregate(t *testing.T) {
	db := newTestDB(t)
	svc := NewReviewService(db)

	u := createTestUser(t, db, "Alice", 0, 0)
	v := createTestVideo(t, db, "t", "JavaScript")

	review, err := svc.Create(u.ID, "video", v.ID, 2, "early take")
	require.NoError(t, err)

	comment := "revised"
	updated, err := svc.Update(u.ID, review.ID, 5, &comment)
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Rating)
	assert.Equal(t, "revised", updated.Comment)

	var fresh models.Video
	require.NoError(t, db.First(&fresh, "id = ?", v.ID).Error)
	assert.Equal(t, int64(1), fresh.RatingCount)
	assert.InDelta(t, 5.0, fresh.RatingAvg, 0.001)
}

func TestUpdateReviewOwnership(t *testing.T) {
	db := newTestDB(t)
	svc := NewReviewService(db)

	a := createTestUser(t, db, "Alice", 0, 0)
	b := createTestUser(t, db, "Bob", 0, 0)
	v := createTestVideo(t, db, "t", "JavaScript")

	review, err := svc.Create(a.ID, "video", v.ID, 4, "")
	require.NoError(t, err)

	_, err = svc.Update(b.ID, review.ID, 1, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not authorized")

	_, err = svc.Update(a.ID, "missing", 1, nil)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestMarkHelpful(t *testing.T) {
	db := newTestDB(t)
	svc := NewReviewService(db)

	u := createTestUser(t, db, "Alice", 0, 0)
	v := createTestVideo(t, db, "t", "JavaScript")

	review, err := svc.Create(u.ID, "video", v.ID, 4, "")
	require.NoError(t, err)

	got, err := svc.MarkHelpful(review.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Helpful)

	got, err = svc.MarkHelpful(review.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Helpful)

	_, err = svc.MarkHelpful("missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListReviewsFiltered(t *testing.T) {
	db := newTestDB(t)
	svc := NewReviewService(db)

	u := createTestUser(t, db, "Alice", 0, 0)
	v1 := createTestVideo(t, db, "t", "JavaScript")
	v2 := createTestVideo(t, db, "t", "React")

	_, err := svc.Create(u.ID, "video", v1.ID, 4, "")
	require.NoError(t, err)
	_, err = svc.Create(u.ID, "video", v2.ID, 3, "")
	require.NoError(t, err)
	_, err = svc.Create(u.ID, "assessment", "quiz-1", 5, "")
	require.NoError(t, err)

	all, err := svc.List("", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	videos, err := svc.List("video", "")
	require.NoError(t, err)
	assert.Len(t, videos, 2)

	one, err := svc.List("video", v1.ID)
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "Alice", one[0].User.Name)
}
