package services

import (
	"testing"

	"skillpath-backend/models"
	"skillpath-backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortStandingsTieBreakChain(t *testing.T) {
	stats := []userStanding{
		{UserID: "low-time", WeeklyTimeSpent: 100, Points: 999, VideosWatched: 99},
		{UserID: "tie-few-videos", WeeklyTimeSpent: 500, Points: 50, VideosWatched: 1},
		{UserID: "tie-many-videos", WeeklyTimeSpent: 500, Points: 50, VideosWatched: 7},
		{UserID: "tie-more-points", WeeklyTimeSpent: 500, Points: 80, VideosWatched: 0},
	}

	sortStandings(stats)

	order := []string{stats[0].UserID, stats[1].UserID, stats[2].UserID, stats[3].UserID}
	assert.Equal(t, []string{"tie-more-points", "tie-many-videos", "tie-few-videos", "low-time"}, order)
}

func TestGenerateRanksAndBonuses(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeaderboardService(db, nil)

	// Time beats points: A and B tie on time so points break it, C leads on
	// points but trails on time.
	a := createTestUser(t, db, "Alice", 10, 500)
	b := createTestUser(t, db, "Bob", 5, 500)
	c := createTestUser(t, db, "Cara", 50, 200)

	entries, err := svc.Generate(utils.WeekStart(), utils.WeekEnd())
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, a.ID, entries[0].UserID)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, int64(110), entries[0].Points) // 10 + 100 bonus

	assert.Equal(t, b.ID, entries[1].UserID)
	assert.Equal(t, 2, entries[1].Rank)
	assert.Equal(t, int64(55), entries[1].Points) // 5 + 50 bonus

	assert.Equal(t, c.ID, entries[2].UserID)
	assert.Equal(t, 3, entries[2].Rank)
	assert.Equal(t, int64(75), entries[2].Points) // 50 + 25 bonus

	// Bonuses land on the user rows too, not just the snapshot.
	var freshA, freshB, freshC models.User
	require.NoError(t, db.First(&freshA, "id = ?", a.ID).Error)
	require.NoError(t, db.First(&freshB, "id = ?", b.ID).Error)
	require.NoError(t, db.First(&freshC, "id = ?", c.ID).Error)
	assert.Equal(t, int64(110), freshA.Points)
	assert.Equal(t, int64(55), freshB.Points)
	assert.Equal(t, int64(75), freshC.Points)
}

func TestGenerateRanksAreDense(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeaderboardService(db, nil)

	for i := 0; i < 6; i++ {
		createTestUser(t, db, "user", int64(i), int64(i*10))
	}

	entries, err := svc.Generate(utils.WeekStart(), utils.WeekEnd())
	require.NoError(t, err)
	require.Len(t, entries, 6)
	for i, e := range entries {
		assert.Equal(t, i+1, e.Rank)
	}
}

func TestRegenerateReAwardsBonuses(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeaderboardService(db, nil)

	a := createTestUser(t, db, "Alice", 10, 500)

	_, err := svc.Generate(utils.WeekStart(), utils.WeekEnd())
	require.NoError(t, err)

	entries, err := svc.Regenerate()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	// First generation: 10 + 100. Regeneration reads 110 and adds another 100.
	assert.Equal(t, int64(210), entries[0].Points)

	var fresh models.User
	require.NoError(t, db.First(&fresh, "id = ?", a.ID).Error)
	assert.Equal(t, int64(210), fresh.Points)

	// Still exactly one row for the week after purge + rebuild.
	var count int64
	require.NoError(t, db.Model(&models.LeaderboardEntry{}).
		Where("week_start = ?", utils.WeekStart()).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGetWeeklyGeneratesOnFirstRead(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeaderboardService(db, nil)

	createTestUser(t, db, "Alice", 0, 300)
	createTestUser(t, db, "Bob", 0, 100)

	views, err := svc.GetWeekly(10)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "Alice", views[0].UserName)
	assert.Equal(t, 1, views[0].Rank)
	assert.Equal(t, 2, views[1].Rank)

	var count int64
	require.NoError(t, db.Model(&models.LeaderboardEntry{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestGetWeeklyLimit(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeaderboardService(db, nil)

	for i := 0; i < 15; i++ {
		createTestUser(t, db, "user", 0, int64(i))
	}

	views, err := svc.GetWeekly(0) // default limit
	require.NoError(t, err)
	assert.Len(t, views, 10)

	views, err = svc.GetWeekly(5)
	require.NoError(t, err)
	assert.Len(t, views, 5)
}

func TestSyncRefreshesStatsButNotRank(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeaderboardService(db, nil)

	a := createTestUser(t, db, "Alice", 0, 300)
	b := createTestUser(t, db, "Bob", 0, 100)

	_, err := svc.GetWeekly(10)
	require.NoError(t, err)

	// Bob overtakes Alice on weekly time after the snapshot.
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", b.ID).
		UpdateColumn("weekly_time_spent", 900).Error)

	views, err := svc.GetWeekly(10)
	require.NoError(t, err)
	require.Len(t, views, 2)

	// Live order flips; displayed rank is recomputed.
	assert.Equal(t, b.ID, views[0].UserID)
	assert.Equal(t, 1, views[0].Rank)
	assert.Equal(t, int64(900), views[0].WeeklyTimeSpent)
	assert.Equal(t, a.ID, views[1].UserID)
	assert.Equal(t, 2, views[1].Rank)

	// The persisted rank stays frozen at generation order.
	var bobEntry models.LeaderboardEntry
	require.NoError(t, db.First(&bobEntry, "user_id = ?", b.ID).Error)
	assert.Equal(t, 2, bobEntry.Rank)
	assert.Equal(t, int64(900), bobEntry.WeeklyTimeSpent) // stats did sync
}

func TestSyncSkipsDeletedUsers(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeaderboardService(db, nil)

	createTestUser(t, db, "Alice", 0, 300)
	ghost := createTestUser(t, db, "Ghost", 0, 500)

	_, err := svc.GetWeekly(10)
	require.NoError(t, err)

	require.NoError(t, db.Delete(&models.User{}, "id = ?", ghost.ID).Error)

	// The stale entry is skipped, not dropped: the ghost still appears with
	// its snapshot-time stats.
	views, err := svc.GetWeekly(10)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, ghost.ID, views[0].UserID)
	assert.Equal(t, int64(500), views[0].WeeklyTimeSpent)
}

func TestGetUserRankReturnsPersistedRank(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeaderboardService(db, nil)

	a := createTestUser(t, db, "Alice", 0, 300)
	b := createTestUser(t, db, "Bob", 0, 100)

	_, err := svc.GetWeekly(10)
	require.NoError(t, err)

	// Even after activity reorders the live view, the persisted rank answers.
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", b.ID).
		UpdateColumn("weekly_time_spent", 900).Error)
	_, err = svc.GetWeekly(10)
	require.NoError(t, err)

	entry, err := svc.GetUserRank(b.ID)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, 2, entry.Rank)

	entry, err = svc.GetUserRank(a.ID)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, 1, entry.Rank)
}

func TestGetUserRankNilWhenUnranked(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeaderboardService(db, nil)

	entry, err := svc.GetUserRank("nobody")
	require.NoError(t, err)
	assert.Nil(t, entry)

	// The lookup must not generate a snapshot as a side effect.
	var count int64
	require.NoError(t, db.Model(&models.LeaderboardEntry{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestGenerateCountsCompletions(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeaderboardService(db, nil)

	u := createTestUser(t, db, "Alice", 0, 100)

	video := models.Video{ID: "v1", Title: "Intro", VideoURL: "https://example.com/v1", Duration: 100}
	require.NoError(t, db.Create(&video).Error)
	require.NoError(t, db.Create(&models.VideoProgress{
		ID: "vp1", UserID: u.ID, VideoID: video.ID,
		WatchedDuration: 95, TotalDuration: 100, Completed: true,
	}).Error)
	require.NoError(t, db.Create(&models.VideoProgress{
		ID: "vp2", UserID: u.ID, VideoID: video.ID + "x",
		WatchedDuration: 10, TotalDuration: 100, Completed: false,
	}).Error)

	entries, err := svc.Generate(utils.WeekStart(), utils.WeekEnd())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1), entries[0].VideosWatched) // only completed rows count
}

func TestEnsureCurrentWeekIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeaderboardService(db, nil)

	u := createTestUser(t, db, "Alice", 0, 100)

	require.NoError(t, svc.EnsureCurrentWeek())
	require.NoError(t, svc.EnsureCurrentWeek())

	var count int64
	require.NoError(t, db.Model(&models.LeaderboardEntry{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// Unlike Regenerate, the second call is a no-op: no double bonus.
	var fresh models.User
	require.NoError(t, db.First(&fresh, "id = ?", u.ID).Error)
	assert.Equal(t, int64(100), fresh.Points)
}
