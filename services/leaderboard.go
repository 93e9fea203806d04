package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"skillpath-backend/models"
	"skillpath-backend/utils"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Bonus points awarded at generation time to the week's top 3. Written to
// both the snapshot and the user's running total, so re-generating a week
// re-awards them (matches the manual-regenerate semantics; see Regenerate).
var topThreeBonus = []int64{100, 50, 25}

const (
	genLockTTL   = 30 * time.Second
	top3CacheTTL = 60 * time.Second
	top3CacheKey = "leaderboard:top3"
)

type LeaderboardService struct {
	DB    *gorm.DB
	Redis *redis.Client // optional; nil disables the generation lock and top-3 cache
}

func NewLeaderboardService(db *gorm.DB, rdb *redis.Client) *LeaderboardService {
	return &LeaderboardService{DB: db, Redis: rdb}
}

// userStanding is the transient per-user stat row the generator sorts.
type userStanding struct {
	UserID               string
	UserName             string
	Points               int64
	WeeklyTimeSpent      int64
	VideosWatched        int64
	AssessmentsCompleted int64
}

// sortStandings applies the ranking order: weekly time spent first, then
// points, then videos watched, all descending.
func sortStandings(stats []userStanding) {
	sort.SliceStable(stats, func(i, j int) bool {
		a, b := stats[i], stats[j]
		if a.WeeklyTimeSpent != b.WeeklyTimeSpent {
			return a.WeeklyTimeSpent > b.WeeklyTimeSpent
		}
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		return a.VideosWatched > b.VideosWatched
	})
}

// collectStandings reads every user's current counters and derives the
// completion counts from their sub-records.
func (s *LeaderboardService) collectStandings() ([]userStanding, error) {
	var users []models.User
	if err := s.DB.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	stats := make([]userStanding, 0, len(users))
	for _, u := range users {
		videosWatched, assessmentsCompleted, err := s.completionCounts(u.ID)
		if err != nil {
			return nil, err
		}
		stats = append(stats, userStanding{
			UserID:               u.ID,
			UserName:             u.Name,
			Points:               u.Points,
			WeeklyTimeSpent:      u.WeeklyTimeSpent,
			VideosWatched:        videosWatched,
			AssessmentsCompleted: assessmentsCompleted,
		})
	}
	return stats, nil
}

func (s *LeaderboardService) completionCounts(userID string) (videos int64, assessments int64, err error) {
	if err = s.DB.Model(&models.VideoProgress{}).
		Where("user_id = ? AND completed = ?", userID, true).
		Count(&videos).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count completed videos for %s: %w", userID, err)
	}
	if err = s.DB.Model(&models.AssessmentResult{}).
		Where("user_id = ?", userID).
		Count(&assessments).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count assessments for %s: %w", userID, err)
	}
	return videos, assessments, nil
}

// Generate builds the initial ranked snapshot for a week that has none yet.
// Bonus points for the top 3 are applied to the users BEFORE the batch
// insert, so a failed insert leaves bonuses applied without a snapshot.
// Callers must not blindly retry; Regenerate purges first.
func (s *LeaderboardService) Generate(weekStart, weekEnd time.Time) ([]models.LeaderboardEntry, error) {
	stats, err := s.collectStandings()
	if err != nil {
		return nil, err
	}

	sortStandings(stats)

	activitySvc := NewActivityService(s.DB)
	entries := make([]models.LeaderboardEntry, 0, len(stats))
	for i, st := range stats {
		entry := models.LeaderboardEntry{
			ID:                   uuid.NewString(),
			UserID:               st.UserID,
			UserName:             st.UserName,
			Points:               st.Points,
			WeeklyTimeSpent:      st.WeeklyTimeSpent,
			VideosWatched:        st.VideosWatched,
			AssessmentsCompleted: st.AssessmentsCompleted,
			Rank:                 i + 1,
			WeekStart:            weekStart,
			WeekEnd:              weekEnd,
		}

		if i < len(topThreeBonus) {
			bonus := topThreeBonus[i]
			entry.Points += bonus
			if err := activitySvc.ApplyPointsDelta(st.UserID, bonus); err != nil {
				return nil, fmt.Errorf("failed to award bonus to %s: %w", st.UserID, err)
			}
			log.Printf("🏆 Weekly bonus: rank %d → %s (+%d points)", i+1, st.UserName, bonus)
		}

		entries = append(entries, entry)
	}

	if len(entries) > 0 {
		if err := s.DB.Create(&entries).Error; err != nil {
			return nil, fmt.Errorf("failed to persist leaderboard: %w", err)
		}
	}

	log.Printf("✅ Leaderboard generated for week of %s (%d entries)", weekStart.Format("2006-01-02"), len(entries))
	return entries, nil
}

// generateWithLock guards first generation against concurrent requests
// racing on the same empty week. With no Redis configured, the unique
// (week_start, user_id) index is the only backstop.
func (s *LeaderboardService) generateWithLock(weekStart, weekEnd time.Time) ([]models.LeaderboardEntry, error) {
	if s.Redis == nil {
		return s.Generate(weekStart, weekEnd)
	}

	ctx := context.Background()
	lockKey := fmt.Sprintf("leaderboard:gen:%s", weekStart.Format("2006-01-02"))
	ok, err := s.Redis.SetNX(ctx, lockKey, 1, genLockTTL).Result()
	if err != nil {
		log.Printf("⚠️ Redis lock unavailable, generating without lock: %v", err)
		return s.Generate(weekStart, weekEnd)
	}
	if !ok {
		// Another request is generating; give it a moment and read its result.
		time.Sleep(500 * time.Millisecond)
		var entries []models.LeaderboardEntry
		if err := s.DB.Where("week_start = ?", weekStart).Order("rank ASC").Find(&entries).Error; err != nil {
			return nil, err
		}
		return entries, nil
	}
	defer s.Redis.Del(ctx, lockKey)

	return s.Generate(weekStart, weekEnd)
}

// Sync refreshes each persisted entry's stat fields from the live user
// record. Rank is left untouched. A failed user read logs and skips that
// entry; the stale row still shows up in responses.
func (s *LeaderboardService) Sync(entries []models.LeaderboardEntry) []models.LeaderboardEntry {
	for i := range entries {
		entry := &entries[i]

		var user models.User
		if err := s.DB.First(&user, "id = ?", entry.UserID).Error; err != nil {
			log.Printf("⚠️ Skipping leaderboard sync for user %s: %v", entry.UserID, err)
			continue
		}

		videosWatched, assessmentsCompleted, err := s.completionCounts(user.ID)
		if err != nil {
			log.Printf("⚠️ Skipping leaderboard sync for user %s: %v", entry.UserID, err)
			continue
		}

		entry.WeeklyTimeSpent = user.WeeklyTimeSpent
		entry.Points = user.Points
		entry.VideosWatched = videosWatched
		entry.AssessmentsCompleted = assessmentsCompleted

		if err := s.DB.Model(&models.LeaderboardEntry{}).
			Where("id = ?", entry.ID).
			Updates(map[string]interface{}{
				"points":                user.Points,
				"weekly_time_spent":     user.WeeklyTimeSpent,
				"videos_watched":        videosWatched,
				"assessments_completed": assessmentsCompleted,
			}).Error; err != nil {
			log.Printf("⚠️ Failed to persist sync for entry %s: %v", entry.ID, err)
		}
	}
	return entries
}

// liveViews re-sorts fully synced entries by the ranking order and
// re-numbers ranks for the response only. The persisted rank stays frozen
// at what generation assigned, so displayed order can legitimately diverge
// from stored rank once activity moves.
func liveViews(entries []models.LeaderboardEntry) []models.LeaderboardView {
	stats := make([]userStanding, len(entries))
	byUser := make(map[string]models.LeaderboardEntry, len(entries))
	for i, e := range entries {
		stats[i] = userStanding{
			UserID:               e.UserID,
			UserName:             e.UserName,
			Points:               e.Points,
			WeeklyTimeSpent:      e.WeeklyTimeSpent,
			VideosWatched:        e.VideosWatched,
			AssessmentsCompleted: e.AssessmentsCompleted,
		}
		byUser[e.UserID] = e
	}

	sortStandings(stats)

	views := make([]models.LeaderboardView, len(stats))
	for i, st := range stats {
		entry := byUser[st.UserID]
		views[i] = models.LeaderboardView{
			EntryID:              entry.ID,
			UserID:               st.UserID,
			UserName:             st.UserName,
			Points:               st.Points,
			WeeklyTimeSpent:      st.WeeklyTimeSpent,
			VideosWatched:        st.VideosWatched,
			AssessmentsCompleted: st.AssessmentsCompleted,
			Rank:                 i + 1,
		}
	}
	return views
}

func viewsFromEntries(entries []models.LeaderboardEntry) []models.LeaderboardView {
	views := make([]models.LeaderboardView, len(entries))
	for i, e := range entries {
		views[i] = models.LeaderboardView{
			EntryID:              e.ID,
			UserID:               e.UserID,
			UserName:             e.UserName,
			Points:               e.Points,
			WeeklyTimeSpent:      e.WeeklyTimeSpent,
			VideosWatched:        e.VideosWatched,
			AssessmentsCompleted: e.AssessmentsCompleted,
			Rank:                 e.Rank,
		}
	}
	return views
}

// GetWeekly returns the current week's leaderboard, generating it on first
// read. Existing entries are synced with live user activity and then
// re-ranked in memory for the response.
func (s *LeaderboardService) GetWeekly(limit int) ([]models.LeaderboardView, error) {
	if limit <= 0 {
		limit = 10
	}
	weekStart := utils.WeekStart()
	weekEnd := utils.WeekEnd()

	var entries []models.LeaderboardEntry
	if err := s.DB.Where("week_start = ?", weekStart).
		Order("rank ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}

	if len(entries) == 0 {
		generated, err := s.generateWithLock(weekStart, weekEnd)
		if err != nil {
			return nil, err
		}
		if len(generated) > limit {
			generated = generated[:limit]
		}
		return viewsFromEntries(generated), nil
	}

	entries = s.Sync(entries)
	views := liveViews(entries)
	if len(views) > limit {
		views = views[:limit]
	}
	return views, nil
}

// GetTop3 returns the current top 3, served from the short-lived Redis
// cache when available.
func (s *LeaderboardService) GetTop3() ([]models.LeaderboardView, error) {
	ctx := context.Background()
	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, top3CacheKey).Result(); err == nil {
			var views []models.LeaderboardView
			if err := json.Unmarshal([]byte(cached), &views); err == nil {
				return views, nil
			}
		}
	}

	views, err := s.GetWeekly(3)
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if raw, err := json.Marshal(views); err == nil {
			s.Redis.Set(ctx, top3CacheKey, raw, top3CacheTTL)
		}
	}
	return views, nil
}

// GetUserRank returns the persisted entry for (current week, user), or nil
// when the user has no ranking yet. The stored rank is returned as-is, not
// the live re-sorted one.
func (s *LeaderboardService) GetUserRank(userID string) (*models.LeaderboardEntry, error) {
	weekStart := utils.WeekStart()

	var entry models.LeaderboardEntry
	err := s.DB.Where("week_start = ? AND user_id = ?", weekStart, userID).First(&entry).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up rank: %w", err)
	}
	return &entry, nil
}

// Regenerate purges the current week's entries and rebuilds the snapshot.
// Each regeneration re-applies top-3 bonuses on top of whatever earlier
// generations already granted. The award is deliberately not idempotent.
func (s *LeaderboardService) Regenerate() ([]models.LeaderboardEntry, error) {
	weekStart := utils.WeekStart()
	weekEnd := utils.WeekEnd()

	if err := s.DB.Where("week_start = ?", weekStart).
		Delete(&models.LeaderboardEntry{}).Error; err != nil {
		return nil, fmt.Errorf("failed to purge leaderboard: %w", err)
	}

	entries, err := s.generateWithLock(weekStart, weekEnd)
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		s.Redis.Del(context.Background(), top3CacheKey)
	}
	return entries, nil
}

// EnsureCurrentWeek pre-generates the week's snapshot if absent, so the
// first reader after rollover doesn't pay the generation cost. Used by the
// scheduler.
func (s *LeaderboardService) EnsureCurrentWeek() error {
	weekStart := utils.WeekStart()

	var count int64
	if err := s.DB.Model(&models.LeaderboardEntry{}).
		Where("week_start = ?", weekStart).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	_, err := s.generateWithLock(weekStart, utils.WeekEnd())
	return err
}
