package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"
	"time"

	"skillpath-backend/models"
	"skillpath-backend/utils"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type LearningPathService struct {
	DB *gorm.DB
}

func NewLearningPathService(db *gorm.DB) *LearningPathService {
	return &LearningPathService{DB: db}
}

// subjectLevel is the per-subject summary fed into generation.
type subjectLevel struct {
	Subject string
	Score   int
	Level   string
}

// generatedTopic mirrors the JSON array shape the generative API is asked
// to return; the fallback generator produces the same shape.
type generatedTopic struct {
	ID             string              `json:"id"`
	Title          string              `json:"title"`
	Description    string              `json:"description"`
	Difficulty     string              `json:"difficulty"`
	EstimatedHours int                 `json:"estimatedHours"`
	Resources      []generatedResource `json:"resources"`
	Prerequisites  []string            `json:"prerequisites"`
	Order          int                 `json:"order"`
}

type generatedResource struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// GetByUser returns the user's path with topics and resources.
func (s *LearningPathService) GetByUser(userID string) (*models.LearningPath, error) {
	var path models.LearningPath
	err := s.DB.Where("user_id = ?", userID).
		Preload("Topics", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Preload("Topics.Resources").
		Preload("AssessmentResults").
		First(&path).Error
	if err != nil {
		return nil, err
	}
	return &path, nil
}

// Generate builds (or rebuilds) the user's path from their assessment
// results. The generative API is an opaque external call; any failure
// falls back to the static per-subject roadmap.
func (s *LearningPathService) Generate(userID string) (*models.LearningPath, error) {
	var results []models.AssessmentResult
	if err := s.DB.Where("user_id = ?", userID).
		Preload("Assessment").
		Order("completed_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("complete at least one assessment before generating a learning path")
	}

	// Latest result per subject wins
	bySubject := map[string]subjectLevel{}
	var subjects []string
	for _, r := range results {
		subject := r.Assessment.Subject
		if subject == "" {
			continue
		}
		if _, seen := bySubject[subject]; !seen {
			subjects = append(subjects, subject)
		}
		bySubject[subject] = subjectLevel{
			Subject: subject,
			Score:   r.Score,
			Level:   LevelForScore(r.Score),
		}
	}

	levels := make([]subjectLevel, 0, len(subjects))
	for _, subject := range subjects {
		levels = append(levels, bySubject[subject])
	}

	topics, err := generateTopics(levels)
	if err != nil {
		log.Printf("⚠️ Generative API failed, using fallback path: %v", err)
		topics = fallbackTopics(levels)
	}
	if len(topics) == 0 {
		topics = fallbackTopics(levels)
	}

	var path models.LearningPath
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		findErr := tx.Where("user_id = ?", userID).First(&path).Error
		if findErr == gorm.ErrRecordNotFound {
			path = models.LearningPath{
				ID:     uuid.NewString(),
				UserID: userID,
				Title:  "My Learning Path",
			}
			if err := tx.Create(&path).Error; err != nil {
				return err
			}
		} else if findErr != nil {
			return findErr
		}

		// Replace the topic set and frozen assessment levels
		if err := tx.Where("path_id = ?", path.ID).Delete(&models.LearningTopic{}).Error; err != nil {
			return err
		}
		if err := tx.Where("path_id = ?", path.ID).Delete(&models.PathAssessmentResult{}).Error; err != nil {
			return err
		}

		for _, gt := range topics {
			topic := models.LearningTopic{
				ID:             uuid.NewString(),
				PathID:         path.ID,
				TopicID:        gt.ID,
				Title:          gt.Title,
				Description:    gt.Description,
				Difficulty:     gt.Difficulty,
				EstimatedHours: gt.EstimatedHours,
				Prerequisites:  strings.Join(gt.Prerequisites, ","),
				SortOrder:      gt.Order,
			}
			if err := tx.Create(&topic).Error; err != nil {
				return err
			}
			for _, gr := range gt.Resources {
				resource := models.TopicResource{
					ID:          uuid.NewString(),
					TopicID:     topic.ID,
					Type:        gr.Type,
					Title:       gr.Title,
					URL:         gr.URL,
					Description: gr.Description,
				}
				if err := tx.Create(&resource).Error; err != nil {
					return err
				}
			}
		}

		for _, lvl := range levels {
			frozen := models.PathAssessmentResult{
				ID:      uuid.NewString(),
				PathID:  path.ID,
				Subject: lvl.Subject,
				Score:   lvl.Score,
				Level:   lvl.Level,
			}
			if err := tx.Create(&frozen).Error; err != nil {
				return err
			}
		}

		path.GeneratedAt = time.Now()
		path.TotalTopics = len(topics)
		path.CompletedTopics = 0
		path.Percentage = 0
		return tx.Save(&path).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save learning path: %w", err)
	}

	log.Printf("✅ Learning path generated for user %s (%d topics)", userID, len(topics))
	return s.GetByUser(userID)
}

// SetTopicCompleted toggles completion for a topic (by its string topic ID)
// and recomputes the path's progress counters.
func (s *LearningPathService) SetTopicCompleted(userID, pathID, topicID string, completed *bool) (*models.LearningPath, error) {
	var path models.LearningPath
	if err := s.DB.Where("user_id = ?", userID).First(&path).Error; err != nil {
		return nil, err
	}
	if path.ID != pathID {
		return nil, fmt.Errorf("not authorized")
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var topic models.LearningTopic
		if err := tx.Where("path_id = ? AND topic_id = ?", path.ID, topicID).First(&topic).Error; err != nil {
			return err
		}

		if completed != nil {
			topic.Completed = *completed
		} else {
			topic.Completed = !topic.Completed
		}
		if topic.Completed {
			now := time.Now()
			topic.CompletedAt = &now
		} else {
			topic.CompletedAt = nil
		}
		if err := tx.Save(&topic).Error; err != nil {
			return err
		}

		return recomputeProgress(tx, &path)
	})
	if err != nil {
		return nil, err
	}
	return s.GetByUser(userID)
}

func recomputeProgress(tx *gorm.DB, path *models.LearningPath) error {
	var total, done int64
	if err := tx.Model(&models.LearningTopic{}).Where("path_id = ?", path.ID).Count(&total).Error; err != nil {
		return err
	}
	if err := tx.Model(&models.LearningTopic{}).Where("path_id = ? AND completed = ?", path.ID, true).Count(&done).Error; err != nil {
		return err
	}

	path.TotalTopics = int(total)
	path.CompletedTopics = int(done)
	if total > 0 {
		path.Percentage = int(float64(done)/float64(total)*100 + 0.5)
	} else {
		path.Percentage = 0
	}
	return tx.Save(path).Error
}

// CompletedTopicSummary is a row in the progress response.
type CompletedTopicSummary struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Progress returns the counters plus the completed-topic list.
func (s *LearningPathService) Progress(userID, pathID string) (*models.LearningPath, []CompletedTopicSummary, error) {
	path, err := s.GetByUser(userID)
	if err != nil {
		return nil, nil, err
	}
	if path.ID != pathID {
		return nil, nil, gorm.ErrRecordNotFound
	}

	var completed []CompletedTopicSummary
	for _, t := range path.Topics {
		if t.Completed {
			completed = append(completed, CompletedTopicSummary{
				ID:          t.TopicID,
				Title:       t.Title,
				CompletedAt: t.CompletedAt,
			})
		}
	}
	return path, completed, nil
}

// ── Generative API call ──────────────────────────────────────────────────

// jsonArrayPattern extracts the first JSON array from a model response that
// may wrap it in prose or markdown fences.
var jsonArrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func buildPrompt(levels []subjectLevel) string {
	var summary strings.Builder
	var subjects []string
	for _, lvl := range levels {
		fmt.Fprintf(&summary, "%s: Score %d%% (%s level)\n", lvl.Subject, lvl.Score, lvl.Level)
		subjects = append(subjects, lvl.Subject)
	}

	return fmt.Sprintf(`You are an expert educational advisor. Based on the following skill assessment results, generate a personalized learning path.

Assessment Results:
%s
Subjects Assessed: %s

Please generate a comprehensive, structured learning path with the following requirements:

1. Create 8-12 topics that build upon each other logically
2. Each topic should have:
   - A clear, descriptive title
   - A brief description (1-2 sentences)
   - Difficulty level (Beginner, Intermediate, or Advanced)
   - Estimated hours to complete
   - 2-3 learning resources (Articles, Videos, Courses, Documentation, or Practice exercises)
   - Prerequisites (which topics must be completed first)
   - A logical order number

3. Topics should address knowledge gaps identified in the assessments
4. Start with foundational concepts and progress to advanced topics
5. Include practical, hands-on learning opportunities

Return the response as a JSON array of topics with this exact structure:
[
  {
    "id": "topic-1",
    "title": "Topic Title",
    "description": "Brief description",
    "difficulty": "Beginner|Intermediate|Advanced",
    "estimatedHours": 5,
    "resources": [
      {
        "type": "Article|Video|Course|Documentation|Practice",
        "title": "Resource Title",
        "url": "https://example.com",
        "description": "Resource description"
      }
    ],
    "prerequisites": ["topic-id-if-any"],
    "order": 1
  }
]

IMPORTANT: Only return the JSON array, no additional text, no markdown formatting, no code blocks. Just the raw JSON array.`, summary.String(), strings.Join(subjects, ", "))
}

// generateTopics calls the Gemini REST endpoint and parses the topic array
// out of the response text.
func generateTopics(levels []subjectLevel) ([]generatedTopic, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}

	endpoint := os.Getenv("GEMINI_API_URL")
	if endpoint == "" {
		endpoint = "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent"
	}

	payload := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: buildPrompt(levels)}}}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	resp, err := utils.HTTPClient.Post(
		fmt.Sprintf("%s?key=%s", endpoint, apiKey),
		"application/json",
		bytes.NewReader(body),
	)
	if err != nil {
		return nil, fmt.Errorf("generative API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("generative API returned status %d", resp.StatusCode)
	}

	var parsed geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode generative API response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("generative API returned no candidates")
	}

	return ParseTopicsJSON(parsed.Candidates[0].Content.Parts[0].Text)
}

// ParseTopicsJSON cleans up a model response (markdown fences, surrounding
// prose) and decodes the topic array.
func ParseTopicsJSON(content string) ([]generatedTopic, error) {
	content = strings.TrimSpace(content)
	content = strings.ReplaceAll(content, "```json", "")
	content = strings.ReplaceAll(content, "```", "")
	content = strings.TrimSpace(content)

	if match := jsonArrayPattern.FindString(content); match != "" {
		content = match
	}

	var topics []generatedTopic
	if err := json.Unmarshal([]byte(content), &topics); err != nil {
		return nil, fmt.Errorf("failed to parse topics JSON: %w", err)
	}
	return topics, nil
}

// fallbackTopics produces the static per-subject roadmap used when the
// generative API is unavailable. Topic IDs are slugs so prerequisite
// references stay stable across regenerations.
func fallbackTopics(levels []subjectLevel) []generatedTopic {
	var topics []generatedTopic
	order := 1

	add := func(title, description, difficulty string, hours int, prereqs []string, resources []generatedResource) string {
		id := slug.Make(title)
		topics = append(topics, generatedTopic{
			ID:             id,
			Title:          title,
			Description:    description,
			Difficulty:     difficulty,
			EstimatedHours: hours,
			Resources:      resources,
			Prerequisites:  prereqs,
			Order:          order,
		})
		order++
		return id
	}

	for _, lvl := range levels {
		switch lvl.Subject {
		case "JavaScript":
			fundamentals := add("JavaScript Fundamentals",
				"Master the core concepts of JavaScript including variables, data types, and functions.",
				"Beginner", 8, nil, []generatedResource{
					{Type: "Documentation", Title: "MDN JavaScript Guide", URL: "https://developer.mozilla.org/en-US/docs/Web/JavaScript/Guide", Description: "Comprehensive JavaScript documentation"},
					{Type: "Video", Title: "JavaScript Basics", URL: "https://www.youtube.com/watch?v=W6NZfCO5SIk", Description: "Introduction to JavaScript"},
				})
			add("Advanced JavaScript Concepts",
				"Learn closures, promises, async/await, and modern ES6+ features.",
				"Intermediate", 12, []string{fundamentals}, []generatedResource{
					{Type: "Article", Title: "Understanding Closures", URL: "https://javascript.info/closure", Description: "Deep dive into closures"},
					{Type: "Course", Title: "Modern JavaScript", URL: "https://www.udemy.com/course/modern-javascript", Description: "Complete modern JS course"},
				})
		case "Databases":
			add("Database Fundamentals",
				"Understand database concepts, SQL basics, and data modeling.",
				"Beginner", 10, nil, []generatedResource{
					{Type: "Course", Title: "SQL for Beginners", URL: "https://www.codecademy.com/learn/learn-sql", Description: "Interactive SQL course"},
					{Type: "Documentation", Title: "PostgreSQL Tutorial", URL: "https://www.postgresql.org/docs/current/tutorial.html", Description: "Official PostgreSQL guide"},
				})
		case "React":
			add("React Basics",
				"Learn React components, JSX, props, and state management.",
				"Beginner", 15, nil, []generatedResource{
					{Type: "Documentation", Title: "React Official Docs", URL: "https://react.dev", Description: "Official React documentation"},
					{Type: "Video", Title: "React Tutorial", URL: "https://www.youtube.com/watch?v=SqcY0GlETPk", Description: "Complete React course"},
				})
		default:
			add(fmt.Sprintf("%s Foundations", lvl.Subject),
				fmt.Sprintf("Build a solid base in %s starting from your assessed %s level.", lvl.Subject, lvl.Level),
				"Beginner", 10, nil, []generatedResource{
					{Type: "Practice", Title: fmt.Sprintf("%s Exercises", lvl.Subject), URL: "https://exercism.org", Description: "Hands-on practice problems"},
				})
		}
	}

	return topics
}
