package services

import (
	"fmt"
	"log"
	"math"
	"time"

	"skillpath-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AssessmentService struct {
	DB *gorm.DB
}

func NewAssessmentService(db *gorm.DB) *AssessmentService {
	return &AssessmentService{DB: db}
}

// List returns all assessments with questions, correct answers stripped.
func (s *AssessmentService) List() ([]models.Assessment, error) {
	var assessments []models.Assessment
	if err := s.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC")
	}).Find(&assessments).Error; err != nil {
		return nil, err
	}
	for i := range assessments {
		stripAnswers(&assessments[i])
	}
	return assessments, nil
}

// Get returns one assessment with questions, correct answers stripped.
func (s *AssessmentService) Get(id string) (*models.Assessment, error) {
	var assessment models.Assessment
	if err := s.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC")
	}).First(&assessment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	stripAnswers(&assessment)
	return &assessment, nil
}

func stripAnswers(a *models.Assessment) {
	for i := range a.Questions {
		a.Questions[i].CorrectAnswer = ""
	}
}

// SubmittedAnswer is one client answer in a submission.
type SubmittedAnswer struct {
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
}

// SubmitOutcome summarizes a graded submission.
type SubmitOutcome struct {
	Score          int    `json:"score"`
	Level          string `json:"level"`
	CorrectCount   int    `json:"correct_count"`
	TotalQuestions int    `json:"total_questions"`
}

// LevelForScore maps a percentage score to a proficiency level. The same
// thresholds drive learning-path generation.
func LevelForScore(score int) string {
	switch {
	case score >= 80:
		return "Advanced"
	case score >= 60:
		return "Intermediate"
	default:
		return "Beginner"
	}
}

// Submit grades the answers against the stored questions and persists a
// result row for the user. Unknown question IDs are ignored.
func (s *AssessmentService) Submit(userID, assessmentID string, answers []SubmittedAnswer) (*SubmitOutcome, error) {
	var assessment models.Assessment
	if err := s.DB.Preload("Questions").First(&assessment, "id = ?", assessmentID).Error; err != nil {
		return nil, err
	}

	questionsByID := make(map[string]models.AssessmentQuestion, len(assessment.Questions))
	for _, q := range assessment.Questions {
		questionsByID[q.ID] = q
	}

	resultID := uuid.NewString()
	correctCount := 0
	totalPoints := 0
	earnedPoints := 0
	detailed := make([]models.AssessmentAnswer, 0, len(answers))

	for _, ans := range answers {
		question, ok := questionsByID[ans.QuestionID]
		if !ok {
			continue
		}
		totalPoints += question.Points
		isCorrect := question.CorrectAnswer == ans.Answer
		if isCorrect {
			correctCount++
			earnedPoints += question.Points
		}
		detailed = append(detailed, models.AssessmentAnswer{
			ID:         uuid.NewString(),
			ResultID:   resultID,
			QuestionID: ans.QuestionID,
			Answer:     ans.Answer,
			IsCorrect:  isCorrect,
		})
	}

	if totalPoints == 0 {
		return nil, fmt.Errorf("no valid answers submitted")
	}
	score := int(math.Round(float64(earnedPoints) / float64(totalPoints) * 100))

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		result := models.AssessmentResult{
			ID:           resultID,
			UserID:       userID,
			AssessmentID: assessmentID,
			Score:        score,
			CompletedAt:  time.Now(),
		}
		if err := tx.Create(&result).Error; err != nil {
			return err
		}
		if len(detailed) > 0 {
			if err := tx.Create(&detailed).Error; err != nil {
				return err
			}
		}
		// Bump the weekly completion stat alongside the result row
		return tx.Model(&models.User{}).Where("id = ?", userID).
			UpdateColumn("stats_assessments_completed", gorm.Expr("stats_assessments_completed + 1")).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save assessment result: %w", err)
	}

	return &SubmitOutcome{
		Score:          score,
		Level:          LevelForScore(score),
		CorrectCount:   correctCount,
		TotalQuestions: len(assessment.Questions),
	}, nil
}

// ResultsForUser returns the user's attempts, newest first.
func (s *AssessmentService) ResultsForUser(userID string) ([]models.AssessmentResult, error) {
	var results []models.AssessmentResult
	err := s.DB.Where("user_id = ?", userID).
		Preload("Assessment").
		Order("completed_at DESC").
		Find(&results).Error
	return results, err
}

type seedQuestion struct {
	question      string
	options       []string
	correctAnswer string
	explanation   string
	points        int
}

type seedAssessment struct {
	title       string
	subject     string
	description string
	questions   []seedQuestion
}

// Seed inserts the starter assessments when the table is empty.
func (s *AssessmentService) Seed() error {
	var count int64
	if err := s.DB.Model(&models.Assessment{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	seeds := []seedAssessment{
		{
			title:       "JavaScript Fundamentals Assessment",
			subject:     "JavaScript",
			description: "Test your knowledge of JavaScript basics including variables, functions, and control structures.",
			questions: []seedQuestion{
				{
					question:      "What is the correct way to declare a variable in JavaScript?",
					options:       []string{"var x = 5;", "variable x = 5;", "v x = 5;", "declare x = 5;"},
					correctAnswer: "var x = 5;",
					explanation:   "The var keyword is used to declare variables in JavaScript.",
					points:        1,
				},
				{
					question:      "Which method is used to add an element to the end of an array?",
					options:       []string{"push()", "pop()", "shift()", "unshift()"},
					correctAnswer: "push()",
					explanation:   "The push() method adds one or more elements to the end of an array.",
					points:        1,
				},
				{
					question:      "What does === mean in JavaScript?",
					options:       []string{"Assignment", "Loose equality", "Strict equality", "Not equal"},
					correctAnswer: "Strict equality",
					explanation:   "=== is the strict equality operator that checks both value and type.",
					points:        1,
				},
				{
					question:      "Which keyword is used to declare a constant in JavaScript?",
					options:       []string{"const", "let", "var", "constant"},
					correctAnswer: "const",
					explanation:   "The const keyword is used to declare constants that cannot be reassigned.",
					points:        1,
				},
				{
					question:      "What is a closure in JavaScript?",
					options:       []string{"A function that has access to variables in its outer scope", "A way to close a browser tab", "A method to clear memory", "A type of loop"},
					correctAnswer: "A function that has access to variables in its outer scope",
					explanation:   "A closure is a function that has access to variables in its outer (enclosing) lexical scope.",
					points:        2,
				},
			},
		},
		{
			title:       "Database Concepts Assessment",
			subject:     "Databases",
			description: "Assess your understanding of database fundamentals, SQL, and data modeling.",
			questions: []seedQuestion{
				{
					question:      "What does SQL stand for?",
					options:       []string{"Structured Query Language", "Simple Query Language", "Standard Query Language", "Sequential Query Language"},
					correctAnswer: "Structured Query Language",
					explanation:   "SQL stands for Structured Query Language.",
					points:        1,
				},
				{
					question:      "Which SQL command is used to retrieve data from a database?",
					options:       []string{"GET", "SELECT", "RETRIEVE", "FETCH"},
					correctAnswer: "SELECT",
					explanation:   "The SELECT statement is used to query data from a database.",
					points:        1,
				},
				{
					question:      "What is a primary key?",
					options:       []string{"A key that opens the database", "A unique identifier for each row in a table", "The first column in a table", "A foreign key reference"},
					correctAnswer: "A unique identifier for each row in a table",
					explanation:   "A primary key uniquely identifies each record in a database table.",
					points:        1,
				},
				{
					question:      "What is normalization in databases?",
					options:       []string{"The process of organizing data to reduce redundancy", "Making all data uppercase", "Converting data to numbers", "Deleting old data"},
					correctAnswer: "The process of organizing data to reduce redundancy",
					explanation:   "Normalization is the process of organizing data in a database to eliminate redundancy.",
					points:        2,
				},
				{
					question:      "Which join returns all records from both tables?",
					options:       []string{"INNER JOIN", "LEFT JOIN", "RIGHT JOIN", "FULL OUTER JOIN"},
					correctAnswer: "FULL OUTER JOIN",
					explanation:   "FULL OUTER JOIN returns all records when there is a match in either left or right table.",
					points:        2,
				},
			},
		},
		{
			title:       "React Basics Assessment",
			subject:     "React",
			description: "Test your React knowledge including components, hooks, and state management.",
			questions: []seedQuestion{
				{
					question:      "What is React?",
					options:       []string{"A database", "A JavaScript library for building user interfaces", "A programming language", "A server framework"},
					correctAnswer: "A JavaScript library for building user interfaces",
					explanation:   "React is a JavaScript library for building user interfaces.",
					points:        1,
				},
				{
					question:      "What is JSX?",
					options:       []string{"A JavaScript extension", "JavaScript XML - syntax extension for JavaScript", "A database query language", "A CSS framework"},
					correctAnswer: "JavaScript XML - syntax extension for JavaScript",
					explanation:   "JSX is a syntax extension for JavaScript that looks similar to HTML.",
					points:        1,
				},
				{
					question:      "Which hook is used to manage state in functional components?",
					options:       []string{"useState", "useEffect", "useContext", "useReducer"},
					correctAnswer: "useState",
					explanation:   "useState is the hook used to add state to functional components.",
					points:        1,
				},
				{
					question:      "What is the purpose of useEffect hook?",
					options:       []string{"To manage state", "To perform side effects in functional components", "To create components", "To handle events"},
					correctAnswer: "To perform side effects in functional components",
					explanation:   "useEffect lets you perform side effects in function components.",
					points:        1,
				},
				{
					question:      "What are props in React?",
					options:       []string{"Properties passed to components", "State variables", "Functions", "CSS classes"},
					correctAnswer: "Properties passed to components",
					explanation:   "Props are arguments passed into React components.",
					points:        1,
				},
			},
		},
	}

	for _, seed := range seeds {
		assessment := models.Assessment{
			ID:          uuid.NewString(),
			Title:       seed.title,
			Subject:     seed.subject,
			Description: seed.description,
			Difficulty:  "Beginner",
			Duration:    30,
		}
		if err := s.DB.Create(&assessment).Error; err != nil {
			return fmt.Errorf("failed to seed assessment %q: %w", seed.title, err)
		}
		for i, sq := range seed.questions {
			question := models.AssessmentQuestion{
				ID:            uuid.NewString(),
				AssessmentID:  assessment.ID,
				Question:      sq.question,
				CorrectAnswer: sq.correctAnswer,
				Explanation:   sq.explanation,
				Points:        sq.points,
				SortOrder:     i,
			}
			question.SetOptionList(sq.options)
			if err := s.DB.Create(&question).Error; err != nil {
				return fmt.Errorf("failed to seed question: %w", err)
			}
		}
	}

	log.Println("✅ Assessments seeded")
	return nil
}
